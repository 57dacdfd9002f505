package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PutGetRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put("greeting", []byte("hello")))
	value, ok, err := store.Get("greeting")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", string(value))
}

func TestMemStore_PutGetRoundTrip(t *testing.T) {
	store := NewMemStore()
	_, ok, _ := store.Get("missing")
	assert.False(t, ok)

	require.NoError(t, store.Put("k", []byte("v")))
	value, ok, _ := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(value))
}
