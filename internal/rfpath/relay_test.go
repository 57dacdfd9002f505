package rfpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRelay_RequiresTwoWaypoints(t *testing.T) {
	a := NewAnalyzer(&fakeElevationProvider{startLat: 0, endLat: 1, profileMeters: func(float64) float64 { return 0 }}, AnalyzerConfig{FreqMHz: 915})
	_, err := AnalyzeRelay(context.Background(), a, []Endpoint{{Point: LatLon{Lat: 40, Lon: -105}}})
	assert.ErrorIs(t, err, ErrGeometryInvalid)
}

func TestAnalyzeRelay_FindsWeakestHop(t *testing.T) {
	provider := &fakeElevationProvider{startLat: 39.9, endLat: 40.2, profileMeters: func(float64) float64 { return 0 }}
	a := NewAnalyzer(provider, AnalyzerConfig{
		FreqMHz: 915, TXPowerDBm: 22, TXGainDBi: 6, RXGainDBi: 6, RXSensitivityDBm: -110,
	})

	waypoints := []Endpoint{
		{Point: LatLon{Lat: 40.0, Lon: -105}, AntennaHeightM: 10},
		{Point: LatLon{Lat: 40.05, Lon: -105}, AntennaHeightM: 10},
		{Point: LatLon{Lat: 40.15, Lon: -105}, AntennaHeightM: 10},
	}

	chain, err := AnalyzeRelay(context.Background(), a, waypoints)
	require.NoError(t, err)
	require.Len(t, chain.Hops, 2)
	assert.GreaterOrEqual(t, chain.WeakestHopIndex, 0)
	// The longer second hop should carry more free-space loss and thus
	// the lower margin.
	assert.Equal(t, 1, chain.WeakestHopIndex)
	assert.Equal(t, chain.Hops[1].LinkBudget.MarginDB, chain.OverallMarginDB)
}

func TestAnalyzeRelay_IsolatesPerHopErrors(t *testing.T) {
	a := NewAnalyzer(erroringProvider{}, AnalyzerConfig{FreqMHz: 915})
	waypoints := []Endpoint{
		{Point: LatLon{Lat: 40.0, Lon: -105}},
		{Point: LatLon{Lat: 40.05, Lon: -105}},
		{Point: LatLon{Lat: 40.15, Lon: -105}},
	}

	chain, err := AnalyzeRelay(context.Background(), a, waypoints)
	require.NoError(t, err)
	require.Len(t, chain.Hops, 2)
	assert.NotEmpty(t, chain.Hops[0].Error)
	assert.NotEmpty(t, chain.Hops[1].Error)
	assert.False(t, chain.Viable)
}
