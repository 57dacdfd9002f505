package rfpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// radialElevationProvider returns a fixed elevation for every point,
// enough to exercise full visibility from a dominant hilltop.
type radialElevationProvider struct {
	centerMeters  float64
	surroundMeters float64
}

func (r *radialElevationProvider) Elevations(_ context.Context, points []LatLon) ([]*float64, error) {
	out := make([]*float64, len(points))
	for i := range points {
		var meters float64
		if i == 0 {
			meters = r.centerMeters
		} else {
			meters = r.surroundMeters
		}
		feet := meters * 3.28084
		out[i] = &feet
	}
	return out, nil
}

func TestComputeViewshed_RejectsZeroRadius(t *testing.T) {
	a := NewAnalyzer(&radialElevationProvider{}, AnalyzerConfig{FreqMHz: 915})
	_, err := a.ComputeViewshed(context.Background(), ViewshedRequest{Center: Endpoint{Point: LatLon{Lat: 40, Lon: -105}}, RadiusM: 0}, nil)
	assert.ErrorIs(t, err, ErrGeometryInvalid)
}

func TestComputeViewshed_HilltopIsFullyVisible(t *testing.T) {
	provider := &radialElevationProvider{centerMeters: 500, surroundMeters: 0}
	a := NewAnalyzer(provider, AnalyzerConfig{FreqMHz: 915})

	result, err := a.ComputeViewshed(context.Background(), ViewshedRequest{
		Center:      Endpoint{Point: LatLon{Lat: 40, Lon: -105}, AntennaHeightM: 2},
		RadiusM:     5000,
		RadialCount: 8,
	}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Radials, 8)
	assert.Equal(t, 100.0, result.CoveragePercent)
	for _, radial := range result.Radials {
		assert.InDelta(t, 5000.0, radial.LOSReachedM, 5000.0/40.0)
		assert.Equal(t, 100.0, radial.CoveragePercent)
	}
}

func TestComputeViewshed_ParallelMatchesSequential(t *testing.T) {
	provider := &radialElevationProvider{centerMeters: 300, surroundMeters: 250}
	a := NewAnalyzer(provider, AnalyzerConfig{FreqMHz: 915})
	req := ViewshedRequest{
		Center:      Endpoint{Point: LatLon{Lat: 40, Lon: -105}, AntennaHeightM: 2},
		RadiusM:     3000,
		RadialCount: 12,
	}

	seq, err := a.ComputeViewshed(context.Background(), req, nil)
	require.NoError(t, err)

	req.Parallel = true
	par, err := a.ComputeViewshed(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, seq.CoveragePercent, par.CoveragePercent)
	assert.Len(t, par.Radials, len(seq.Radials))
}

func TestComputeViewshed_ProgressEventsEmitted(t *testing.T) {
	provider := &radialElevationProvider{centerMeters: 500, surroundMeters: 0}
	a := NewAnalyzer(provider, AnalyzerConfig{FreqMHz: 915})
	events := make(chan Event, 64)

	result, err := a.ComputeViewshed(context.Background(), ViewshedRequest{
		Center:      Endpoint{Point: LatLon{Lat: 40, Lon: -105}},
		RadiusM:     2000,
		RadialCount: 20,
	}, events)
	require.NoError(t, err)
	require.NotNil(t, result)
	close(events)

	sawComplete := false
	for ev := range events {
		if _, ok := ev.(ViewshedCompleteEvent); ok {
			sawComplete = true
		}
	}
	assert.True(t, sawComplete)
}
