package rfpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeElevationProvider resolves each requested point's elevation from
// its fractional position along a fixed north-south test line, so
// scenario tests can place obstacles at a known point in the profile.
type fakeElevationProvider struct {
	startLat, endLat float64
	profileMeters    func(frac float64) float64
}

func (f *fakeElevationProvider) Elevations(_ context.Context, points []LatLon) ([]*float64, error) {
	out := make([]*float64, len(points))
	for i, p := range points {
		frac := (p.Lat - f.startLat) / (f.endLat - f.startLat)
		meters := f.profileMeters(frac)
		feet := meters * 3.28084
		out[i] = &feet
	}
	return out, nil
}

func TestAnalyzePath_RejectsTooShort(t *testing.T) {
	a := NewAnalyzer(&fakeElevationProvider{startLat: 0, endLat: 1, profileMeters: func(float64) float64 { return 0 }}, AnalyzerConfig{FreqMHz: 915})
	_, err := a.AnalyzePath(context.Background(), Endpoint{Point: LatLon{Lat: 40, Lon: -105}}, Endpoint{Point: LatLon{Lat: 40.0000001, Lon: -105}})
	assert.ErrorIs(t, err, ErrGeometryInvalid)
}

func TestAnalyzePath_FlatTerrainIsClear(t *testing.T) {
	startLat, endLat := 40.0, 40.045
	provider := &fakeElevationProvider{startLat: startLat, endLat: endLat, profileMeters: func(float64) float64 { return 0 }}
	a := NewAnalyzer(provider, AnalyzerConfig{
		FreqMHz: 915, TXPowerDBm: 22, TXGainDBi: 6, RXGainDBi: 6, RXSensitivityDBm: -110,
	})

	result, err := a.AnalyzePath(context.Background(),
		Endpoint{Point: LatLon{Lat: startLat, Lon: -105}, AntennaHeightM: 10},
		Endpoint{Point: LatLon{Lat: endLat, Lon: -105}, AntennaHeightM: 10},
	)
	require.NoError(t, err)
	require.Empty(t, result.Error)
	assert.Empty(t, result.Obstructions)
	assert.Equal(t, StatusClear, result.Status)
	assert.True(t, result.LinkBudget.Viable)
}

func TestAnalyzePath_KnifeEdgeIsObstructed(t *testing.T) {
	startLat, endLat := 40.0, 40.09
	provider := &fakeElevationProvider{
		startLat: startLat, endLat: endLat,
		profileMeters: func(frac float64) float64 {
			if frac > 0.45 && frac < 0.55 {
				return 80
			}
			return 0
		},
	}
	a := NewAnalyzer(provider, AnalyzerConfig{
		FreqMHz: 915, TXPowerDBm: 22, TXGainDBi: 6, RXGainDBi: 6, RXSensitivityDBm: -110,
	})

	result, err := a.AnalyzePath(context.Background(),
		Endpoint{Point: LatLon{Lat: startLat, Lon: -105}, AntennaHeightM: 5},
		Endpoint{Point: LatLon{Lat: endLat, Lon: -105}, AntennaHeightM: 5},
	)
	require.NoError(t, err)
	assert.Equal(t, StatusObstructed, result.Status)
	assert.NotEmpty(t, result.Obstructions)
	assert.NotEmpty(t, result.DiffractionObstacles)
	assert.Greater(t, result.DiffractionLossDB, 0.0)
}

func TestAnalyzePath_ElevationFailureIsolatedNotFatal(t *testing.T) {
	provider := &erroringProvider{}
	a := NewAnalyzer(provider, AnalyzerConfig{FreqMHz: 915})
	result, err := a.AnalyzePath(context.Background(),
		Endpoint{Point: LatLon{Lat: 40, Lon: -105}},
		Endpoint{Point: LatLon{Lat: 40.05, Lon: -105}},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Error)
}

type erroringProvider struct{}

func (erroringProvider) Elevations(context.Context, []LatLon) ([]*float64, error) {
	return nil, ErrElevationUnavailable
}
