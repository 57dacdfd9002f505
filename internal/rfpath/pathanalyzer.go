package rfpath

import (
	"context"
	"math"
)

/*
 * Path analyzer (§4.I): terrain sampling, clearance, and link-budget
 * composition for a single point-to-point hop.
 */

const (
	minPathDistanceM = 100.0
	maxPathDistanceM = 500_000.0
	minSamples       = 50
	maxSamples       = 200

	// firstFresnelClearPercent is the conventional "clear" threshold
	// (glossary: "first-zone clearance >= 60% is the conventional
	// clear threshold").
	firstFresnelClearPercent = 60.0
)

// Status classifies a hop's line-of-sight condition (§3 invariant).
type Status int

const (
	StatusClear Status = iota
	StatusMarginal
	StatusObstructed
)

func (s Status) String() string {
	switch s {
	case StatusClear:
		return "clear"
	case StatusMarginal:
		return "marginal"
	case StatusObstructed:
		return "obstructed"
	default:
		return "unknown"
	}
}

// ProfilePoint is one sample along a path profile (§3).
type ProfilePoint struct {
	DistanceFromStartM            float64
	TerrainElevM                  float64
	LOSElevAfterCurvatureM        float64
	FresnelUpperM                 float64
	FresnelLowerM                 float64
	ClearanceM                    float64
	ClearancePercentOfFirstFresnel float64
}

// Endpoint is one end of a hop: a location and antenna height above
// ground.
type Endpoint struct {
	Point          LatLon
	AntennaHeightM float64
}

// HopResult is the outcome of analyzing one hop (§3).
type HopResult struct {
	From, To              Endpoint
	Profile               []ProfilePoint
	Obstructions          []ProfilePoint
	DiffractionObstacles  []DiffractionObstacle
	FreeSpaceLossDB       float64
	DiffractionLossDB     float64
	LinkBudget            LinkBudget
	Status                Status

	// Error is set when elevation fetch failed for this hop; the hop
	// result is still returned rather than aborting (§4.J, §7).
	Error string
}

// AnalyzerConfig carries the radio parameters shared across hops.
type AnalyzerConfig struct {
	FreqMHz          float64 `yaml:"freq_mhz"`
	TXPowerDBm       float64 `yaml:"tx_power_dbm"`
	TXGainDBi        float64 `yaml:"tx_gain_dbi"`
	RXGainDBi        float64 `yaml:"rx_gain_dbi"`
	RXSensitivityDBm float64 `yaml:"rx_sensitivity_dbm"`
}

// Analyzer computes single-hop path profiles and link budgets against
// an elevation provider.
type Analyzer struct {
	provider ElevationProvider
	cfg      AnalyzerConfig
	metrics  *Metrics
}

// NewAnalyzer returns an analyzer bound to provider and cfg.
func NewAnalyzer(provider ElevationProvider, cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{provider: provider, cfg: cfg}
}

// SetMetrics attaches a Prometheus collector the analyzer should update
// as it runs. Passing nil disables metrics without otherwise changing
// behavior.
func (a *Analyzer) SetMetrics(m *Metrics) { a.metrics = m }

// AnalyzePath runs the full §4.I pipeline for one hop.
func (a *Analyzer) AnalyzePath(ctx context.Context, from, to Endpoint) (*HopResult, error) {
	distance := HaversineDistance(from.Point.Lat, from.Point.Lon, to.Point.Lat, to.Point.Lon)
	if distance < minPathDistanceM || distance > maxPathDistanceM {
		return nil, ErrGeometryInvalid
	}

	n := clampInt(minSamples, maxSamples, int(math.Ceil(distance/100.0)))
	points := make([]LatLon, n)
	distances := make([]float64, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		points[i] = LatLon{
			Lat: from.Point.Lat + (to.Point.Lat-from.Point.Lat)*frac,
			Lon: from.Point.Lon + (to.Point.Lon-from.Point.Lon)*frac,
		}
		distances[i] = distance * frac
	}

	feet, err := a.provider.Elevations(ctx, points)
	if err != nil || allNil(feet) {
		if a.metrics != nil {
			a.metrics.ElevationErrors.Inc()
		}
		return &HopResult{From: from, To: to, Error: ErrElevationUnavailable.Error()}, nil
	}
	terrain := fillElevationsMeters(feet)

	losStart := terrain[0] + from.AntennaHeightM
	losEnd := terrain[n-1] + to.AntennaHeightM

	profile := make([]ProfilePoint, n)
	minInteriorPercent := math.Inf(1)
	var obstructions []ProfilePoint

	for i := 0; i < n; i++ {
		d1 := distances[i]
		d2 := distance - distances[i]
		curvature := CurvatureDrop(math.Min(d1, d2))

		frac := distances[i] / distance
		interpolatedLOS := losStart + (losEnd-losStart)*frac
		effLOS := interpolatedLOS - curvature

		fresnelR := FresnelRadius(d1, d2, a.cfg.FreqMHz)
		clearance := effLOS - terrain[i]

		var percent float64
		if fresnelR > 0 {
			percent = 100 * clearance / fresnelR
		} else if clearance >= 0 {
			percent = 100
		} else {
			percent = -100
		}

		pp := ProfilePoint{
			DistanceFromStartM:             distances[i],
			TerrainElevM:                   terrain[i],
			LOSElevAfterCurvatureM:         effLOS,
			FresnelUpperM:                  effLOS + fresnelR,
			FresnelLowerM:                  effLOS - fresnelR,
			ClearanceM:                     clearance,
			ClearancePercentOfFirstFresnel: percent,
		}
		profile[i] = pp

		if i > 0 && i < n-1 && percent < minInteriorPercent {
			minInteriorPercent = percent
		}
		if clearance < 0 {
			obstructions = append(obstructions, pp)
		}
	}

	diffractionLoss, diffObstacles := Deygout(distances, terrain, losStart, losEnd, a.cfg.FreqMHz)

	status := StatusObstructed
	switch {
	case len(obstructions) == 0 && minInteriorPercent >= firstFresnelClearPercent:
		status = StatusClear
	case len(obstructions) == 0:
		status = StatusMarginal
	}

	fspl := FreeSpacePathLoss(distance/1000.0, a.cfg.FreqMHz)
	budget := ComputeLinkBudget(a.cfg.TXPowerDBm, a.cfg.TXGainDBi, a.cfg.RXGainDBi, a.cfg.RXSensitivityDBm, fspl, diffractionLoss)

	if a.metrics != nil {
		a.metrics.PathsAnalyzed.Inc()
		a.metrics.HopMarginDB.Observe(budget.MarginDB)
	}

	return &HopResult{
		From:                 from,
		To:                   to,
		Profile:              profile,
		Obstructions:         obstructions,
		DiffractionObstacles: diffObstacles,
		FreeSpaceLossDB:      fspl,
		DiffractionLossDB:    diffractionLoss,
		LinkBudget:           budget,
		Status:               status,
	}, nil
}

func clampInt(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func allNil(feet []*float64) bool {
	for _, f := range feet {
		if f != nil {
			return false
		}
	}
	return true
}
