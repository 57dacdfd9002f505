package rfpath

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

/*
 * Viewshed (§4.K): radial sweep around a center point, reusing the
 * geodesy and curvature primitives already built for single-hop
 * analysis. Per sample, the LOS height is a straight ray at the
 * center's terrain+antenna height bent down by single-ended Earth
 * curvature (not sloped toward a far-end antenna, since a viewshed has
 * none) -- the same clearance/status classification as §4.I, applied
 * pointwise rather than as a whole-path aggregate.
 */

const (
	defaultRadialCount   = 36
	minSamplesPerRadial  = 15
	maxSamplesPerRadial  = 40
	samplesPerRadialUnit = 300.0
)

// RadialSample is one terrain sample along a viewshed radial (§3).
type RadialSample struct {
	DistanceM    float64
	TerrainElevM float64
	LOSHeightM   float64
	ClearanceM   float64
	Status       Status
}

// Radial is one bearing's worth of samples out to the viewshed radius.
// LOSReachedM is the smallest distance along the radial at which a
// sample is obstructed, or RadiusM itself when no sample is (§4.K).
type Radial struct {
	BearingDeg      float64
	Samples         []RadialSample
	LOSReachedM     float64
	CoveragePercent float64
}

// ViewshedResult is the full radial sweep around a center point (§3).
type ViewshedResult struct {
	Center          Endpoint
	RadiusM         float64
	FreqMHz         float64
	Radials         []Radial
	CoveragePercent float64
}

// ViewshedRequest parameterizes a sweep. RadialCount defaults to 36
// (10-degree steps) when zero. FreqMHz defaults to the analyzer's
// configured frequency when zero. Parallel opts into per-radial
// goroutine fan-out via errgroup.
type ViewshedRequest struct {
	Center      Endpoint
	RadiusM     float64
	FreqMHz     float64
	RadialCount int
	Parallel    bool
}

// ComputeViewshed sweeps radialCount bearings out to req.RadiusM,
// reporting progress through out (may be nil) and returning the
// aggregated coverage result.
func (a *Analyzer) ComputeViewshed(ctx context.Context, req ViewshedRequest, out chan<- Event) (*ViewshedResult, error) {
	if req.RadiusM <= 0 {
		return nil, ErrGeometryInvalid
	}
	radialCount := req.RadialCount
	if radialCount <= 0 {
		radialCount = defaultRadialCount
	}
	freqMHz := req.FreqMHz
	if freqMHz <= 0 {
		freqMHz = a.cfg.FreqMHz
	}
	samplesPerRadial := clampInt(minSamplesPerRadial, maxSamplesPerRadial, int(math.Ceil(req.RadiusM/samplesPerRadialUnit)))

	bearings := make([]float64, radialCount)
	points := make([]LatLon, 0, 1+radialCount*samplesPerRadial)
	points = append(points, req.Center.Point)

	radialPointOffsets := make([][]int, radialCount)
	for r := 0; r < radialCount; r++ {
		bearing := float64(r) * 360.0 / float64(radialCount)
		bearings[r] = bearing
		offsets := make([]int, samplesPerRadial)
		for s := 0; s < samplesPerRadial; s++ {
			dist := req.RadiusM * float64(s+1) / float64(samplesPerRadial)
			lat, lon := Destination(req.Center.Point.Lat, req.Center.Point.Lon, bearing, dist)
			offsets[s] = len(points)
			points = append(points, LatLon{Lat: lat, Lon: lon})
		}
		radialPointOffsets[r] = offsets
	}

	emit := func(ev Event) {
		if out == nil {
			return
		}
		select {
		case out <- ev:
		default:
		}
	}
	emit(ViewshedProgressEvent{PercentComplete: 10, Message: "fetching elevations"})

	feet, err := a.provider.Elevations(ctx, points)
	if err != nil {
		return nil, ErrElevationUnavailable
	}
	elevations := fillElevationsMeters(feet)
	centerHeight := elevations[0] + req.Center.AntennaHeightM

	radials := make([]Radial, radialCount)
	var mu sync.Mutex
	completed := 0
	lastReportedTier := 1 // first analyze tier is 20%, below the 10% fetch tier already emitted

	reportProgress := func() {
		mu.Lock()
		completed++
		// Map radial completion onto the spec's 20%-95% analyze band.
		percent := 20 + 75*float64(completed)/float64(radialCount)
		tier := int(percent / 5)
		if tier > lastReportedTier {
			lastReportedTier = tier
			emit(ViewshedProgressEvent{RadialsComplete: completed, TotalRadials: radialCount, PercentComplete: percent, Message: "analyzing radials"})
		}
		mu.Unlock()
	}

	// computeRadial follows the same per-sample clearance/status
	// classification as the single-hop analyzer (§4.I), but against a
	// straight ray from the center's terrain+antenna height bent by
	// single-ended curvature, and a Fresnel radius computed over the
	// full radius-length segment (§4.K).
	computeRadial := func(r int) {
		bearing := bearings[r]
		offsets := radialPointOffsets[r]
		samples := make([]RadialSample, samplesPerRadial)
		visibleCount := 0
		losReached := req.RadiusM

		for s := 0; s < samplesPerRadial; s++ {
			dist := req.RadiusM * float64(s+1) / float64(samplesPerRadial)
			elev := elevations[offsets[s]]

			losHeight := centerHeight - CurvatureDrop(dist)
			clearance := losHeight - elev
			fresnelR := FresnelRadius(dist, req.RadiusM-dist, freqMHz)

			var percent float64
			switch {
			case fresnelR > 0:
				percent = 100 * clearance / fresnelR
			case clearance >= 0:
				percent = 100
			default:
				percent = -100
			}

			status := StatusObstructed
			switch {
			case clearance >= 0 && percent >= firstFresnelClearPercent:
				status = StatusClear
			case clearance >= 0:
				status = StatusMarginal
			}
			if status != StatusObstructed {
				visibleCount++
			} else if dist < losReached {
				losReached = dist
			}

			samples[s] = RadialSample{
				DistanceM:    dist,
				TerrainElevM: elev,
				LOSHeightM:   losHeight,
				ClearanceM:   clearance,
				Status:       status,
			}
		}

		radials[r] = Radial{
			BearingDeg:      bearing,
			Samples:         samples,
			LOSReachedM:     losReached,
			CoveragePercent: 100 * float64(visibleCount) / float64(samplesPerRadial),
		}
		reportProgress()
	}

	if req.Parallel {
		g, _ := errgroup.WithContext(ctx)
		for r := 0; r < radialCount; r++ {
			r := r
			g.Go(func() error {
				computeRadial(r)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for r := 0; r < radialCount; r++ {
			computeRadial(r)
		}
	}

	totalSamples := 0
	totalVisible := 0
	for _, rad := range radials {
		totalSamples += len(rad.Samples)
		for _, s := range rad.Samples {
			if s.Status != StatusObstructed {
				totalVisible++
			}
		}
	}
	coverage := 0.0
	if totalSamples > 0 {
		coverage = 100 * float64(totalVisible) / float64(totalSamples)
	}

	result := &ViewshedResult{
		Center:          req.Center,
		RadiusM:         req.RadiusM,
		FreqMHz:         freqMHz,
		Radials:         radials,
		CoveragePercent: coverage,
	}
	if a.metrics != nil {
		a.metrics.ViewshedsComputed.Inc()
	}
	emit(ViewshedCompleteEvent{Result: result})
	return result, nil
}
