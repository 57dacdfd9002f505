package rfpath

import "context"

/*
 * Multi-hop relay chain (§4.J): decomposes a waypoint list into
 * consecutive single-hop analyses and summarizes the weakest link.
 */

// RelayChain is the result of analyzing a multi-hop relay path (§3).
type RelayChain struct {
	Hops            []HopResult
	TotalDistanceM  float64
	WeakestHopIndex int
	OverallMarginDB float64
	Viable          bool
}

// AnalyzeRelay decomposes waypoints into len(waypoints)-1 consecutive
// hops and analyzes each independently. A hop whose elevation data
// could not be fetched, or whose geometry is invalid, is recorded with
// its Error field set rather than aborting the remaining hops (§7).
func AnalyzeRelay(ctx context.Context, analyzer *Analyzer, waypoints []Endpoint) (*RelayChain, error) {
	if len(waypoints) < 2 {
		return nil, ErrGeometryInvalid
	}

	hops := make([]HopResult, len(waypoints)-1)
	weakestIdx := -1
	allOK := true
	totalDistance := 0.0

	for i := 0; i < len(waypoints)-1; i++ {
		totalDistance += HaversineDistance(waypoints[i].Point.Lat, waypoints[i].Point.Lon, waypoints[i+1].Point.Lat, waypoints[i+1].Point.Lon)
		result, err := analyzer.AnalyzePath(ctx, waypoints[i], waypoints[i+1])
		if err != nil {
			hops[i] = HopResult{From: waypoints[i], To: waypoints[i+1], Error: err.Error()}
			allOK = false
			continue
		}
		hops[i] = *result
		if hops[i].Error != "" {
			allOK = false
			continue
		}
		if weakestIdx == -1 || hops[i].LinkBudget.MarginDB < hops[weakestIdx].LinkBudget.MarginDB {
			weakestIdx = i
		}
	}

	chain := &RelayChain{Hops: hops, WeakestHopIndex: weakestIdx, TotalDistanceM: totalDistance}
	if weakestIdx >= 0 {
		chain.OverallMarginDB = hops[weakestIdx].LinkBudget.MarginDB
	}
	chain.Viable = allOK && weakestIdx >= 0 && chain.OverallMarginDB >= 0
	if analyzer.metrics != nil {
		analyzer.metrics.RelaysAnalyzed.Inc()
	}
	return chain, nil
}
