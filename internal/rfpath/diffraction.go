package rfpath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

/*
 * Diffraction engine (§4.H): Fresnel-Kirchhoff parameter, ITU-R
 * P.526-15 single-edge loss, and the Deygout recursive multi-edge
 * search.
 */

// maxDeygoutDepth bounds recursion (§3 invariant: depth <= 3).
const maxDeygoutDepth = 3

// kirchhoffV is the Fresnel-Kirchhoff diffraction parameter for an
// obstruction of height h (meters, positive above the LOS line) at
// sub-distances d1, d2 (meters) and frequency freqMHz.
func kirchhoffV(h, d1, d2, freqMHz float64) float64 {
	lambda := WavelengthMeters(freqMHz)
	if d1 <= 0 || d2 <= 0 || lambda <= 0 {
		return math.Inf(-1)
	}
	return h * math.Sqrt(2*(d1+d2)/(lambda*d1*d2))
}

// SingleEdgeLoss is the ITU-R P.526-15 continuous-form diffraction
// loss J(v) in dB. Zero for v <= -0.78 (clear of the obstruction).
func SingleEdgeLoss(v float64) float64 {
	if v <= -0.78 {
		return 0
	}
	return 6.9 + 20*math.Log10(math.Sqrt((v-0.1)*(v-0.1)+1)+v-0.1)
}

// DiffractionObstacle is one knife-edge the Deygout search identified.
type DiffractionObstacle struct {
	Index      int
	DistanceM  float64
	V          float64
	LossDB     float64
	IsDominant bool
}

// Deygout runs the recursive dominant-obstacle search over
// distances/terrain (meters, same length, strictly increasing
// distances) between effective LOS heights startHeight and endHeight
// at the path's two ends, for freqMHz. Returns the accumulated
// diffraction loss in dB and the obstacles found, most significant
// (depth 0) first.
func Deygout(distances, terrain []float64, startHeight, endHeight, freqMHz float64) (lossDB float64, obstacles []DiffractionObstacle) {
	if len(distances) != len(terrain) || len(distances) < 2 {
		return 0, nil
	}
	return deygoutRecurse(distances, terrain, 0, len(distances)-1, startHeight, endHeight, freqMHz, 0)
}

func deygoutRecurse(distances, terrain []float64, startIdx, endIdx int, startHeight, endHeight, freqMHz float64, depth int) (float64, []DiffractionObstacle) {
	if endIdx-startIdx < 2 {
		return 0, nil
	}

	span := distances[endIdx] - distances[startIdx]
	if span <= 0 {
		return 0, nil
	}

	interiorV := make([]float64, endIdx-startIdx-1)
	for i := startIdx + 1; i < endIdx; i++ {
		frac := (distances[i] - distances[startIdx]) / span
		losAtI := startHeight + (endHeight-startHeight)*frac
		h := terrain[i] - losAtI
		d1 := distances[i] - distances[startIdx]
		d2 := distances[endIdx] - distances[i]
		interiorV[i-startIdx-1] = kirchhoffV(h, d1, d2, freqMHz)
	}
	relMaxIdx := floats.MaxIdx(interiorV)
	maxV := interiorV[relMaxIdx]
	maxIdx := startIdx + 1 + relMaxIdx
	if maxV <= -0.78 {
		return 0, nil
	}

	loss := SingleEdgeLoss(maxV)
	obstacle := DiffractionObstacle{
		Index:      maxIdx,
		DistanceM:  distances[maxIdx],
		V:          maxV,
		LossDB:     loss,
		IsDominant: depth == 0,
	}
	obstacles = []DiffractionObstacle{obstacle}
	totalLoss := loss

	if depth < maxDeygoutDepth {
		leftLoss, leftObs := deygoutRecurse(distances, terrain, startIdx, maxIdx, startHeight, terrain[maxIdx], freqMHz, depth+1)
		rightLoss, rightObs := deygoutRecurse(distances, terrain, maxIdx, endIdx, terrain[maxIdx], endHeight, freqMHz, depth+1)
		totalLoss += leftLoss + rightLoss
		obstacles = append(obstacles, leftObs...)
		obstacles = append(obstacles, rightObs...)
	}

	return totalLoss, obstacles
}
