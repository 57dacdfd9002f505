package rfpath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance_SelfIsZero(t *testing.T) {
	d := HaversineDistance(40.0, -105.0, 40.0, -105.0)
	assert.InDelta(t, 0, d, 1e-6)
}

func TestHaversineDistance_Antipodal(t *testing.T) {
	d := HaversineDistance(0, 0, 0, 180)
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1.0)
}

func TestCurvatureDrop_At10Km(t *testing.T) {
	drop := CurvatureDrop(10000)
	assert.InDelta(t, 5.88, drop, 0.05)
}

func TestFresnelRadius_915MHzAt10Km(t *testing.T) {
	r := FresnelRadius(5000, 5000, 915.0)
	assert.InDelta(t, 28.6, r, 0.5)
}

func TestDestination_RoundTripsBearing(t *testing.T) {
	lat, lon := Destination(40.0, -105.0, 90.0, 10000)
	back := ForwardBearing(lat, lon, 40.0, -105.0)
	// Travelling due east then looking back should read close to due west.
	assert.InDelta(t, 270.0, back, 2.0)
}

func TestForwardBearing_NorthIsZero(t *testing.T) {
	bearing := ForwardBearing(40.0, -105.0, 41.0, -105.0)
	assert.InDelta(t, 0.0, bearing, 0.5)
}
