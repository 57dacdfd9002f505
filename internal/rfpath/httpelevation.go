package rfpath

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

/*
 * HTTPElevationProvider is the only concrete ElevationProvider this
 * module ships; the interface itself is named-only collaborator
 * territory (external terrain data). Talking to an arbitrary REST
 * elevation service is a system boundary with no library in the
 * dependency pack that fits better than net/http + encoding/json.
 */

type elevationRequestPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type elevationRequestBody struct {
	Locations []elevationRequestPoint `json:"locations"`
}

type elevationResult struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation"`
}

type elevationResponseBody struct {
	Results []elevationResult `json:"results"`
}

// HTTPElevationProvider queries a single POST endpoint with a batch
// request body ({"locations":[{"latitude","longitude"}, ...]}) and
// expects a matching {"results":[{"elevation"}, ...]} response, with
// elevation expressed in feet.
type HTTPElevationProvider struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPElevationProvider returns a provider pointed at endpoint,
// using http.DefaultClient if client is nil.
func NewHTTPElevationProvider(endpoint string, client *http.Client) *HTTPElevationProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPElevationProvider{Endpoint: endpoint, Client: client}
}

// Elevations resolves points in a single batched request. The
// provider's native unit is feet, matching fillElevationsMeters'
// expectations.
func (p *HTTPElevationProvider) Elevations(ctx context.Context, points []LatLon) ([]*float64, error) {
	body := elevationRequestBody{Locations: make([]elevationRequestPoint, len(points))}
	for i, pt := range points {
		body.Locations[i] = elevationRequestPoint{Latitude: pt.Lat, Longitude: pt.Lon}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode elevation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build elevation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation provider returned status %d", resp.StatusCode)
	}

	var decoded elevationResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(decoded.Results) != len(points) {
		return nil, fmt.Errorf("elevation provider returned %d results for %d points", len(decoded.Results), len(points))
	}

	out := make([]*float64, len(points))
	for i, r := range decoded.Results {
		out[i] = r.Elevation
	}
	return out, nil
}
