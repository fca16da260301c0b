package traveltime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/metrics"
	"fleet-route-service/internal/ports"

	"golang.org/x/time/rate"
)

// GraphHopperProvider implements TravelTimeProvider against a
// GraphHopper routing instance.
//
// It classifies failures as transient or permanent via EstimateError
// but performs no retries itself; the matrix builder owns the retry
// policy. Calls are rate limited to stay inside the instance's request
// budget. The provider is safe for concurrent use.
type GraphHopperProvider struct {
	session *http.Client
	baseURL string
	limiter *rate.Limiter
}

type routeResponse struct {
	Paths []struct {
		// Travel time in milliseconds.
		Time int64 `json:"time"`
	} `json:"paths"`
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func NewGraphHopperProvider(baseURL string, requestsPerSecond float64) (*GraphHopperProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("graphhopper base URL is empty")
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 50
	}

	return &GraphHopperProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

// Estimate queries the GraphHopper /route endpoint for one ordered pair.
func (g *GraphHopperProvider) Estimate(
	ctx context.Context,
	origin, destination domain.Location,
	mode domain.TravelMode,
) (time.Duration, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, &ports.EstimateError{Op: "graphhopper estimate", Transient: true, Err: err}
	}

	metrics.ProviderRequests.WithLabelValues(string(mode)).Inc()

	q := url.Values{}
	q.Add("point", fmt.Sprintf("%f,%f", origin.Lat, origin.Lon))
	q.Add("point", fmt.Sprintf("%f,%f", destination.Lat, destination.Lon))
	q.Set("profile", string(mode))
	q.Set("locale", "da")
	q.Set("calc_points", "false")

	endpoint := g.baseURL + "/route?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, &ports.EstimateError{Op: "graphhopper estimate", Transient: false, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		// Timeouts and connection failures are retryable.
		return 0, &ports.EstimateError{Op: "graphhopper estimate", Transient: isNetTransient(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		he := &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		return 0, &ports.EstimateError{
			Op:        "graphhopper estimate",
			Transient: retryableStatus(resp.StatusCode),
			Err:       he,
		}
	}

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return 0, &ports.EstimateError{Op: "graphhopper estimate", Transient: false, Err: fmt.Errorf("decode route response: %w", err)}
	}

	if len(rr.Paths) == 0 {
		return 0, &ports.EstimateError{Op: "graphhopper estimate", Transient: false, Err: errors.New("route response contains no paths")}
	}

	return time.Duration(rr.Paths[0].Time) * time.Millisecond, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isNetTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
