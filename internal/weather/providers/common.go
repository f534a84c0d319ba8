package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// HTTPClientConfig bundles the HTTP client and the politeness settings shared
// by every outbound call.
type HTTPClientConfig struct {
	Client    *http.Client
	UserAgent string
	Accept    string

	// Limiter paces outbound requests. Nil disables pacing.
	Limiter *rate.Limiter
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

var (
	errNoHTTPClient = errors.New("http client not configured")
	errNoUserAgent  = errors.New("user agent is required")
	errCircuitOpen  = errors.New("circuit breaker open")
)

// newCircuitBreaker trips on transport failures and 5xx responses only; a
// 4xx from one resource says nothing about the health of the service.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode < 500
		},
	})
}

// doRequest performs a single GET through the limiter and, when cb is not
// nil, the circuit breaker. There are no retries: the first failure is
// returned to the caller.
func doRequest(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, url string) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.UserAgent == "" {
		return nil, errNoUserAgent
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if cfg.Accept != "" {
		req.Header.Set("Accept", cfg.Accept)
	}

	send := func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
		}
		return resp, nil
	}

	if cb == nil {
		resp, err := send()
		if err != nil {
			return nil, err
		}
		return resp.(*http.Response), nil
	}

	result, err := cb.Execute(send)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// getJSON fetches url and decodes the body into target. cb may be nil.
func getJSON(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, url string, target any) error {
	resp, err := doRequest(ctx, cfg, cb, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", url, err)
	}
	return nil
}
