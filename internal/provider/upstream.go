package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/vzahanych/weather-compare/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// upstream performs single-attempt GET requests against one provider. A
// circuit breaker stops hammering a provider that keeps failing.
type upstream struct {
	name    string
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	tele    *telemetry.Telemetry
}

func newUpstream(name, baseURL string, timeout time.Duration, tele *telemetry.Telemetry) *upstream {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &upstream{
		name:    name,
		client:  client,
		breaker: cb,
		tele:    tele,
	}
}

func (u *upstream) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	ctx, span := u.tele.GetTracer().Start(ctx, u.name+".get")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", u.name),
		attribute.String("path", path),
	)

	result, err := u.breaker.Execute(func() (interface{}, error) {
		resp, err := u.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Get(path)
		if err != nil {
			return nil, &Error{Provider: u.name, Kind: ErrTransport, Err: err}
		}
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
		if resp.StatusCode() != http.StatusOK {
			return nil, &Error{Provider: u.name, Kind: ErrStatus, Err: fmt.Errorf("status %d", resp.StatusCode())}
		}
		return resp.Body(), nil
	})
	if err != nil {
		var perr *Error
		if !errors.As(err, &perr) {
			// open or half-open breaker rejections
			err = &Error{Provider: u.name, Kind: ErrTransport, Err: err}
		}
		u.tele.RecordError(ctx, err, map[string]string{"provider": u.name})
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, &Error{Provider: u.name, Kind: ErrTransport, Err: fmt.Errorf("unexpected result type %T", result)}
	}
	return body, nil
}
