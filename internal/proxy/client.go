package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"enrollment-insights/internal/airtable"
	"enrollment-insights/internal/concurrency"
	"enrollment-insights/internal/domain"
	"enrollment-insights/internal/httpx"
)

// Client reads the three tables from a proxy Server in one round of
// concurrent requests.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Retry:   httpx.NoRetry(),
	}
}

type envelope struct {
	Records *[]domain.RawRecord `json:"records"`
}

// FetchTable reads one table. Non-2xx responses and bodies without a records
// array are reported as airtable.ErrSourceUnavailable.
func (c *Client) FetchTable(ctx context.Context, table string) ([]domain.RawRecord, error) {
	u := fmt.Sprintf("%s/api/%s", c.BaseURL, table)
	var env envelope
	err := httpx.DoJSON(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", "application/json")
		r.Header.Set("Accept-Encoding", "br")
		return r, nil
	}, &env, c.Retry)
	switch {
	case errors.Is(err, httpx.ErrDecode):
		return nil, fmt.Errorf("%s: %w: %v", table, airtable.ErrMalformedResponse, err)
	case err != nil:
		return nil, fmt.Errorf("%s: %w: %w", table, airtable.ErrSourceUnavailable, err)
	case env.Records == nil:
		return nil, fmt.Errorf("%s: %w", table, airtable.ErrMalformedResponse)
	}
	return *env.Records, nil
}

// FetchTables requests leaders, cities and enrollments concurrently. Any
// single failure fails the whole call.
func (c *Client) FetchTables(ctx context.Context) (domain.RawTables, error) {
	fetch := func(table string) func(context.Context) ([]domain.RawRecord, error) {
		return func(ctx context.Context) ([]domain.RawRecord, error) { return c.FetchTable(ctx, table) }
	}
	res, err := concurrency.All(ctx,
		fetch(domain.TableLeaders),
		fetch(domain.TableCities),
		fetch(domain.TableEnrollments),
	)
	if err != nil {
		return domain.RawTables{}, err
	}
	return domain.RawTables{Leaders: res[0], Cities: res[1], Enrollments: res[2]}, nil
}
