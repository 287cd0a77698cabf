package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"enrollment-insights/internal/concurrency"
	"enrollment-insights/internal/config"
	"enrollment-insights/internal/domain"
	"enrollment-insights/internal/httpx"

	"go.uber.org/zap"
)

const DefaultAPIURL = "https://api.airtable.com/v0"

// Tables names the three tables inside the base.
type Tables struct {
	Leaders     string
	Cities      string
	Enrollments string
}

func DefaultTables() Tables {
	return Tables{Leaders: "Leaders", Cities: "Cities", Enrollments: "Enrollments"}
}

type Client struct {
	APIURL string
	BaseID string
	Token  string
	Tables Tables
	HTTP   *http.Client

	// Retry is owned by whoever builds the client; the fetch loop itself
	// never decides to retry.
	Retry  httpx.RetryConfig
	Logger *zap.Logger
}

func New(apiURL, baseID, token string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		APIURL: apiURL,
		BaseID: baseID,
		Token:  token,
		Tables: DefaultTables(),
		HTTP:   &http.Client{Timeout: 30 * time.Second},
		Retry:  httpx.NoRetry(),
		Logger: zap.NewNop(),
	}
}

// FromConfig builds a client for the configured base, tables and retry
// policy.
func FromConfig(cfg config.Config, logger *zap.Logger) *Client {
	c := New(cfg.AirtableAPIURL, cfg.AirtableBaseID, cfg.AirtableToken)
	c.Tables = Tables{
		Leaders:     cfg.LeadersTable,
		Cities:      cfg.CitiesTable,
		Enrollments: cfg.EnrollmentsTable,
	}
	c.Retry = httpx.RetryAttempts(cfg.HTTPRetryAttempts)
	if logger != nil {
		c.Logger = logger
	}
	return c
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool { return c.Token != "" && c.BaseID != "" }

type pageResponse struct {
	Records *[]domain.RawRecord `json:"records"`
	Offset  string              `json:"offset"`
}

// FetchAll returns every record of table in source order, following the
// offset cursor page by page. Any failed page discards what was accumulated.
func (c *Client) FetchAll(ctx context.Context, table string) ([]domain.RawRecord, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s/%s", c.APIURL, url.PathEscape(c.BaseID), url.PathEscape(table)))
	if err != nil {
		return nil, fmt.Errorf("airtable: invalid url: %w", err)
	}

	var all []domain.RawRecord
	offset := ""
	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, u, offset)
		if err != nil {
			return nil, fmt.Errorf("airtable: %s page %d: %w", table, page, err)
		}

		all = append(all, (*resp.Records)...)
		c.logger().Debug("airtable page",
			zap.String("table", table),
			zap.Int("page", page),
			zap.Int("records", len(*resp.Records)),
		)

		if resp.Offset == "" {
			break
		}
		offset = resp.Offset
	}

	if all == nil {
		all = []domain.RawRecord{}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, base *url.URL, offset string) (*pageResponse, error) {
	pageURL := *base
	if offset != "" {
		q := pageURL.Query()
		q.Set("offset", offset)
		pageURL.RawQuery = q.Encode()
	}

	retry := c.Retry
	retry.Logger = c.logger()
	var out pageResponse
	err := httpx.DoJSON(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", "Bearer "+c.Token)
		r.Header.Set("Accept", "application/json")
		return r, nil
	}, &out, retry)
	switch {
	case errors.Is(err, httpx.ErrDecode):
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	case out.Records == nil:
		return nil, ErrMalformedResponse
	}
	return &out, nil
}

// FetchTables fetches the three tables concurrently. All three must succeed.
func (c *Client) FetchTables(ctx context.Context) (domain.RawTables, error) {
	fetch := func(table string) func(context.Context) ([]domain.RawRecord, error) {
		return func(ctx context.Context) ([]domain.RawRecord, error) {
			return c.FetchAll(ctx, table)
		}
	}

	res, err := concurrency.All(ctx,
		fetch(c.Tables.Leaders),
		fetch(c.Tables.Cities),
		fetch(c.Tables.Enrollments),
	)
	if err != nil {
		return domain.RawTables{}, err
	}
	return domain.RawTables{Leaders: res[0], Cities: res[1], Enrollments: res[2]}, nil
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
