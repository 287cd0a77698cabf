package source

import (
	"context"

	"enrollment-insights/internal/airtable"
	"enrollment-insights/internal/domain"
	"enrollment-insights/internal/proxy"
)

// Tier is one way of obtaining the three raw tables.
type Tier interface {
	Name() string
	// Enabled reports whether the tier should be attempted at all. A disabled
	// tier is skipped, not failed.
	Enabled() bool
	Fetch(ctx context.Context) (domain.RawTables, error)
}

// ProxyTier reads through a proxy.Server.
type ProxyTier struct {
	Client *proxy.Client
	On     bool
}

func (t ProxyTier) Name() string  { return domain.SourceProxy }
func (t ProxyTier) Enabled() bool { return t.On && t.Client != nil && t.Client.BaseURL != "" }

func (t ProxyTier) Fetch(ctx context.Context) (domain.RawTables, error) {
	return t.Client.FetchTables(ctx)
}

// DirectTier pages through the Airtable API itself.
type DirectTier struct {
	Client *airtable.Client
}

func (t DirectTier) Name() string  { return domain.SourceDirect }
func (t DirectTier) Enabled() bool { return t.Client != nil && t.Client.Configured() }

func (t DirectTier) Fetch(ctx context.Context) (domain.RawTables, error) {
	return t.Client.FetchTables(ctx)
}
