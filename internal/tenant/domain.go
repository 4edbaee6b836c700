package tenant

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/lms-platform/lms-backend/internal/db/models"
	"github.com/lms-platform/lms-backend/internal/telemetry"
)

// DomainLookup finds approved, white-label organizations by host information.
type DomainLookup interface {
	FindWhitelabelByCustomDomain(ctx context.Context, domain string) (*models.Organization, error)
	FindWhitelabelBySubdomain(ctx context.Context, label string) (*models.Organization, error)
}

// DomainResolver maps a request host to an organization.
type DomainResolver struct {
	store       DomainLookup
	cache       Cache
	ttl         time.Duration
	negativeTTL time.Duration
	keyPrefix   string
	reserved    []string
}

// DomainOption configures a DomainResolver
type DomainOption func(*DomainResolver)

// WithCache caches found organizations for ttl and misses for negativeTTL.
// A zero negativeTTL disables negative caching.
func WithCache(cache Cache, keyPrefix string, ttl, negativeTTL time.Duration) DomainOption {
	return func(r *DomainResolver) {
		r.cache = cache
		r.keyPrefix = keyPrefix
		r.ttl = ttl
		r.negativeTTL = negativeTTL
	}
}

// WithReservedSubdomains replaces DefaultReservedSubdomains.
func WithReservedSubdomains(labels ...string) DomainOption {
	return func(r *DomainResolver) {
		if len(labels) > 0 {
			r.reserved = labels
		}
	}
}

// NewDomainResolver creates a resolver backed by store
func NewDomainResolver(store DomainLookup, opts ...DomainOption) *DomainResolver {
	r := &DomainResolver{store: store, reserved: DefaultReservedSubdomains}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the organization serving host. The full host is matched against
// custom domains first, then the subdomain label against custom domains and slugs.
// No match is not an error.
func (r *DomainResolver) Resolve(ctx context.Context, host string) (*models.Organization, Source, error) {
	h := NormalizeHost(host)
	if h == "" || net.ParseIP(h) != nil {
		return nil, SourceNone, nil
	}

	if strings.Contains(h, ".") {
		org, err := r.ByCustomDomain(ctx, h)
		if err != nil {
			return nil, SourceNone, err
		}
		if org != nil {
			return org, SourceCustomDomain, nil
		}
	}

	label := ExtractSubdomain(h, r.reserved...)
	if label == "" {
		return nil, SourceNone, nil
	}

	org, err := r.cached(ctx, "subdomain:"+label, func(ctx context.Context) (*models.Organization, error) {
		return r.store.FindWhitelabelBySubdomain(ctx, label)
	})
	if err != nil {
		return nil, SourceNone, err
	}
	if org == nil {
		return nil, SourceNone, nil
	}
	return org, SourceSubdomain, nil
}

// ByCustomDomain returns the approved, white-label organization registered for domain.
func (r *DomainResolver) ByCustomDomain(ctx context.Context, domain string) (*models.Organization, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, nil
	}
	return r.cached(ctx, "domain:"+domain, func(ctx context.Context) (*models.Organization, error) {
		return r.store.FindWhitelabelByCustomDomain(ctx, domain)
	})
}

func (r *DomainResolver) cached(ctx context.Context, key string, load func(context.Context) (*models.Organization, error)) (*models.Organization, error) {
	if r.cache == nil {
		return load(ctx)
	}

	key = r.keyPrefix + key
	org, found, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		telemetry.TenantCacheLookupsTotal.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "tenant cache read failed", "key", key, "error", err)
	case found && org != nil:
		telemetry.TenantCacheLookupsTotal.WithLabelValues("hit").Inc()
		return org, nil
	case found:
		telemetry.TenantCacheLookupsTotal.WithLabelValues("negative_hit").Inc()
		return nil, nil
	default:
		telemetry.TenantCacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	org, err = load(ctx)
	if err != nil {
		return nil, err
	}

	ttl := r.ttl
	if org == nil {
		ttl = r.negativeTTL
	}
	if ttl > 0 {
		if err := r.cache.Set(ctx, key, org, ttl); err != nil {
			slog.WarnContext(ctx, "tenant cache write failed", "key", key, "error", err)
		}
	}
	return org, nil
}
