// Package dnscache resolves a domain's MX records with a bounded lookup and a
// shared TTL cache. Resolution failures are returned as errors and never
// cached, so transient DNS trouble is retried on a later run.
package dnscache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNoMXRecords indicates the lookup succeeded but returned no mail servers.
var ErrNoMXRecords = errors.New("no mx records")

// MXLookuper abstracts the MX lookup to simplify testing.
type MXLookuper interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

type entry struct {
	hosts      []string
	resolvedAt time.Time
	ttl        time.Duration
}

// Resolver caches successful MX resolutions for a TTL. Safe for concurrent
// use; a cache write replaces the whole entry for a domain, so racing workers
// resolving the same domain converge on a complete entry either way.
type Resolver struct {
	lookuper MXLookuper
	timeout  time.Duration
	ttl      time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures optional dependencies.
type Option func(*Resolver)

// WithLookuper overrides the system resolver.
func WithLookuper(lookuper MXLookuper) Option {
	return func(r *Resolver) {
		if lookuper != nil {
			r.lookuper = lookuper
		}
	}
}

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver builds a resolver with the given per-lookup timeout and cache TTL.
func NewResolver(timeout, ttl time.Duration, opts ...Option) *Resolver {
	r := &Resolver{
		lookuper: systemLookuper{},
		timeout:  timeout,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the domain's MX hostnames ordered by preference. A fresh
// cache entry short-circuits the network; a miss performs one bounded lookup.
func (r *Resolver) Resolve(ctx context.Context, domain string) ([]string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, errors.New("empty domain")
	}

	if hosts, ok := r.cached(domain); ok {
		return hosts, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.lookuper.LookupMX(lookupCtx, domain)
	if err != nil {
		return nil, fmt.Errorf("mx lookup for %s: %w", domain, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("mx lookup for %s: %w", domain, ErrNoMXRecords)
	}

	sorted := make([]*net.MX, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pref < sorted[j].Pref })

	hosts := make([]string, 0, len(sorted))
	for _, mx := range sorted {
		host := strings.TrimSuffix(mx.Host, ".")
		if host != "" {
			hosts = append(hosts, host)
		}
	}

	r.mu.Lock()
	r.entries[domain] = entry{hosts: hosts, resolvedAt: r.now(), ttl: r.ttl}
	r.mu.Unlock()

	return cloneHosts(hosts), nil
}

func (r *Resolver) cached(domain string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[domain]
	if !ok {
		return nil, false
	}
	if r.now().After(e.resolvedAt.Add(e.ttl)) {
		return nil, false
	}
	return cloneHosts(e.hosts), true
}

func cloneHosts(hosts []string) []string {
	out := make([]string, len(hosts))
	copy(out, hosts)
	return out
}

type systemLookuper struct{}

func (systemLookuper) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
