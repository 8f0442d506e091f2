// Package engine drives the validation pipeline over batches of scraped
// records: syntax check, blacklist filtering, cached MX resolution and
// deduplication, fanned out over a bounded worker pool.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/contact-engine/internal/blacklist"
	"github.com/octobees/contact-engine/internal/dedup"
	"github.com/octobees/contact-engine/internal/dnscache"
	"github.com/octobees/contact-engine/internal/entity"
	"github.com/octobees/contact-engine/internal/scoring"
	"github.com/octobees/contact-engine/internal/syntax"
)

// Config controls one engine instance. Construction is the only point where
// errors surface to the caller; per-record failures are captured in results.
type Config struct {
	EnableDNSCheck      bool
	DNSTimeout          time.Duration
	DNSCacheTTL         time.Duration
	StrictDeduplication bool
	SimilarityThreshold float64
	MaxWorkers          int
	// BlacklistRules replaces the built-in rule set when non-nil.
	BlacklistRules     []blacklist.Rule
	DefaultPhoneRegion string
	// Lookuper overrides the system MX resolver; nil uses net.DefaultResolver.
	Lookuper dnscache.MXLookuper
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		EnableDNSCheck:      true,
		DNSTimeout:          3 * time.Second,
		DNSCacheTTL:         24 * time.Hour,
		SimilarityThreshold: 0.8,
		MaxWorkers:          5,
		DefaultPhoneRegion:  "US",
	}
}

// BatchOutcome bundles everything a batch produces.
type BatchOutcome struct {
	Results  []entity.ValidationResult `json:"results"`
	Contacts []entity.ContactGroup     `json:"contacts"`
	Report   entity.Report             `json:"report"`
}

// Engine validates and deduplicates batches of email records. Instances are
// independent: the DNS cache and blacklist live on the engine, not in package
// state, so per-campaign pipelines can run side by side.
type Engine struct {
	cfg      Config
	filter   *blacklist.Filter
	resolver *dnscache.Resolver
}

// New validates cfg and builds an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.MaxWorkers <= 0 {
		return nil, fmt.Errorf("max workers must be positive, got %d", cfg.MaxWorkers)
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("similarity threshold %v outside [0,1]", cfg.SimilarityThreshold)
	}
	if cfg.DNSTimeout <= 0 {
		return nil, fmt.Errorf("dns timeout must be positive, got %s", cfg.DNSTimeout)
	}
	if cfg.DNSCacheTTL <= 0 {
		return nil, fmt.Errorf("dns cache ttl must be positive, got %s", cfg.DNSCacheTTL)
	}

	resolverOpts := []dnscache.Option{}
	if cfg.Lookuper != nil {
		resolverOpts = append(resolverOpts, dnscache.WithLookuper(cfg.Lookuper))
	}
	return &Engine{
		cfg:      cfg,
		filter:   blacklist.NewFilter(cfg.BlacklistRules),
		resolver: dnscache.NewResolver(cfg.DNSTimeout, cfg.DNSCacheTTL, resolverOpts...),
	}, nil
}

// NewRecord normalizes raw scraper output into an EmailRecord. Phone numbers
// are parsed against the configured default region and kept in E.164 form;
// numbers that do not parse are dropped rather than failing the record.
func (e *Engine) NewRecord(email string, meta map[string]string) entity.EmailRecord {
	contact := entity.ContactFromMap(meta)
	contact.Phone = normalizePhone(contact.Phone, e.cfg.DefaultPhoneRegion)
	return entity.EmailRecord{Email: email, Contact: contact}
}

// ValidateBatch runs the full pipeline over records. Results come back in
// input order regardless of completion order. Per-record problems (bad syntax,
// blacklist hits, DNS failures, even a panicking stage) are captured in that
// record's result; the only error returned is context cancellation.
func (e *Engine) ValidateBatch(ctx context.Context, records []entity.EmailRecord) (*BatchOutcome, error) {
	results := make([]entity.ValidationResult, len(records))

	workers := e.cfg.MaxWorkers
	if workers > len(records) {
		workers = len(records)
	}

	if workers > 0 {
		g, runCtx := errgroup.WithContext(ctx)
		jobs := make(chan int)

		g.Go(func() error {
			defer close(jobs)
			for i := range records {
				select {
				case jobs <- i:
				case <-runCtx.Done():
					return runCtx.Err()
				}
			}
			return nil
		})

		for w := 0; w < workers; w++ {
			g.Go(func() error {
				for idx := range jobs {
					results[idx] = e.validateOne(runCtx, records[idx])
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	// Dedup registration is funneled through this single pass in input order,
	// keeping merge decisions atomic and tie breaks reproducible.
	deduper := dedup.New(dedup.Config{
		Strict:              e.cfg.StrictDeduplication,
		SimilarityThreshold: e.cfg.SimilarityThreshold,
	})
	for i := range results {
		deduper.Register(results[i])
	}

	return &BatchOutcome{
		Results:  results,
		Contacts: deduper.FinalContacts(),
		Report:   buildReport(results, deduper.DuplicateRate()),
	}, nil
}

// validateOne runs the per-record stages. A panic in any stage is converted to
// an UNKNOWN result at this boundary so sibling workers keep running.
func (e *Engine) validateOne(ctx context.Context, rec entity.EmailRecord) (res entity.ValidationResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = entity.ValidationResult{
				Email:   strings.TrimSpace(rec.Email),
				Status:  entity.StatusUnknown,
				Quality: entity.QualityLow,
				Reason:  fmt.Sprintf("validation stage panicked: %v", r),
				Source:  rec,
			}
		}
		res.ProcessingTime = time.Since(start)
	}()

	res = syntax.Validate(rec)
	if res.Status != entity.StatusValid {
		return res
	}

	res = e.filter.Check(res)
	if res.Status != entity.StatusValid {
		return res
	}

	if !e.cfg.EnableDNSCheck {
		return res
	}

	hosts, err := e.resolver.Resolve(ctx, res.Domain)
	if err != nil {
		// DNS failure is not proof of a fake address.
		res.Status = entity.StatusUnknown
		res.IsValid = false
		res.Quality = entity.QualityLow
		res.Reason = err.Error()
		return res
	}

	res.MXRecords = hosts
	res.ConfidenceScore = scoring.Raise(res.ConfidenceScore, scoring.MXBonus)
	// A role-flagged record stays LOW; penalties never compound past that
	// floor, the tier just does not recover.
	if res.Reason == "" {
		res.Quality = scoring.TierFor(res.ConfidenceScore)
	}
	return res
}

func buildReport(results []entity.ValidationResult, duplicateRate float64) entity.Report {
	report := entity.Report{
		TotalProcessed:      len(results),
		QualityDistribution: make(map[entity.Quality]int),
		DuplicateRate:       duplicateRate,
	}
	if len(results) == 0 {
		return report
	}

	var confidenceSum float64
	var elapsedSum time.Duration
	for _, res := range results {
		switch res.Status {
		case entity.StatusValid:
			report.ValidCount++
		case entity.StatusInvalid:
			report.InvalidCount++
		case entity.StatusBlacklisted:
			report.BlacklistedCount++
		default:
			report.UnknownCount++
		}
		report.QualityDistribution[res.Quality]++
		confidenceSum += res.ConfidenceScore
		elapsedSum += res.ProcessingTime
	}

	total := float64(len(results))
	report.AcceptanceRate = float64(report.ValidCount) / total
	report.AverageConfidence = confidenceSum / total
	report.AverageProcessingTime = time.Duration(float64(elapsedSum) / total)
	return report
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = "US"
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
