// Package dedup merges validation results referring to the same real-world
// contact. Exact duplicates share a canonical key (case-folded, +tag stripped,
// provider dot-variants collapsed); fuzzy duplicates share a domain and have
// highly similar name/company metadata.
//
// Similarity is Jaro-Winkler over the concatenated lower-cased name and
// company. The measure itself is a tunable choice; the 0.8 default threshold
// matches the documented merge behavior.
package dedup

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xrash/smetrics"

	"github.com/octobees/contact-engine/internal/entity"
	"github.com/octobees/contact-engine/internal/scoring"
)

// Providers that deliver a+b@x and a.b@x to the same mailbox.
var dotInsensitiveDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// Config controls merge behavior.
type Config struct {
	// Strict disables fuzzy matching; only canonical-key duplicates merge.
	Strict bool
	// SimilarityThreshold is the minimum Jaro-Winkler score for a fuzzy merge.
	SimilarityThreshold float64
}

type group struct {
	best    entity.ValidationResult
	contact entity.Contact
	members []entity.ValidationResult
	keys    map[string]bool
}

// Deduplicator accumulates results and emits merged contact groups. Safe for
// concurrent registration; merge decisions are read-then-write atomic under
// one mutex.
type Deduplicator struct {
	cfg Config

	mu         sync.Mutex
	groups     []*group
	byKey      map[string]*group
	byDomain   map[string][]*group
	total      int
	duplicates int
}

// New builds a deduplicator. The zero threshold falls back to 0.8.
func New(cfg Config) *Deduplicator {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.8
	}
	return &Deduplicator{
		cfg:      cfg,
		byKey:    make(map[string]*group),
		byDomain: make(map[string][]*group),
	}
}

// CanonicalKey normalizes an address for exact-duplicate detection: lower
// case, +tag suffix stripped, and local-part dots collapsed for providers
// known to ignore them.
func CanonicalKey(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	if tag := strings.Index(local, "+"); tag >= 0 {
		local = local[:tag]
	}
	if dotInsensitiveDomains[domain] {
		local = strings.ReplaceAll(local, ".", "")
	}
	return local + "@" + domain
}

// Register adds a result to the running index and reports whether it merged
// into an existing group. Results that did not survive validation (INVALID or
// BLACKLISTED) count toward the duplicate-rate denominator but never group.
func (d *Deduplicator) Register(res entity.ValidationResult) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.total++
	if res.Status == entity.StatusInvalid || res.Status == entity.StatusBlacklisted {
		return false
	}

	key := CanonicalKey(res.Email)
	if g, ok := d.byKey[key]; ok {
		d.merge(g, key, res)
		d.duplicates++
		return true
	}

	if !d.cfg.Strict {
		if g := d.fuzzyMatch(res); g != nil {
			d.merge(g, key, res)
			d.duplicates++
			return true
		}
	}

	g := &group{
		best:    res,
		contact: res.Source.Contact,
		members: []entity.ValidationResult{res},
		keys:    map[string]bool{key: true},
	}
	d.groups = append(d.groups, g)
	d.byKey[key] = g
	d.byDomain[res.Domain] = append(d.byDomain[res.Domain], g)
	return false
}

func (d *Deduplicator) fuzzyMatch(res entity.ValidationResult) *group {
	identity := contactIdentity(res.Source.Contact)
	if identity == "" {
		return nil
	}
	for _, g := range d.byDomain[res.Domain] {
		candidate := contactIdentity(g.contact)
		if candidate == "" {
			continue
		}
		if smetrics.JaroWinkler(identity, candidate, 0.7, 4) >= d.cfg.SimilarityThreshold {
			return g
		}
	}
	return nil
}

// merge folds res into g. The highest-confidence member supplies the group's
// email and quality; ties keep the first-seen member. Contact fields merge
// first-non-empty-wins.
func (d *Deduplicator) merge(g *group, key string, res entity.ValidationResult) {
	g.members = append(g.members, res)
	if res.ConfidenceScore > g.best.ConfidenceScore {
		g.best = res
	}
	g.contact = g.contact.Merge(res.Source.Contact)
	if !g.keys[key] {
		g.keys[key] = true
		d.byKey[key] = g
	}
}

// FinalContacts materializes the merged groups in first-seen order. A group's
// confidence is the best member's score boosted per corroborating duplicate,
// so it is always at least the max of its members.
func (d *Deduplicator) FinalContacts() []entity.ContactGroup {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]entity.ContactGroup, 0, len(d.groups))
	for _, g := range d.groups {
		confidence := g.best.ConfidenceScore
		for i := 1; i < len(g.members); i++ {
			confidence = scoring.Raise(confidence, scoring.DuplicateBoost)
		}
		members := make([]entity.ValidationResult, len(g.members))
		copy(members, g.members)
		out = append(out, entity.ContactGroup{
			ID:              uuid.New(),
			Email:           g.best.Email,
			Contact:         g.contact,
			Members:         members,
			Quality:         g.best.Quality,
			ConfidenceScore: confidence,
		})
	}
	return out
}

// DuplicateRate returns duplicates found over total registered records.
func (d *Deduplicator) DuplicateRate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.total == 0 {
		return 0
	}
	return float64(d.duplicates) / float64(d.total)
}

func contactIdentity(c entity.Contact) string {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	company := strings.ToLower(strings.TrimSpace(c.Company))
	return strings.TrimSpace(name + " " + company)
}
