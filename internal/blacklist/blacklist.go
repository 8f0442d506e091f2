// Package blacklist rejects or downgrades addresses matching known-bad
// patterns. Hard matches (system mailboxes, disposable domains) are terminal;
// soft matches (role accounts) keep the record valid at reduced quality, since
// info@ or sales@ is often the only contact a small business publishes.
package blacklist

import (
	"strings"

	"github.com/octobees/contact-engine/internal/entity"
	"github.com/octobees/contact-engine/internal/scoring"
)

// Reason codes attached to matching rules.
const (
	ReasonSystemGenerated = "system_generated"
	ReasonDisposable      = "disposable"
	ReasonRoleAccount     = "role_account"
)

// Kind selects how a rule pattern is matched.
type Kind int

const (
	// KindAddress matches the full normalized address exactly.
	KindAddress Kind = iota
	// KindLocalPart matches the local part exactly, on any domain.
	KindLocalPart
	// KindDomain matches the domain exactly.
	KindDomain
	// KindLocalPrefix matches a prefix of the local part.
	KindLocalPrefix
)

// Rule is one blacklist entry. Hard rules reject the record outright; soft
// rules downgrade quality and confidence.
type Rule struct {
	Kind    Kind
	Pattern string
	Reason  string
	Hard    bool
}

var systemLocalParts = []string{
	"noreply", "no-reply", "donotreply", "do-not-reply",
	"postmaster", "mailer-daemon", "webmaster", "abuse", "bounce",
}

var disposableDomains = []string{
	"mailinator.com", "guerrillamail.com", "10minutemail.com",
	"temp-mail.org", "tempmail.com", "yopmail.com", "throwaway.email",
	"sharklasers.com", "getnada.com", "trashmail.com",
}

var roleLocalParts = []string{
	"admin", "info", "support", "sales", "contact", "office", "hello", "billing",
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(systemLocalParts)+len(disposableDomains)+len(roleLocalParts))
	for _, local := range systemLocalParts {
		rules = append(rules, Rule{Kind: KindLocalPart, Pattern: local, Reason: ReasonSystemGenerated, Hard: true})
	}
	for _, domain := range disposableDomains {
		rules = append(rules, Rule{Kind: KindDomain, Pattern: domain, Reason: ReasonDisposable, Hard: true})
	}
	for _, local := range roleLocalParts {
		rules = append(rules, Rule{Kind: KindLocalPrefix, Pattern: local, Reason: ReasonRoleAccount, Hard: false})
	}
	return rules
}

// Filter applies an immutable rule set to validated records.
type Filter struct {
	byAddress map[string]Rule
	byLocal   map[string]Rule
	byDomain  map[string]Rule
	prefixes  []Rule
}

// NewFilter builds a filter from the given rules. A nil slice selects the
// built-in defaults; to run without any rules pass an empty slice.
func NewFilter(rules []Rule) *Filter {
	if rules == nil {
		rules = DefaultRules()
	}
	f := &Filter{
		byAddress: make(map[string]Rule),
		byLocal:   make(map[string]Rule),
		byDomain:  make(map[string]Rule),
	}
	for _, rule := range rules {
		pattern := strings.ToLower(strings.TrimSpace(rule.Pattern))
		if pattern == "" {
			continue
		}
		rule.Pattern = pattern
		switch rule.Kind {
		case KindAddress:
			f.byAddress[pattern] = rule
		case KindLocalPart:
			f.byLocal[pattern] = rule
		case KindDomain:
			f.byDomain[pattern] = rule
		case KindLocalPrefix:
			f.prefixes = append(f.prefixes, rule)
		}
	}
	return f
}

// Check applies the rules to a record that passed syntax validation. Match
// order: exact address, system local parts, disposable domains, then role
// prefixes. The first hard match wins and is terminal.
func (f *Filter) Check(res entity.ValidationResult) entity.ValidationResult {
	if res.Status != entity.StatusValid {
		return res
	}

	local, domain, ok := strings.Cut(res.Email, "@")
	if !ok {
		return res
	}

	if rule, found := f.byAddress[res.Email]; found {
		return f.apply(res, rule)
	}
	if rule, found := f.byLocal[local]; found {
		return f.apply(res, rule)
	}
	if rule, found := f.byDomain[domain]; found {
		return f.apply(res, rule)
	}
	for _, rule := range f.prefixes {
		if strings.HasPrefix(local, rule.Pattern) {
			return f.apply(res, rule)
		}
	}
	return res
}

func (f *Filter) apply(res entity.ValidationResult, rule Rule) entity.ValidationResult {
	if rule.Hard {
		res.Status = entity.StatusBlacklisted
		res.IsValid = false
		res.Quality = entity.QualityLow
		res.ConfidenceScore = 0
		res.Reason = hardReason(rule)
		return res
	}
	res.Quality = entity.QualityLow
	res.ConfidenceScore = scoring.Penalize(res.ConfidenceScore, scoring.RolePenalty)
	res.Reason = "role account: " + rule.Pattern
	return res
}

func hardReason(rule Rule) string {
	switch rule.Reason {
	case ReasonSystemGenerated:
		return "system-generated address: " + rule.Pattern
	case ReasonDisposable:
		return "disposable domain: " + rule.Pattern
	default:
		return "blacklisted: " + rule.Pattern
	}
}
