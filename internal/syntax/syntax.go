// Package syntax performs structural validation and normalization of scraped
// email addresses. Validation is pure: the same input always yields the same
// result, and no stage after a syntax failure ever runs.
package syntax

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/octobees/contact-engine/internal/entity"
	"github.com/octobees/contact-engine/internal/scoring"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	maxLocalLen  = 64
	maxDomainLen = 253
)

// Fragments that show up when a scraper ingested markup or an injection
// attempt instead of an address.
var suspiciousFragments = []string{"<", ">", `"`, ";", "(", ")", "\\", "--", "/*"}

// Validate checks the lexical structure of a raw scraped string and returns a
// seeded ValidationResult. On success the address is normalized to lower case
// with an ASCII (IDNA) domain, confidence starts at the syntax baseline and
// quality at MEDIUM; downstream stages adjust both.
func Validate(rec entity.EmailRecord) entity.ValidationResult {
	res := entity.ValidationResult{
		Email:  strings.TrimSpace(rec.Email),
		Source: rec,
	}

	if res.Email == "" {
		return invalid(res, "empty address")
	}
	if strings.ContainsFunc(res.Email, isControl) {
		return invalid(res, "control characters present")
	}
	for _, fragment := range suspiciousFragments {
		if strings.Contains(res.Email, fragment) {
			return invalid(res, "suspicious characters present")
		}
	}

	switch strings.Count(res.Email, "@") {
	case 0:
		return invalid(res, "missing @")
	case 1:
	default:
		return invalid(res, "multiple @ symbols")
	}

	parts := strings.SplitN(res.Email, "@", 2)
	local, domain := parts[0], strings.ToLower(parts[1])
	if local == "" {
		return invalid(res, "missing local part")
	}
	if len(local) > maxLocalLen {
		return invalid(res, "local part too long")
	}
	if domain == "" {
		return invalid(res, "missing domain")
	}
	if len(domain) > maxDomainLen {
		return invalid(res, "domain too long")
	}

	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" || !isDomainValid(asciiDomain) {
		return invalid(res, "malformed domain")
	}

	normalized := strings.ToLower(local) + "@" + asciiDomain
	if !emailPattern.MatchString(normalized) {
		return invalid(res, "malformed address")
	}

	res.Email = normalized
	res.Domain = asciiDomain
	res.Status = entity.StatusValid
	res.IsValid = true
	res.ConfidenceScore = scoring.BaseConfidence
	res.Quality = entity.QualityMedium
	return res
}

func invalid(res entity.ValidationResult, reason string) entity.ValidationResult {
	res.Status = entity.StatusInvalid
	res.IsValid = false
	res.Quality = entity.QualityLow
	res.Reason = reason
	return res
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}
