// Package scoring centralizes the confidence arithmetic shared by the
// validation stages so penalties and bonuses stay consistent.
package scoring

import "github.com/octobees/contact-engine/internal/entity"

const (
	// BaseConfidence seeds every syntactically valid record.
	BaseConfidence = 0.5
	// RolePenalty is subtracted for soft blacklist matches (role accounts).
	RolePenalty = 0.2
	// MXBonus is added when the domain resolves to at least one mail server.
	MXBonus = 0.3
	// DuplicateBoost rewards each corroborating duplicate inside a group.
	DuplicateBoost = 0.05

	highThreshold   = 0.8
	mediumThreshold = 0.5
)

// TierFor maps a confidence score onto a quality tier.
func TierFor(score float64) entity.Quality {
	switch {
	case score >= highThreshold:
		return entity.QualityHigh
	case score >= mediumThreshold:
		return entity.QualityMedium
	default:
		return entity.QualityLow
	}
}

// Penalize subtracts penalty from score, floored at zero.
func Penalize(score, penalty float64) float64 {
	score -= penalty
	if score < 0 {
		return 0
	}
	return score
}

// Raise adds bonus to score, capped at one.
func Raise(score, bonus float64) float64 {
	score += bonus
	if score > 1 {
		return 1
	}
	return score
}
