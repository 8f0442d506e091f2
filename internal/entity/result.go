package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of validating a single record.
type Status string

const (
	StatusValid       Status = "VALID"
	StatusInvalid     Status = "INVALID"
	StatusBlacklisted Status = "BLACKLISTED"
	StatusUnknown     Status = "UNKNOWN"
)

// Quality is the coarse tier derived from a confidence score.
type Quality string

const (
	QualityHigh   Quality = "HIGH"
	QualityMedium Quality = "MEDIUM"
	QualityLow    Quality = "LOW"
)

// ValidationResult is the per-record output of the validation pipeline.
type ValidationResult struct {
	Email           string        `json:"email"`
	Status          Status        `json:"status"`
	IsValid         bool          `json:"is_valid"`
	Quality         Quality       `json:"quality"`
	ConfidenceScore float64       `json:"confidence_score"`
	Reason          string        `json:"reason,omitempty"`
	Domain          string        `json:"domain,omitempty"`
	MXRecords       []string      `json:"mx_records,omitempty"`
	Source          EmailRecord   `json:"source_contact"`
	ProcessingTime  time.Duration `json:"processing_time_ns"`
}

// ContactGroup is one deduplicated contact: the best surviving email plus the
// merged metadata of every record that referred to it.
type ContactGroup struct {
	ID              uuid.UUID          `json:"id"`
	Email           string             `json:"email"`
	Contact         Contact            `json:"contact"`
	Members         []ValidationResult `json:"members"`
	Quality         Quality            `json:"quality"`
	ConfidenceScore float64            `json:"confidence_score"`
}

// Report summarizes the disposition of every record in a batch.
type Report struct {
	TotalProcessed        int             `json:"total_processed"`
	ValidCount            int             `json:"valid_count"`
	InvalidCount          int             `json:"invalid_count"`
	BlacklistedCount      int             `json:"blacklisted_count"`
	UnknownCount          int             `json:"unknown_count"`
	AcceptanceRate        float64         `json:"acceptance_rate"`
	QualityDistribution   map[Quality]int `json:"quality_distribution"`
	DuplicateRate         float64         `json:"duplicate_rate"`
	AverageConfidence     float64         `json:"average_confidence"`
	AverageProcessingTime time.Duration   `json:"average_processing_time_ns"`
}
