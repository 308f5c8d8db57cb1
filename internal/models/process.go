// Package models defines data structures for tracked judicial processes.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Process is a judicial case record sourced from the Rama Judicial API and
// stored locally. ExternalID is the upstream idProceso and is the correlation
// key for idempotent re-ingestion; all descriptive attributes are optional
// because the upstream schema is not consistent across processes.
type Process struct {
	ID                 surrealmodels.RecordID `json:"id"`
	ExternalID         string                 `json:"external_id"`
	RegistrationNumber *string                `json:"registration_number,omitempty"`
	Court              *string                `json:"court,omitempty"`
	ReportingJudge     *string                `json:"reporting_judge,omitempty"`
	Parties            *string                `json:"parties,omitempty"`
	FilingDate         *string                `json:"filing_date,omitempty"`
	ProcessType        *string                `json:"process_type,omitempty"`
	ProcessClass       *string                `json:"process_class,omitempty"`
	FileLocation       *string                `json:"file_location,omitempty"`
	Plaintiff          *string                `json:"plaintiff,omitempty"`
	Defendant          *string                `json:"defendant,omitempty"`
	SearchTermUsed     *string                `json:"search_term_used,omitempty"`
	QueriedAt          time.Time              `json:"queried_at,omitempty"`
	Created            time.Time              `json:"created,omitempty"`
	Updated            time.Time              `json:"updated,omitempty"`
}

// ProcessInput is a candidate process for upsert. Nil fields are left
// untouched on update and absent on create; upstream never gets defaulted
// into guessed values.
type ProcessInput struct {
	ExternalID         string  `json:"external_id"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
	Court              *string `json:"court,omitempty"`
	ReportingJudge     *string `json:"reporting_judge,omitempty"`
	Parties            *string `json:"parties,omitempty"`
	FilingDate         *string `json:"filing_date,omitempty"`
	ProcessType        *string `json:"process_type,omitempty"`
	ProcessClass       *string `json:"process_class,omitempty"`
	FileLocation       *string `json:"file_location,omitempty"`
	Plaintiff          *string `json:"plaintiff,omitempty"`
	Defendant          *string `json:"defendant,omitempty"`
	SearchTermUsed     *string `json:"search_term_used,omitempty"`
	QueriedAt          time.Time
}
