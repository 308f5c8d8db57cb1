package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Action is a single procedural event ("actuación") within a Process.
// ExternalActionID (upstream idRegActuacion) is unique within the owning
// process's action set when present; upstream date fields are free-form
// strings and are stored as-is.
type Action struct {
	ID               surrealmodels.RecordID `json:"id"`
	Process          surrealmodels.RecordID `json:"process"`
	ExternalActionID *string                `json:"external_action_id,omitempty"`
	ActionDate       *string                `json:"action_date,omitempty"`
	ActionType       *string                `json:"action_type,omitempty"`
	Annotation       *string                `json:"annotation,omitempty"`
	TermStartDate    *string                `json:"term_start_date,omitempty"`
	TermEndDate      *string                `json:"term_end_date,omitempty"`
	RegisteredDate   *string                `json:"registered_date,omitempty"`
	HasDocuments     bool                   `json:"has_documents"`
	AISummary        *string                `json:"ai_summary,omitempty"`
	AIUrgency        *Urgency               `json:"ai_urgency,omitempty"`
	Created          time.Time              `json:"created,omitempty"`
	Updated          time.Time              `json:"updated,omitempty"`
}

// ActionInput is a candidate action for upsert, bound to an already-stored
// process. When ExternalActionID is nil there is no dedup key and the store
// always inserts.
type ActionInput struct {
	Process          surrealmodels.RecordID `json:"process"`
	ExternalActionID *string                `json:"external_action_id,omitempty"`
	ActionDate       *string                `json:"action_date,omitempty"`
	ActionType       *string                `json:"action_type,omitempty"`
	Annotation       *string                `json:"annotation,omitempty"`
	TermStartDate    *string                `json:"term_start_date,omitempty"`
	TermEndDate      *string                `json:"term_end_date,omitempty"`
	RegisteredDate   *string                `json:"registered_date,omitempty"`
	HasDocuments     bool                   `json:"has_documents"`
	AISummary        *string                `json:"ai_summary,omitempty"`
	AIUrgency        *Urgency               `json:"ai_urgency,omitempty"`
}
