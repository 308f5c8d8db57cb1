package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfrestrepo/ramatrack/internal/models"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// UpsertProcess creates or updates a process keyed by external_id. An update
// only touches the candidate's non-nil fields; the local id never changes.
// A unique-index conflict on create (two callers ingesting the same process
// concurrently) is retried once as an update.
func (c *Client) UpsertProcess(ctx context.Context, in models.ProcessInput) (*models.Process, error) {
	if in.ExternalID == "" {
		return nil, fmt.Errorf("upsert process: external id required")
	}

	existing, err := c.GetProcessByExternalID(ctx, in.ExternalID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return c.updateProcess(ctx, existing.ID, in)
	}

	created, err := c.createProcess(ctx, in)
	if errors.Is(err, ErrAlreadyExists) {
		// Lost the insert race; the row exists now, update it instead.
		existing, lookupErr := c.GetProcessByExternalID(ctx, in.ExternalID)
		if lookupErr != nil {
			return nil, fmt.Errorf("upsert process: conflict retry lookup: %w", lookupErr)
		}
		return c.updateProcess(ctx, existing.ID, in)
	}
	return created, err
}

func (c *Client) createProcess(ctx context.Context, in models.ProcessInput) (*models.Process, error) {
	data := processData(in)

	results, err := surrealdb.Query[[]models.Process](ctx, c.db, `
		CREATE type::record("process", $id) CONTENT $data RETURN AFTER
	`, map[string]any{
		"id":   uuid.NewString(),
		"data": data,
	})
	if err != nil {
		return nil, fmt.Errorf("create process: %w", wrapQueryError(err))
	}
	return firstResult(results, "create process")
}

func (c *Client) updateProcess(ctx context.Context, id surrealmodels.RecordID, in models.ProcessInput) (*models.Process, error) {
	data := processData(in)
	data["updated"] = time.Now().UTC()

	results, err := surrealdb.Query[[]models.Process](ctx, c.db, `
		UPDATE $record MERGE $data RETURN AFTER
	`, map[string]any{
		"record": id,
		"data":   data,
	})
	if err != nil {
		return nil, fmt.Errorf("update process: %w", wrapQueryError(err))
	}
	return firstResult(results, "update process")
}

// GetProcessByExternalID retrieves a process by its upstream idProceso.
// Returns ErrNotFound when no such process is stored.
func (c *Client) GetProcessByExternalID(ctx context.Context, externalID string) (*models.Process, error) {
	results, err := surrealdb.Query[[]models.Process](ctx, c.db, `
		SELECT * FROM process WHERE external_id = $external_id LIMIT 1
	`, map[string]any{"external_id": externalID})
	if err != nil {
		return nil, fmt.Errorf("get process by external id: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: process external_id=%s", ErrNotFound, externalID)
	}
	return &(*results)[0].Result[0], nil
}

// GetProcessByLocalID retrieves a process by its store-assigned id.
func (c *Client) GetProcessByLocalID(ctx context.Context, id string) (*models.Process, error) {
	results, err := surrealdb.Query[[]models.Process](ctx, c.db, `
		SELECT * FROM type::record("process", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get process: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: process id=%s", ErrNotFound, id)
	}
	return &(*results)[0].Result[0], nil
}

// UpsertAction creates or updates an action. The dedup key is
// (process, external_action_id); when the candidate carries no external
// action id there is nothing to deduplicate on and the store always inserts.
func (c *Client) UpsertAction(ctx context.Context, in models.ActionInput) (*models.Action, error) {
	if in.ExternalActionID == nil {
		return c.createAction(ctx, in)
	}

	existing, err := c.getActionByDedupKey(ctx, in.Process, *in.ExternalActionID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return c.updateAction(ctx, existing.ID, in)
	}

	created, err := c.createAction(ctx, in)
	if errors.Is(err, ErrAlreadyExists) {
		existing, lookupErr := c.getActionByDedupKey(ctx, in.Process, *in.ExternalActionID)
		if lookupErr != nil {
			return nil, fmt.Errorf("upsert action: conflict retry lookup: %w", lookupErr)
		}
		return c.updateAction(ctx, existing.ID, in)
	}
	return created, err
}

func (c *Client) getActionByDedupKey(ctx context.Context, process surrealmodels.RecordID, externalActionID string) (*models.Action, error) {
	results, err := surrealdb.Query[[]models.Action](ctx, c.db, `
		SELECT * FROM action
		WHERE process = $process AND external_action_id = $external_action_id
		LIMIT 1
	`, map[string]any{
		"process":            process,
		"external_action_id": externalActionID,
	})
	if err != nil {
		return nil, fmt.Errorf("get action: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: action external_action_id=%s", ErrNotFound, externalActionID)
	}
	return &(*results)[0].Result[0], nil
}

func (c *Client) createAction(ctx context.Context, in models.ActionInput) (*models.Action, error) {
	results, err := surrealdb.Query[[]models.Action](ctx, c.db, `
		CREATE type::record("action", $id) CONTENT $data RETURN AFTER
	`, map[string]any{
		"id":   uuid.NewString(),
		"data": actionData(in),
	})
	if err != nil {
		return nil, fmt.Errorf("create action: %w", wrapQueryError(err))
	}
	return firstActionResult(results, "create action")
}

func (c *Client) updateAction(ctx context.Context, id surrealmodels.RecordID, in models.ActionInput) (*models.Action, error) {
	data := actionData(in)
	data["updated"] = time.Now().UTC()

	results, err := surrealdb.Query[[]models.Action](ctx, c.db, `
		UPDATE $record MERGE $data RETURN AFTER
	`, map[string]any{
		"record": id,
		"data":   data,
	})
	if err != nil {
		return nil, fmt.Errorf("update action: %w", wrapQueryError(err))
	}
	return firstActionResult(results, "update action")
}

// UpdateActionEnrichment replaces an action's AI-derived fields by local id.
// A nil summary clears the stored summary; a nil urgency clears the stored
// urgency. Other fields are untouched. Clearing uses NONE explicitly because
// the fields are option<> typed and a null would be rejected by the schema.
func (c *Client) UpdateActionEnrichment(ctx context.Context, id string, summary *string, urgency *models.Urgency) (*models.Action, error) {
	summaryExpr := "NONE"
	urgencyExpr := "NONE"
	vars := map[string]any{
		"id":      id,
		"updated": time.Now().UTC(),
	}
	if summary != nil {
		summaryExpr = "$summary"
		vars["summary"] = *summary
	}
	if urgency != nil {
		urgencyExpr = "$urgency"
		vars["urgency"] = string(*urgency)
	}

	results, err := surrealdb.Query[[]models.Action](ctx, c.db, `
		UPDATE type::record("action", $id) SET
			ai_summary = `+summaryExpr+`,
			ai_urgency = `+urgencyExpr+`,
			updated = $updated
		RETURN AFTER
	`, vars)
	if err != nil {
		return nil, fmt.Errorf("update action enrichment: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: action id=%s", ErrNotFound, id)
	}
	return &(*results)[0].Result[0], nil
}

// ListActionsByProcess returns a process's actions ordered by action_date
// descending. Dates are opaque upstream strings, so the ordering is lexical;
// ties keep insertion order via the created timestamp.
func (c *Client) ListActionsByProcess(ctx context.Context, processID string) ([]models.Action, error) {
	results, err := surrealdb.Query[[]models.Action](ctx, c.db, `
		SELECT * FROM action
		WHERE process = type::record("process", $id)
		ORDER BY action_date DESC, created ASC
	`, map[string]any{"id": processID})
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Action{}, nil
	}
	return (*results)[0].Result, nil
}

// CountActionsByProcess returns the number of stored actions for a process.
func (c *Client) CountActionsByProcess(ctx context.Context, processID string) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM action
		WHERE process = type::record("process", $id)
		GROUP ALL
	`, map[string]any{"id": processID})
	if err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// WipeData deletes all data while preserving schema. Tests only.
func (c *Client) WipeData(ctx context.Context) error {
	c.logger.Warn("wiping all data from database")

	// Actions reference processes, delete them first.
	for _, table := range []string{"action", "process"} {
		if _, err := surrealdb.Query[any](ctx, c.db, "DELETE "+table, nil); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

// processData maps the candidate's provided fields for CREATE/MERGE. Nil
// fields are omitted so an update never clobbers stored values with absence.
func processData(in models.ProcessInput) map[string]any {
	data := map[string]any{"external_id": in.ExternalID}
	setOpt(data, "registration_number", in.RegistrationNumber)
	setOpt(data, "court", in.Court)
	setOpt(data, "reporting_judge", in.ReportingJudge)
	setOpt(data, "parties", in.Parties)
	setOpt(data, "filing_date", in.FilingDate)
	setOpt(data, "process_type", in.ProcessType)
	setOpt(data, "process_class", in.ProcessClass)
	setOpt(data, "file_location", in.FileLocation)
	setOpt(data, "plaintiff", in.Plaintiff)
	setOpt(data, "defendant", in.Defendant)
	setOpt(data, "search_term_used", in.SearchTermUsed)
	if !in.QueriedAt.IsZero() {
		data["queried_at"] = in.QueriedAt
	}
	return data
}

func actionData(in models.ActionInput) map[string]any {
	data := map[string]any{
		"process":       in.Process,
		"has_documents": in.HasDocuments,
	}
	setOpt(data, "external_action_id", in.ExternalActionID)
	setOpt(data, "action_date", in.ActionDate)
	setOpt(data, "action_type", in.ActionType)
	setOpt(data, "annotation", in.Annotation)
	setOpt(data, "term_start_date", in.TermStartDate)
	setOpt(data, "term_end_date", in.TermEndDate)
	setOpt(data, "registered_date", in.RegisteredDate)
	setOpt(data, "ai_summary", in.AISummary)
	if in.AIUrgency != nil {
		data["ai_urgency"] = string(*in.AIUrgency)
	}
	return data
}

func setOpt(data map[string]any, key string, val *string) {
	if val != nil {
		data[key] = *val
	}
}

func firstResult(results *[]surrealdb.QueryResult[[]models.Process], op string) (*models.Process, error) {
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%s: no result returned", op)
	}
	return &(*results)[0].Result[0], nil
}

func firstActionResult(results *[]surrealdb.QueryResult[[]models.Action], op string) (*models.Action, error) {
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%s: no result returned", op)
	}
	return &(*results)[0].Result[0], nil
}
