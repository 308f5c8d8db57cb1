// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dfrestrepo/ramatrack/internal/models"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// resetData wipes both tables so tests do not see each other's rows.
func resetData(t *testing.T) {
	t.Helper()
	if err := testDB.WipeData(context.Background()); err != nil {
		t.Fatalf("WipeData failed: %v", err)
	}
}

func testProcessInput(externalID string) models.ProcessInput {
	return models.ProcessInput{
		ExternalID:         externalID,
		RegistrationNumber: models.StringPtr("05001310300520210012300"),
		Court:              models.StringPtr("JUZGADO 005 CIVIL DEL CIRCUITO DE MEDELLÍN"),
		Plaintiff:          models.StringPtr("ACME S.A."),
		Defendant:          models.StringPtr("JOHN DOE"),
		QueriedAt:          time.Now().UTC(),
	}
}

// =============================================================================
// PROCESS TESTS
// =============================================================================

func TestUpsertProcessCreates(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	proc, err := testDB.UpsertProcess(ctx, testProcessInput("100001"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}
	if proc.ExternalID != "100001" {
		t.Errorf("Expected external_id '100001', got %q", proc.ExternalID)
	}
	if proc.Court == nil || *proc.Court == "" {
		t.Error("Expected court to be stored")
	}
	if proc.Created.IsZero() {
		t.Error("Expected created timestamp to be set")
	}
}

func TestUpsertProcessIsIdempotent(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	first, err := testDB.UpsertProcess(ctx, testProcessInput("100002"))
	if err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	in := testProcessInput("100002")
	in.FileLocation = models.StringPtr("ARCHIVO CENTRAL")
	second, err := testDB.UpsertProcess(ctx, in)
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	if models.MustRecordIDString(first.ID) != models.MustRecordIDString(second.ID) {
		t.Errorf("Expected the same local id on re-upsert, got %s and %s",
			models.MustRecordIDString(first.ID), models.MustRecordIDString(second.ID))
	}
	if second.FileLocation == nil || *second.FileLocation != "ARCHIVO CENTRAL" {
		t.Error("Expected update to merge the new file_location")
	}
	// Nil fields in the candidate must not clobber stored values.
	if second.Court == nil || *second.Court == "" {
		t.Error("Expected court to survive an update with the field absent")
	}
}

func TestCreateProcessConflictRetriesAsUpdate(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	first, err := testDB.createProcess(ctx, testProcessInput("100010"))
	if err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	// A raw second create for the same external_id must be rejected by the
	// unique index and surface the sentinel the upsert retry keys on.
	_, err = testDB.createProcess(ctx, testProcessInput("100010"))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists from the index conflict, got %v", err)
	}

	// UpsertProcess resolves the same input onto the existing row.
	in := testProcessInput("100010")
	in.FileLocation = models.StringPtr("ARCHIVO CENTRAL")
	upserted, err := testDB.UpsertProcess(ctx, in)
	if err != nil {
		t.Fatalf("UpsertProcess after conflict failed: %v", err)
	}
	if models.MustRecordIDString(upserted.ID) != models.MustRecordIDString(first.ID) {
		t.Errorf("Expected the existing local id, got %s and %s",
			models.MustRecordIDString(first.ID), models.MustRecordIDString(upserted.ID))
	}
}

func TestUpsertProcessRequiresExternalID(t *testing.T) {
	ctx := context.Background()

	_, err := testDB.UpsertProcess(ctx, models.ProcessInput{})
	if err == nil {
		t.Fatal("Expected error for empty external id")
	}
}

func TestGetProcessByExternalIDNotFound(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	_, err := testDB.GetProcessByExternalID(ctx, "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetProcessByLocalID(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	created, err := testDB.UpsertProcess(ctx, testProcessInput("100003"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}

	got, err := testDB.GetProcessByLocalID(ctx, models.MustRecordIDString(created.ID))
	if err != nil {
		t.Fatalf("GetProcessByLocalID failed: %v", err)
	}
	if got.ExternalID != "100003" {
		t.Errorf("Expected external_id '100003', got %q", got.ExternalID)
	}

	_, err = testDB.GetProcessByLocalID(ctx, "non-existent-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown id, got %v", err)
	}
}

// =============================================================================
// ACTION TESTS
// =============================================================================

func TestUpsertActionDedupByExternalID(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	proc, err := testDB.UpsertProcess(ctx, testProcessInput("200001"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}

	in := models.ActionInput{
		Process:          proc.ID,
		ExternalActionID: models.StringPtr("act-1"),
		ActionDate:       models.StringPtr("2024-03-01"),
		ActionType:       models.StringPtr("Auto"),
	}

	first, err := testDB.UpsertAction(ctx, in)
	if err != nil {
		t.Fatalf("First UpsertAction failed: %v", err)
	}

	in.Annotation = models.StringPtr("Se corre traslado")
	second, err := testDB.UpsertAction(ctx, in)
	if err != nil {
		t.Fatalf("Second UpsertAction failed: %v", err)
	}

	if models.MustRecordIDString(first.ID) != models.MustRecordIDString(second.ID) {
		t.Error("Expected re-upsert of the same action to update in place")
	}

	count, err := testDB.CountActionsByProcess(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		t.Fatalf("CountActionsByProcess failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 action, got %d", count)
	}
}

func TestActionDedupScopedToProcess(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	procA, err := testDB.UpsertProcess(ctx, testProcessInput("200002"))
	if err != nil {
		t.Fatalf("UpsertProcess A failed: %v", err)
	}
	procB, err := testDB.UpsertProcess(ctx, testProcessInput("200003"))
	if err != nil {
		t.Fatalf("UpsertProcess B failed: %v", err)
	}

	// The same upstream action id under two processes must create two rows.
	for _, proc := range []*models.Process{procA, procB} {
		_, err := testDB.UpsertAction(ctx, models.ActionInput{
			Process:          proc.ID,
			ExternalActionID: models.StringPtr("shared-id"),
		})
		if err != nil {
			t.Fatalf("UpsertAction failed: %v", err)
		}
	}

	for _, proc := range []*models.Process{procA, procB} {
		count, err := testDB.CountActionsByProcess(ctx, models.MustRecordIDString(proc.ID))
		if err != nil {
			t.Fatalf("CountActionsByProcess failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 action per process, got %d", count)
		}
	}
}

func TestCreateActionConflictRetriesAsUpdate(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	proc, err := testDB.UpsertProcess(ctx, testProcessInput("200010"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}

	in := models.ActionInput{
		Process:          proc.ID,
		ExternalActionID: models.StringPtr("race-1"),
		Annotation:       models.StringPtr("primera"),
	}
	first, err := testDB.createAction(ctx, in)
	if err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	// Same (process, external_action_id) hits the dedup_key unique index.
	_, err = testDB.createAction(ctx, in)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists from the dedup_key conflict, got %v", err)
	}

	in.Annotation = models.StringPtr("segunda")
	upserted, err := testDB.UpsertAction(ctx, in)
	if err != nil {
		t.Fatalf("UpsertAction after conflict failed: %v", err)
	}
	if models.MustRecordIDString(upserted.ID) != models.MustRecordIDString(first.ID) {
		t.Error("Expected the conflict to resolve onto the existing action")
	}

	count, err := testDB.CountActionsByProcess(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		t.Fatalf("CountActionsByProcess failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 action after conflict retry, got %d", count)
	}
}

func TestUpsertActionWithoutExternalIDAlwaysInserts(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	proc, err := testDB.UpsertProcess(ctx, testProcessInput("200004"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}

	in := models.ActionInput{
		Process:    proc.ID,
		Annotation: models.StringPtr("sin identificador"),
	}
	for i := 0; i < 2; i++ {
		if _, err := testDB.UpsertAction(ctx, in); err != nil {
			t.Fatalf("UpsertAction %d failed: %v", i, err)
		}
	}

	count, err := testDB.CountActionsByProcess(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		t.Fatalf("CountActionsByProcess failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 actions for key-less inserts, got %d", count)
	}
}

func TestUpdateActionEnrichment(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	proc, err := testDB.UpsertProcess(ctx, testProcessInput("200005"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}
	action, err := testDB.UpsertAction(ctx, models.ActionInput{
		Process:          proc.ID,
		ExternalActionID: models.StringPtr("act-enrich"),
		Annotation:       models.StringPtr("Fija fecha de audiencia"),
	})
	if err != nil {
		t.Fatalf("UpsertAction failed: %v", err)
	}

	high := models.UrgencyHigh
	updated, err := testDB.UpdateActionEnrichment(ctx,
		models.MustRecordIDString(action.ID),
		models.StringPtr("Audiencia programada."), &high)
	if err != nil {
		t.Fatalf("UpdateActionEnrichment failed: %v", err)
	}
	if updated.AISummary == nil || *updated.AISummary != "Audiencia programada." {
		t.Error("Expected summary to be stored")
	}
	if updated.AIUrgency == nil || *updated.AIUrgency != models.UrgencyHigh {
		t.Error("Expected urgency HIGH to be stored")
	}

	// Nil values clear the fields.
	cleared, err := testDB.UpdateActionEnrichment(ctx,
		models.MustRecordIDString(action.ID), nil, nil)
	if err != nil {
		t.Fatalf("UpdateActionEnrichment (clear) failed: %v", err)
	}
	if cleared.AISummary != nil {
		t.Error("Expected summary to be cleared")
	}
	if cleared.AIUrgency != nil {
		t.Error("Expected urgency to be cleared")
	}

	_, err = testDB.UpdateActionEnrichment(ctx, "non-existent-id", nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown action, got %v", err)
	}
}

func TestListActionsByProcessOrdering(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	proc, err := testDB.UpsertProcess(ctx, testProcessInput("200006"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}

	dates := []string{"2024-01-15", "2024-03-20", "2024-02-10"}
	for i, d := range dates {
		_, err := testDB.UpsertAction(ctx, models.ActionInput{
			Process:          proc.ID,
			ExternalActionID: models.StringPtr(fmt.Sprintf("ord-%d", i)),
			ActionDate:       models.StringPtr(d),
		})
		if err != nil {
			t.Fatalf("UpsertAction failed: %v", err)
		}
	}

	actions, err := testDB.ListActionsByProcess(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		t.Fatalf("ListActionsByProcess failed: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("Expected 3 actions, got %d", len(actions))
	}

	want := []string{"2024-03-20", "2024-02-10", "2024-01-15"}
	for i, w := range want {
		if actions[i].ActionDate == nil || *actions[i].ActionDate != w {
			t.Errorf("Position %d: expected date %s, got %v", i, w, actions[i].ActionDate)
		}
	}
}

func TestListActionsByProcessEmpty(t *testing.T) {
	resetData(t)
	ctx := context.Background()

	proc, err := testDB.UpsertProcess(ctx, testProcessInput("200007"))
	if err != nil {
		t.Fatalf("UpsertProcess failed: %v", err)
	}

	actions, err := testDB.ListActionsByProcess(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		t.Fatalf("ListActionsByProcess failed: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("Expected 0 actions, got %d", len(actions))
	}
}
