package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecordAggregates(t *testing.T) {
	c := NewCollector()

	c.Record(OpSourceDetail, 10*time.Millisecond, nil)
	c.Record(OpSourceDetail, 30*time.Millisecond, nil)
	c.Record(OpSourceDetail, 20*time.Millisecond, errors.New("boom"))

	if got := c.Count(OpSourceDetail); got != 3 {
		t.Errorf("Expected count 3, got %d", got)
	}

	snap := c.Snapshot()
	op, ok := snap.Operations[OpSourceDetail]
	if !ok {
		t.Fatal("Expected source_detail in snapshot")
	}
	if op.Count != 3 {
		t.Errorf("Expected count 3, got %d", op.Count)
	}
	if op.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", op.Errors)
	}
	if op.MinTimeMs != 10 {
		t.Errorf("Expected min 10ms, got %d", op.MinTimeMs)
	}
	if op.MaxTimeMs != 30 {
		t.Errorf("Expected max 30ms, got %d", op.MaxTimeMs)
	}
	if op.AvgTimeMs != 20 {
		t.Errorf("Expected avg 20ms, got %f", op.AvgTimeMs)
	}
}

func TestTimeRecordsAndPropagatesError(t *testing.T) {
	c := NewCollector()
	wantErr := errors.New("fail")

	err := c.Time(OpLLMSummarize, func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected the function error to propagate, got %v", err)
	}

	if got := c.Count(OpLLMSummarize); got != 1 {
		t.Errorf("Expected count 1, got %d", got)
	}
	if snap := c.Snapshot(); snap.Operations[OpLLMSummarize].Errors != 1 {
		t.Error("Expected the error to be recorded")
	}
}

func TestSnapshotSkipsUnusedOperations(t *testing.T) {
	c := NewCollector()
	c.Record(OpDBQuery, time.Millisecond, nil)

	snap := c.Snapshot()
	if len(snap.Operations) != 1 {
		t.Errorf("Expected 1 operation in snapshot, got %d", len(snap.Operations))
	}
	if _, ok := snap.Operations[OpLLMClassify]; ok {
		t.Error("Unused operation must not appear in snapshot")
	}
	if snap.UptimeSeconds < 0 {
		t.Error("Uptime must be non-negative")
	}
}

func TestCountUnknownOperation(t *testing.T) {
	c := NewCollector()
	if got := c.Count("never-recorded"); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}
