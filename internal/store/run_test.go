package store

import (
	"strings"
	"testing"

	"autopress/internal/models"
)

func TestRunStoreLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewRunStore(db)

	run, err := s.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanRuns(t, db, run.ID) })

	if run.Status != models.RunStatusSearching {
		t.Errorf("status: got %q, want searching", run.Status)
	}
	if run.Log != "" {
		t.Errorf("log: got %q, want empty", run.Log)
	}
	if run.Done() {
		t.Error("fresh run must not be done")
	}

	topic := "Testing in Go"
	if err := s.SetStatus(run.ID, models.RunStatusGenerating, &topic); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	found, err := s.FindByID(run.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Status != models.RunStatusGenerating {
		t.Errorf("status: got %q, want generating", found.Status)
	}
	if found.Topic == nil || *found.Topic != topic {
		t.Errorf("topic: got %v, want %q", found.Topic, topic)
	}

	if err := s.Complete(run.ID, models.RunStatusCompleted, nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	found, _ = s.FindByID(run.ID)
	if !found.Done() {
		t.Error("expected terminal run")
	}
	if found.CompletedAt == nil {
		t.Error("expected completed_at set")
	}
}

func TestRunStoreAppendLogGrowsOnly(t *testing.T) {
	db := testDB(t)
	s := NewRunStore(db)

	run, err := s.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanRuns(t, db, run.ID) })

	for _, line := range []string{"[10:00:01] topic selected", "[10:00:05] writing", "[10:01:12] done"} {
		if err := s.AppendLog(run.ID, line); err != nil {
			t.Fatalf("AppendLog: %v", err)
		}
	}

	found, _ := s.FindByID(run.ID)
	lines := strings.Split(found.Log, "\n")
	if len(lines) != 3 {
		t.Fatalf("log lines: got %d, want 3\n%s", len(lines), found.Log)
	}
	if lines[0] != "[10:00:01] topic selected" || lines[2] != "[10:01:12] done" {
		t.Errorf("log order wrong:\n%s", found.Log)
	}
}

func TestRunStoreFindMissing(t *testing.T) {
	db := testDB(t)
	s := NewRunStore(db)

	run, err := s.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cleanRuns(t, db, run.ID)

	found, err := s.FindByID(run.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Error("expected nil for missing run")
	}
}
