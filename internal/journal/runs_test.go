package journal

import (
	"context"
	"errors"
	"testing"
)

func TestCreateRun_returnsRunWithIDAndDocument(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	run, err := CreateRun(ctx, db, "/site/index.html", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.ID <= 0 {
		t.Errorf("CreateRun ID = %d, want > 0", run.ID)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreateRun CreatedAt is zero")
	}

	got, err := GetRun(ctx, db, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.IndexPath != "/site/index.html" {
		t.Errorf("IndexPath = %q, want /site/index.html", got.IndexPath)
	}
	if string(got.Document) != "<html></html>" {
		t.Errorf("Document = %q, want <html></html>", got.Document)
	}
	if got.Completed() || got.Undone() {
		t.Errorf("new run Completed=%v Undone=%v, want false/false", got.Completed(), got.Undone())
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
}

func TestCreateRun_emptyDocument(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	run, err := CreateRun(ctx, db, "/site/index.html", nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	got, err := GetRun(ctx, db, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Document) != 0 {
		t.Errorf("Document = %q, want empty", got.Document)
	}
}

func TestGetRun_notFound(t *testing.T) {
	db := testDB(t)

	_, err := GetRun(context.Background(), db, 99999)
	if !errors.Is(err, ErrNoRun) {
		t.Errorf("GetRun err = %v, want ErrNoRun", err)
	}
}

func TestCompleteRun_setsCompletedAt(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	run, err := CreateRun(ctx, db, "/site/index.html", nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := CompleteRun(ctx, db, run.ID); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	got, err := GetRun(ctx, db, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.Completed() {
		t.Error("Completed() = false after CompleteRun")
	}
}

func TestCompleteRun_unknownRun(t *testing.T) {
	db := testDB(t)
	if err := CompleteRun(context.Background(), db, 42); !errors.Is(err, ErrNoRun) {
		t.Errorf("CompleteRun err = %v, want ErrNoRun", err)
	}
}

func TestLatestRun_skipsUndoneRuns(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := LatestRun(ctx, db); !errors.Is(err, ErrNoRun) {
		t.Fatalf("LatestRun on empty journal err = %v, want ErrNoRun", err)
	}

	first, err := CreateRun(ctx, db, "/a/index.html", nil)
	if err != nil {
		t.Fatalf("CreateRun first: %v", err)
	}
	second, err := CreateRun(ctx, db, "/a/index.html", nil)
	if err != nil {
		t.Fatalf("CreateRun second: %v", err)
	}

	got, err := LatestRun(ctx, db)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("LatestRun ID = %d, want %d", got.ID, second.ID)
	}

	if err := MarkRunUndone(ctx, db, second.ID); err != nil {
		t.Fatalf("MarkRunUndone: %v", err)
	}
	got, err = LatestRun(ctx, db)
	if err != nil {
		t.Fatalf("LatestRun after undo: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("LatestRun after undo ID = %d, want %d", got.ID, first.ID)
	}
}

func TestListRuns_newestFirstWithLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		r, err := CreateRun(ctx, db, "/a/index.html", nil)
		if err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
		ids = append(ids, r.ID)
	}

	runs, err := ListRuns(ctx, db, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns len = %d, want 3", len(runs))
	}
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("ListRuns order = [%d %d %d], want newest first", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	runs, err = ListRuns(ctx, db, 2)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("ListRuns(limit 2) len = %d, want 2", len(runs))
	}
}

func TestListRuns_emptyReturnsEmptySlice(t *testing.T) {
	db := testDB(t)

	runs, err := ListRuns(context.Background(), db, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns = %v, want empty", runs)
	}
}

func TestIncompleteRuns_onlySameDocumentAndUnfinished(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	interrupted, err := CreateRun(ctx, db, "/a/index.html", nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	done, err := CreateRun(ctx, db, "/a/index.html", nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := CompleteRun(ctx, db, done.ID); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	if _, err := CreateRun(ctx, db, "/b/index.html", nil); err != nil {
		t.Fatalf("CreateRun other doc: %v", err)
	}
	current, err := CreateRun(ctx, db, "/a/index.html", nil)
	if err != nil {
		t.Fatalf("CreateRun current: %v", err)
	}

	runs, err := IncompleteRuns(ctx, db, "/a/index.html", current.ID)
	if err != nil {
		t.Fatalf("IncompleteRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != interrupted.ID {
		t.Errorf("IncompleteRuns = %+v, want only run %d", runs, interrupted.ID)
	}
}
