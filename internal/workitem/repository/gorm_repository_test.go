package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"workhub-backend/internal/testutil"
	"workhub-backend/internal/workitem/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestWorkItemRepository_ExistsAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormWorkItemRepository(db)
	ctx := context.Background()

	older := &domain.WorkItem{UserID: "u1", Type: domain.ItemTypeEmail, Title: "old", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Metadata: map[string]interface{}{"googleId": "g1", "labelIds": []string{"INBOX"}}, ExternalKey: "googleId", ExternalID: "g1"}
	newer := &domain.WorkItem{UserID: "u1", Type: domain.ItemTypeMessage, Title: "new", Timestamp: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Metadata: map[string]interface{}{"microsoftId": "m1"}, ExternalKey: "microsoftId", ExternalID: "m1"}
	for _, item := range []*domain.WorkItem{older, newer} {
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("create: %v", err)
		}
		if item.ID == "" {
			t.Fatal("expected generated id")
		}
	}

	cases := []struct {
		user, key, id string
		want          bool
	}{
		{"u1", "googleId", "g1", true},
		{"u1", "microsoftId", "m1", true},
		{"u1", "microsoftId", "g1", false},
		{"u2", "googleId", "g1", false},
	}
	for _, c := range cases {
		got, err := repo.ExistsByExternalID(ctx, c.user, c.key, c.id)
		if err != nil {
			t.Fatalf("exists: %v", err)
		}
		if got != c.want {
			t.Errorf("ExistsByExternalID(%s,%s,%s) = %v, want %v", c.user, c.key, c.id, got, c.want)
		}
	}

	items, total, err := repo.FindByUserID(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 || items[0].Title != "new" {
		t.Fatalf("expected newest first, got total=%d items=%v", total, items)
	}

	loaded, err := repo.FindByID(ctx, older.ID)
	if err != nil || loaded == nil {
		t.Fatalf("find by id: %v", err)
	}
	if loaded.Metadata["googleId"] != "g1" {
		t.Errorf("metadata did not round-trip: %v", loaded.Metadata)
	}

	missing, err := repo.FindByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing item, got %v, %v", missing, err)
	}
}

func TestWorkThreadRepository_AttachItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormWorkThreadRepository(db)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	thread := &domain.WorkThread{UserID: "u1", Title: domain.ImportThreadTitle, Priority: domain.PriorityMedium, LastActivity: t0}
	if err := repo.Create(ctx, thread); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindByTitle(ctx, "u1", domain.ImportThreadTitle)
	if err != nil || found == nil || found.ID != thread.ID {
		t.Fatalf("find by title: %v %v", found, err)
	}
	if other, _ := repo.FindByTitle(ctx, "u2", domain.ImportThreadTitle); other != nil {
		t.Errorf("thread leaked across users")
	}

	if err := repo.AttachItem(ctx, thread.ID, "i1", domain.PriorityHigh, t0.Add(time.Minute)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := repo.AttachItem(ctx, thread.ID, "i1", domain.PriorityLow, t0.Add(2*time.Minute)); err != nil {
		t.Fatalf("attach twice: %v", err)
	}

	got, _ := repo.FindByID(ctx, thread.ID)
	if len(got.ItemIDs) != 1 || got.ItemIDs[0] != "i1" {
		t.Errorf("expected item once, got %v", got.ItemIDs)
	}
	if got.Priority != domain.PriorityHigh {
		t.Errorf("expected high priority, got %s", got.Priority)
	}
	if !got.LastActivity.Equal(t0.Add(2 * time.Minute)) {
		t.Errorf("unexpected last activity %v", got.LastActivity)
	}

	if err := repo.AttachItem(ctx, "missing", "i2", domain.PriorityLow, t0); err == nil {
		t.Error("expected error for missing thread")
	}
}

func TestWorkThreadRepository_ConcurrentAttachKeepsAllItems(t *testing.T) {
	db := testutil.NewPooledTestDB(t, 4)
	repo := NewGormWorkThreadRepository(db)
	ctx := context.Background()

	thread := &domain.WorkThread{UserID: "u1", Title: domain.ImportThreadTitle, Priority: domain.PriorityMedium}
	if err := repo.Create(ctx, thread); err != nil {
		t.Fatalf("create: %v", err)
	}

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := repo.AttachItem(ctx, thread.ID, id, domain.PriorityLow, time.Now()); err != nil {
				t.Errorf("attach %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	got, _ := repo.FindByID(ctx, thread.ID)
	if len(got.ItemIDs) != len(ids) {
		t.Errorf("expected %d items, got %v", len(ids), got.ItemIDs)
	}
}

func TestWorkThreadRepository_AttachItemLocksThreadRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormWorkThreadRepository(db)
	ctx := context.Background()

	var mu sync.Mutex
	var lockedReads int
	err := db.Callback().Query().Before("gorm:query").Register("test:capture_locking", func(tx *gorm.DB) {
		if tx.Statement.Table != "work_threads" {
			return
		}
		c, ok := tx.Statement.Clauses[clause.Locking{}.Name()]
		if !ok {
			return
		}
		if l, ok := c.Expression.(clause.Locking); ok && l.Strength == "UPDATE" {
			mu.Lock()
			lockedReads++
			mu.Unlock()
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	thread := &domain.WorkThread{UserID: "u1", Title: domain.ImportThreadTitle, Priority: domain.PriorityMedium}
	if err := repo.Create(ctx, thread); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.FindByID(ctx, thread.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := repo.AttachItem(ctx, thread.ID, "a", domain.PriorityLow, time.Now()); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if lockedReads != 1 {
		t.Errorf("expected exactly the attach read to take a row lock, got %d locked reads", lockedReads)
	}
}
