package repository

import (
	"context"
	"testing"
)

func TestSettingsRepositoryDefaultsAndUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	// Unsaved settings fall back to the defaults.
	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RetentionDays != 365 || !got.NotifyEnabled {
		t.Errorf("defaults = %+v, want retention 365 and notify on", got)
	}

	got.RetentionDays = 30
	got.NotifyRecipient = "admin@example.com"
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Save again to exercise the upsert path.
	got.RetentionDays = 60
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	reloaded, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if reloaded.ID != 1 || reloaded.RetentionDays != 60 || reloaded.NotifyRecipient != "admin@example.com" {
		t.Errorf("reloaded = %+v, want id 1, retention 60, recipient set", reloaded)
	}
}
