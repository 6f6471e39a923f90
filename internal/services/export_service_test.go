package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/vote"
	pollwise_errors "pollwise/pkg/errors"
)

func newExportService(env *testEnv) *ExportService {
	return NewExportService(env.pollRepo, env.voteRepo, env.shareRepo, env.winnerRepo, env.settingsRepo)
}

func seedExportData(t *testing.T, env *testEnv) poll.Poll {
	t.Helper()
	p := env.createPoll(t, nil)
	voteSvc := NewVoteService(env.pollRepo, env.voteRepo, env.settingsRepo, nil)
	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		if _, err := voteSvc.Cast(context.Background(), CastInput{PollID: p.ID, Option: vote.OptionA, IPAddress: ip}); err != nil {
			t.Fatalf("cast failed: %v", err)
		}
	}
	return p
}

func TestExportRejectsDisallowedFormat(t *testing.T) {
	env := newTestEnv(t)
	svc := newExportService(env)
	ctx := context.Background()

	if _, _, err := svc.Export(ctx, "yaml", ExportScope{Polls: true}); !errors.Is(err, pollwise_errors.ErrUnsupportedFormat) {
		t.Errorf("Export(yaml): got %v, want ErrUnsupportedFormat", err)
	}

	// Formats can be struck from the allow-list at runtime.
	cfg, _ := env.settingsRepo.Get(ctx)
	cfg.ExportFormats = "json"
	if err := env.settingsRepo.Save(ctx, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, _, err := svc.Export(ctx, "csv", ExportScope{Polls: true}); !errors.Is(err, pollwise_errors.ErrUnsupportedFormat) {
		t.Errorf("Export(csv) off allow-list: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestExportImportJSONRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	svc := newExportService(env)
	ctx := context.Background()

	p := seedExportData(t, env)

	data, contentType, err := svc.Export(ctx, "json", ExportScope{Polls: true, Votes: true, Settings: true})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q, want application/json", contentType)
	}

	var bundle ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(bundle.Polls) != 1 || len(bundle.Votes) != 2 || bundle.Settings == nil {
		t.Fatalf("bundle = %d polls / %d votes / settings %v, want 1/2/present",
			len(bundle.Polls), len(bundle.Votes), bundle.Settings != nil)
	}

	// Import into a fresh store restores the rows.
	fresh := newTestEnv(t)
	freshSvc := newExportService(fresh)
	summary, err := freshSvc.Import(ctx, "json", data, "merge", false)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if summary.PollsImported != 1 || summary.VotesImported != 2 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 1 poll and 2 votes imported", summary)
	}
	got, err := fresh.pollRepo.GetByID(ctx, p.ID)
	if err != nil || got.Question != p.Question {
		t.Errorf("imported poll = %+v, %v; want %q", got, err, p.Question)
	}
}

func TestExportImportCSVRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	svc := newExportService(env)
	ctx := context.Background()

	seedExportData(t, env)

	data, contentType, err := svc.Export(ctx, "csv", ExportScope{Polls: true, Votes: true})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if contentType != "text/csv" {
		t.Errorf("content type = %q, want text/csv", contentType)
	}
	if !bytes.HasPrefix(data, []byte("record,")) {
		t.Errorf("csv does not start with the header row: %q", data[:min(len(data), 40)])
	}

	fresh := newTestEnv(t)
	freshSvc := newExportService(fresh)
	summary, err := freshSvc.Import(ctx, "csv", data, "merge", false)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if summary.PollsImported != 1 || summary.VotesImported != 2 {
		t.Errorf("summary = %+v, want 1 poll and 2 votes", summary)
	}
}

func TestImportMergeSkipsExistingRows(t *testing.T) {
	env := newTestEnv(t)
	svc := newExportService(env)
	ctx := context.Background()

	seedExportData(t, env)
	data, _, err := svc.Export(ctx, "json", ExportScope{Polls: true, Votes: true})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Importing into the same store again: everything collides.
	summary, err := svc.Import(ctx, "json", data, "merge", false)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if summary.PollsImported != 0 || summary.VotesImported != 0 || summary.Skipped != 3 {
		t.Errorf("summary = %+v, want everything skipped", summary)
	}
}

func TestImportReplaceWipesFirst(t *testing.T) {
	env := newTestEnv(t)
	svc := newExportService(env)
	ctx := context.Background()

	old := seedExportData(t, env)

	// Bundle with a different poll.
	other := newTestEnv(t)
	replacement := other.createPoll(t, func(p *poll.Poll) { p.Question = "Mountains or sea?" })
	data, _, err := newExportService(other).Export(ctx, "json", ExportScope{Polls: true, Votes: true})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	summary, err := svc.Import(ctx, "json", data, "replace", true)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !summary.BackupTaken || len(summary.Backup) == 0 {
		t.Error("backup requested but not taken")
	}
	if summary.PollsImported != 1 {
		t.Errorf("summary = %+v, want the replacement poll imported", summary)
	}

	if _, err := env.pollRepo.GetByID(ctx, old.ID); !errors.Is(err, pollwise_errors.ErrNotFound) {
		t.Errorf("old poll after replace: got %v, want ErrNotFound", err)
	}
	if _, err := env.pollRepo.GetByID(ctx, replacement.ID); err != nil {
		t.Errorf("replacement poll missing: %v", err)
	}

	// The backup is a restorable JSON bundle holding the pre-import state.
	var backup ExportBundle
	if err := json.Unmarshal(summary.Backup, &backup); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(backup.Polls) != 1 || backup.Polls[0].ID != old.ID {
		t.Errorf("backup polls = %+v, want the pre-import poll", backup.Polls)
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	svc := newExportService(env)
	ctx := context.Background()

	if _, err := svc.Import(ctx, "json", []byte("{}"), "upsert", false); !errors.Is(err, pollwise_errors.ErrInvalidInput) {
		t.Errorf("unknown mode: got %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Import(ctx, "yaml", []byte("{}"), "merge", false); !errors.Is(err, pollwise_errors.ErrUnsupportedFormat) {
		t.Errorf("unknown format: got %v, want ErrUnsupportedFormat", err)
	}
	if _, err := svc.Import(ctx, "json", []byte("not json"), "merge", false); !errors.Is(err, pollwise_errors.ErrInvalidInput) {
		t.Errorf("malformed payload: got %v, want ErrInvalidInput", err)
	}
}
