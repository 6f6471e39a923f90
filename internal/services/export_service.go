package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"strconv"
	"time"

	"database/sql"

	"github.com/google/uuid"

	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/settings"
	"pollwise/internal/domain/vote"
	"pollwise/internal/repository"
	pollwise_errors "pollwise/pkg/errors"
)

// ExportService moves poll/vote/settings data in and out of the store as
// JSON, CSV, or XML. CSV carries polls and votes only; the settings blob
// travels in the structured formats.
type ExportService struct {
	pollRepo     repository.PollRepository
	voteRepo     repository.VoteRepository
	shareRepo    repository.ShareRepository
	winnerRepo   repository.WinnerRepository
	settingsRepo repository.SettingsRepository
}

func NewExportService(pollRepo repository.PollRepository, voteRepo repository.VoteRepository, shareRepo repository.ShareRepository, winnerRepo repository.WinnerRepository, settingsRepo repository.SettingsRepository) *ExportService {
	return &ExportService{
		pollRepo:     pollRepo,
		voteRepo:     voteRepo,
		shareRepo:    shareRepo,
		winnerRepo:   winnerRepo,
		settingsRepo: settingsRepo,
	}
}

type ExportScope struct {
	Polls    bool
	Votes    bool
	Settings bool
}

type ExportBundle struct {
	XMLName    xml.Name           `json:"-" xml:"pollwise"`
	ExportedAt time.Time          `json:"exported_at" xml:"exported_at"`
	Polls      []poll.Poll        `json:"polls,omitempty" xml:"polls>poll,omitempty"`
	Votes      []vote.Vote        `json:"votes,omitempty" xml:"votes>vote,omitempty"`
	Settings   *settings.Settings `json:"settings,omitempty" xml:"settings,omitempty"`
}

type ImportSummary struct {
	PollsImported int    `json:"polls_imported"`
	VotesImported int    `json:"votes_imported"`
	Skipped       int    `json:"skipped"`
	BackupTaken   bool   `json:"backup_taken"`
	Backup        []byte `json:"-"`
}

// Export serializes the requested scope. The format must be on the
// settings allow-list.
func (s *ExportService) Export(ctx context.Context, format string, scope ExportScope) ([]byte, string, error) {
	cfg, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, "", err
	}
	if !cfg.FormatAllowed(format) {
		return nil, "", pollwise_errors.ErrUnsupportedFormat
	}

	bundle, err := s.collect(ctx, scope, cfg)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(bundle, "", "  ")
		return data, "application/json", err
	case "xml":
		data, err := xml.MarshalIndent(bundle, "", "  ")
		return data, "application/xml", err
	case "csv":
		data, err := encodeCSV(bundle)
		return data, "text/csv", err
	default:
		return nil, "", pollwise_errors.ErrUnsupportedFormat
	}
}

// Import applies a previously exported bundle. Mode "merge" inserts new
// rows and skips ids that already exist; "replace" wipes polls, votes,
// shares, and winners first. With backup set, a JSON export of everything
// is taken before any mutation and returned in the summary.
func (s *ExportService) Import(ctx context.Context, format string, data []byte, mode string, backup bool) (ImportSummary, error) {
	if mode != "merge" && mode != "replace" {
		return ImportSummary{}, pollwise_errors.ErrInvalidInput
	}

	bundle, err := decodeBundle(format, data)
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	if backup {
		pre, _, err := s.Export(ctx, "json", ExportScope{Polls: true, Votes: true, Settings: true})
		if err != nil {
			return ImportSummary{}, err
		}
		summary.Backup = pre
		summary.BackupTaken = true
	}

	if mode == "replace" {
		existing, err := s.pollRepo.GetAll(ctx)
		if err != nil {
			return summary, err
		}
		ids := make([]uuid.UUID, 0, len(existing))
		for _, p := range existing {
			ids = append(ids, p.ID)
		}
		if err := s.voteRepo.HardDeleteAll(ctx); err != nil {
			return summary, err
		}
		if err := s.shareRepo.DeleteByPollIDs(ctx, ids); err != nil {
			return summary, err
		}
		if err := s.winnerRepo.DeleteByPollIDs(ctx, ids); err != nil {
			return summary, err
		}
		if err := s.pollRepo.HardDeleteAll(ctx); err != nil {
			return summary, err
		}
	}

	for i := range bundle.Polls {
		p := bundle.Polls[i]
		if err := s.pollRepo.Create(ctx, &p); err != nil {
			if errors.Is(err, pollwise_errors.ErrAlreadyExists) {
				summary.Skipped++
				continue
			}
			return summary, err
		}
		summary.PollsImported++
	}
	for i := range bundle.Votes {
		v := bundle.Votes[i]
		if err := s.voteRepo.Create(ctx, &v); err != nil {
			if errors.Is(err, pollwise_errors.ErrAlreadyVoted) {
				summary.Skipped++
				continue
			}
			return summary, err
		}
		summary.VotesImported++
	}
	if bundle.Settings != nil {
		if err := s.settingsRepo.Save(ctx, *bundle.Settings); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (s *ExportService) collect(ctx context.Context, scope ExportScope, cfg settings.Settings) (ExportBundle, error) {
	bundle := ExportBundle{ExportedAt: time.Now()}

	if scope.Polls {
		polls, err := s.pollRepo.GetAll(ctx)
		if err != nil {
			return ExportBundle{}, err
		}
		bundle.Polls = polls
	}
	if scope.Votes {
		votes, err := s.voteRepo.GetAll(ctx)
		if err != nil {
			return ExportBundle{}, err
		}
		bundle.Votes = votes
	}
	if scope.Settings {
		bundle.Settings = &cfg
	}
	return bundle, nil
}

func decodeBundle(format string, data []byte) (ExportBundle, error) {
	var bundle ExportBundle
	switch format {
	case "json":
		if err := json.Unmarshal(data, &bundle); err != nil {
			return ExportBundle{}, pollwise_errors.ErrInvalidInput
		}
	case "xml":
		if err := xml.Unmarshal(data, &bundle); err != nil {
			return ExportBundle{}, pollwise_errors.ErrInvalidInput
		}
	case "csv":
		b, err := decodeCSV(data)
		if err != nil {
			return ExportBundle{}, err
		}
		bundle = b
	default:
		return ExportBundle{}, pollwise_errors.ErrUnsupportedFormat
	}
	return bundle, nil
}

var csvHeader = []string{
	"record", "id", "poll_id", "owner_id", "question", "option_a", "option_b",
	"image_url", "is_weekly", "is_contest", "contest_prize", "contest_ends_at",
	"status", "voter_id", "voter_key", "option", "ip_address", "created_at",
}

func encodeCSV(bundle ExportBundle) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, p := range bundle.Polls {
		endsAt := ""
		if p.ContestEndsAt.Valid {
			endsAt = p.ContestEndsAt.Time.Format(time.RFC3339)
		}
		row := []string{
			"poll", p.ID.String(), "", p.OwnerID.String(), p.Question, p.OptionA, p.OptionB,
			p.ImageURL, strconv.FormatBool(p.IsWeekly), strconv.FormatBool(p.IsContest),
			p.ContestPrize, endsAt, string(p.Status), "", "", "", "",
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	for _, v := range bundle.Votes {
		voterID := ""
		if v.VoterID.Valid {
			voterID = v.VoterID.UUID.String()
		}
		row := []string{
			"vote", v.ID.String(), v.PollID.String(), "", "", "", "",
			"", "", "", "", "", "", voterID, v.VoterKey, string(v.Option), v.IPAddress,
			v.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func decodeCSV(data []byte) (ExportBundle, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return ExportBundle{}, pollwise_errors.ErrInvalidInput
	}

	var bundle ExportBundle
	for _, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return ExportBundle{}, pollwise_errors.ErrInvalidInput
		}
		switch row[0] {
		case "poll":
			p, err := pollFromCSV(row)
			if err != nil {
				return ExportBundle{}, pollwise_errors.ErrInvalidInput
			}
			bundle.Polls = append(bundle.Polls, p)
		case "vote":
			v, err := voteFromCSV(row)
			if err != nil {
				return ExportBundle{}, pollwise_errors.ErrInvalidInput
			}
			bundle.Votes = append(bundle.Votes, v)
		default:
			return ExportBundle{}, pollwise_errors.ErrInvalidInput
		}
	}
	return bundle, nil
}

func pollFromCSV(row []string) (poll.Poll, error) {
	id, err := uuid.Parse(row[1])
	if err != nil {
		return poll.Poll{}, err
	}
	ownerID, err := uuid.Parse(row[3])
	if err != nil {
		return poll.Poll{}, err
	}
	isWeekly, err := strconv.ParseBool(row[8])
	if err != nil {
		return poll.Poll{}, err
	}
	isContest, err := strconv.ParseBool(row[9])
	if err != nil {
		return poll.Poll{}, err
	}
	createdAt, err := time.Parse(time.RFC3339, row[17])
	if err != nil {
		return poll.Poll{}, err
	}

	p := poll.Poll{
		ID:           id,
		OwnerID:      ownerID,
		Question:     row[4],
		OptionA:      row[5],
		OptionB:      row[6],
		ImageURL:     row[7],
		IsWeekly:     isWeekly,
		IsContest:    isContest,
		ContestPrize: row[10],
		Status:       poll.Status(row[12]),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if row[11] != "" {
		endsAt, err := time.Parse(time.RFC3339, row[11])
		if err != nil {
			return poll.Poll{}, err
		}
		p.ContestEndsAt = sql.NullTime{Time: endsAt, Valid: true}
	}
	return p, nil
}

func voteFromCSV(row []string) (vote.Vote, error) {
	id, err := uuid.Parse(row[1])
	if err != nil {
		return vote.Vote{}, err
	}
	pollID, err := uuid.Parse(row[2])
	if err != nil {
		return vote.Vote{}, err
	}
	createdAt, err := time.Parse(time.RFC3339, row[17])
	if err != nil {
		return vote.Vote{}, err
	}

	v := vote.Vote{
		ID:        id,
		PollID:    pollID,
		VoterKey:  row[14],
		Option:    vote.Option(row[15]),
		IPAddress: row[16],
		CreatedAt: createdAt,
	}
	if row[13] != "" {
		voterID, err := uuid.Parse(row[13])
		if err != nil {
			return vote.Vote{}, err
		}
		v.VoterID = uuid.NullUUID{UUID: voterID, Valid: true}
	}
	return v, nil
}
