// Package sqlstore is a database/sql RecordStore backend. It runs against
// SQLite (modernc driver) for single-node deployments and Postgres (pgx
// stdlib driver) when a shared database is available.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/transcript-quizgen/constants"
	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS work_items (
	id                    TEXT PRIMARY KEY,
	status                TEXT NOT NULL,
	title                 TEXT,
	source_version_marker TEXT,
	question_count        INTEGER,
	form_id               TEXT,
	form_url              TEXT,
	summary               TEXT,
	error_message         TEXT,
	progress_step         TEXT,
	progress_message      TEXT,
	progress_percent      INTEGER,
	created_at            TIMESTAMP NOT NULL,
	updated_at            TIMESTAMP NOT NULL
)`

type Store struct {
	db       *sql.DB
	log      *slog.Logger
	postgres bool
}

// Open connects, pings, and ensures the schema exists. backend is "sqlite"
// or "postgres".
func Open(ctx context.Context, backend, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var driver string
	switch backend {
	case "sqlite":
		driver = "sqlite"
	case "postgres":
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported sql backend: %s", backend)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, common.WrapError(err, "open database")
	}
	if backend == "sqlite" {
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY churn under the worker pool.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ping database")
	}
	s := &Store{db: db, log: logger, postgres: backend == "postgres"}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ensure schema")
	}
	logger.Info("store.sql.opened", "backend", backend)
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(ctx context.Context, id string) (*entity.WorkItem, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, status, title, source_version_marker, question_count,
		       form_id, form_url, summary, error_message,
		       progress_step, progress_message, progress_percent,
		       created_at, updated_at
		FROM work_items WHERE id = ?`), id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrStoreUnavailable, id, err)
	}
	return item, nil
}

func (s *Store) MergeSet(ctx context.Context, id string, patch entity.WorkItemPatch) error {
	now := time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	status := constants.StatusProcessing
	if patch.Status != nil {
		status = *patch.Status
	}
	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO work_items (id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`), id, string(status), now, now)
	if err != nil {
		return fmt.Errorf("%w: insert %s: %v", common.ErrStoreUnavailable, id, err)
	}

	set := []string{"updated_at = ?"}
	args := []any{now}
	setStr := func(col string, p *string) {
		if p == nil {
			return
		}
		if entity.Cleared(p) {
			set = append(set, col+" = NULL")
			return
		}
		set = append(set, col+" = ?")
		args = append(args, *p)
	}
	if patch.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*patch.Status))
	}
	setStr("title", patch.Title)
	setStr("source_version_marker", patch.SourceVersionMarker)
	setStr("form_id", patch.FormID)
	setStr("form_url", patch.FormURL)
	setStr("summary", patch.Summary)
	setStr("error_message", patch.ErrorMessage)
	if patch.QuestionCount != nil {
		set = append(set, "question_count = ?")
		args = append(args, *patch.QuestionCount)
	}
	if patch.Progress != nil {
		set = append(set, "progress_step = ?", "progress_message = ?", "progress_percent = ?")
		args = append(args, string(patch.Progress.Step), patch.Progress.Message, patch.Progress.Percent)
	}
	args = append(args, id)

	query := "UPDATE work_items SET " + strings.Join(set, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return fmt.Errorf("%w: update %s: %v", common.ErrStoreUnavailable, id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", common.ErrStoreUnavailable, id, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*entity.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, title, source_version_marker, question_count,
		       form_id, form_url, summary, error_message,
		       progress_step, progress_message, progress_percent,
		       created_at, updated_at
		FROM work_items ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []*entity.WorkItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrStoreUnavailable, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*entity.WorkItem, error) {
	var (
		item                                            entity.WorkItem
		status                                          string
		title, marker, formID, formURL, summary, errMsg sql.NullString
		step, stepMsg                                   sql.NullString
		questionCount, percent                          sql.NullInt64
	)
	err := row.Scan(&item.ID, &status, &title, &marker, &questionCount,
		&formID, &formURL, &summary, &errMsg,
		&step, &stepMsg, &percent,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Status = constants.WorkStatus(status)
	item.Title = title.String
	item.SourceVersionMarker = marker.String
	item.QuestionCount = int(questionCount.Int64)
	item.FormID = formID.String
	item.FormURL = formURL.String
	item.Summary = summary.String
	item.ErrorMessage = errMsg.String
	item.Progress = entity.Progress{
		Step:    constants.ProgressStep(step.String),
		Message: stepMsg.String,
		Percent: int(percent.Int64),
	}
	return &item, nil
}

// rebind converts ? placeholders to $n for the postgres driver.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
