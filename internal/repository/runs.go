package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
)

// RunRepository persists comparison history.
type RunRepository interface {
	Save(ctx context.Context, run *entity.ComparisonRun) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ComparisonRun, error)
	List(ctx context.Context, limit int) ([]entity.ComparisonRun, error)
}

const runColumns = `id, request_id, po_source, invoice_source, po_type, invoice_type, status,
	error_code, error_message, overall_flag, reasoner, report, started_at, finished_at`

type sqliteRunRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteRunRepository(db *sql.DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &sqliteRunRepo{db: db, log: log}
}

func (r *sqliteRunRepo) Save(ctx context.Context, run *entity.ComparisonRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	var report any
	if len(run.Report) > 0 {
		report = string(run.Report)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comparison_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.RequestID, run.POSource, run.InvoiceSource, run.POType, run.InvoiceType,
		run.Status, nullString(run.ErrorCode), nullString(run.ErrorMessage), nullBool(run.OverallFlag),
		run.Reasoner, report,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		r.log.Error("repo.runs.save_failed", "run_id", run.ID, "error", err)
		return fmt.Errorf("save run: %w", err)
	}
	r.log.Debug("repo.runs.saved", "run_id", run.ID, "status", run.Status)
	return nil
}

func (r *sqliteRunRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ComparisonRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM comparison_runs WHERE id = ?`, id.String())
	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (r *sqliteRunRepo) List(ctx context.Context, limit int) ([]entity.ComparisonRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM comparison_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []entity.ComparisonRun
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(s rowScanner) (*entity.ComparisonRun, error) {
	var (
		run                 entity.ComparisonRun
		id, started, ended  string
		errCode, errMessage sql.NullString
		report              sql.NullString
		flag                sql.NullBool
	)
	if err := s.Scan(&id, &run.RequestID, &run.POSource, &run.InvoiceSource, &run.POType,
		&run.InvoiceType, &run.Status, &errCode, &errMessage, &flag, &run.Reasoner, &report,
		&started, &ended); err != nil {
		return nil, err
	}

	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, ended); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	if errCode.Valid {
		run.ErrorCode = &errCode.String
	}
	if errMessage.Valid {
		run.ErrorMessage = &errMessage.String
	}
	if flag.Valid {
		run.OverallFlag = &flag.Bool
	}
	if report.Valid {
		run.Report = json.RawMessage(report.String)
	}
	return &run, nil
}

type pgRunRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresRunRepository(pool *pgxpool.Pool, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &pgRunRepo{pool: pool, log: log}
}

func (r *pgRunRepo) Save(ctx context.Context, run *entity.ComparisonRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	var report any
	if len(run.Report) > 0 {
		report = string(run.Report)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comparison_runs (`+runColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID.String(), run.RequestID, run.POSource, run.InvoiceSource, run.POType, run.InvoiceType,
		run.Status, run.ErrorCode, run.ErrorMessage, run.OverallFlag, run.Reasoner, report,
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		r.log.Error("repo.runs.save_failed", "run_id", run.ID, "error", err)
		return fmt.Errorf("save run: %w", err)
	}
	r.log.Debug("repo.runs.saved", "run_id", run.ID, "status", run.Status)
	return nil
}

func (r *pgRunRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ComparisonRun, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM comparison_runs WHERE id = $1`, id.String())
	run, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (r *pgRunRepo) List(ctx context.Context, limit int) ([]entity.ComparisonRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+runColumns+` FROM comparison_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []entity.ComparisonRun
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func scanPostgresRun(s rowScanner) (*entity.ComparisonRun, error) {
	var (
		run    entity.ComparisonRun
		id     string
		report []byte
	)
	if err := s.Scan(&id, &run.RequestID, &run.POSource, &run.InvoiceSource, &run.POType,
		&run.InvoiceType, &run.Status, &run.ErrorCode, &run.ErrorMessage, &run.OverallFlag,
		&run.Reasoner, &report, &run.StartedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	run.ID = parsed
	if len(report) > 0 {
		run.Report = json.RawMessage(report)
	}
	return &run, nil
}
