package runlog

import (
	"context"
	"time"

	"github.com/foxseedlab/shussekin/internal/runlog"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresLedger struct {
	pool *pgxpool.Pool
}

func NewPostgresLedger(pool *pgxpool.Pool) runlog.Ledger {
	return &PostgresLedger{pool: pool}
}

func (l *PostgresLedger) RecordRunStarted(ctx context.Context, run runlog.RunRecord) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO report_runs (id, company_id, from_date, to_date, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.CompanyID, run.FromDate, run.ToDate, run.StartedAt)
	return err
}

func (l *PostgresLedger) RecordRoomOutcome(ctx context.Context, outcome runlog.RoomOutcome) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO report_run_rooms (run_id, room_id, status, record_count, detail, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		outcome.RunID, outcome.RoomID, string(outcome.Status), outcome.RecordCount, outcome.Detail, outcome.FinishedAt)
	return err
}

func (l *PostgresLedger) RecordRunFinished(ctx context.Context, runID, archivePath string, finishedAt time.Time) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE report_runs SET archive_path = $2, finished_at = $3 WHERE id = $1`,
		runID, archivePath, finishedAt)
	return err
}
