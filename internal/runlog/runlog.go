package runlog

import (
	"context"
	"time"
)

type RoomStatus string

const (
	RoomStatusDone   RoomStatus = "done"
	RoomStatusFailed RoomStatus = "failed"
)

type RunRecord struct {
	ID        string
	CompanyID string
	FromDate  string
	ToDate    string
	StartedAt time.Time
}

type RoomOutcome struct {
	RunID       string
	RoomID      string
	Status      RoomStatus
	RecordCount int
	Detail      string
	FinishedAt  time.Time
}

// Ledger records what a report run did. It is best-effort bookkeeping:
// callers log ledger errors and keep going.
type Ledger interface {
	RecordRunStarted(ctx context.Context, run RunRecord) error
	RecordRoomOutcome(ctx context.Context, outcome RoomOutcome) error
	RecordRunFinished(ctx context.Context, runID, archivePath string, finishedAt time.Time) error
}
