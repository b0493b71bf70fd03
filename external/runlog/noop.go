package runlog

import (
	"context"
	"time"

	"github.com/foxseedlab/shussekin/internal/runlog"
)

// NoopLedger is used when no DATABASE_URL is configured; the run proceeds
// without bookkeeping.
type NoopLedger struct{}

func NewNoopLedger() runlog.Ledger {
	return &NoopLedger{}
}

func (l *NoopLedger) RecordRunStarted(_ context.Context, _ runlog.RunRecord) error { return nil }

func (l *NoopLedger) RecordRoomOutcome(_ context.Context, _ runlog.RoomOutcome) error { return nil }

func (l *NoopLedger) RecordRunFinished(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}
