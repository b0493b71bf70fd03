package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/foxseedlab/shussekin/internal/classroom"
	"github.com/foxseedlab/shussekin/internal/config"
	"github.com/foxseedlab/shussekin/internal/identity"
	"github.com/foxseedlab/shussekin/internal/runlog"
	"github.com/foxseedlab/shussekin/internal/webhook"
	"github.com/google/uuid"
)

// Orchestrator drives one report run end to end: authenticate, discover
// rooms, reconcile each room in isolation, emit files, package, notify.
type Orchestrator struct {
	cfg       *config.Config
	client    classroom.Client
	tokens    classroom.TokenSource
	keys      identity.SessionKeySource
	collector *Collector
	emitter   Emitter
	ledger    runlog.Ledger
	notifier  webhook.Sender
}

func NewOrchestrator(cfg *config.Config, client classroom.Client, tokens classroom.TokenSource, keys identity.SessionKeySource, collector *Collector, emitter Emitter, ledger runlog.Ledger, notifier webhook.Sender) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		client:    client,
		tokens:    tokens,
		keys:      keys,
		collector: collector,
		emitter:   emitter,
		ledger:    ledger,
		notifier:  notifier,
	}
}

// roomTask is one room to process. Sessions is nil when the room came from
// the override list and its sessions still need an individual fetch.
type roomTask struct {
	roomID   string
	sessions []classroom.Session
}

type roomResult struct {
	roomID string
	rows   []Row
	chats  map[classroom.ChatType][]ChatRow
	err    error
}

// Run executes the whole report. It returns an error only for fatal
// conditions (authentication, discovery, packaging); individual room
// failures are logged, recorded, and skipped.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.NewString()
	slog.Info("report run starting", "run_id", runID, "company_id", o.cfg.ClassroomCompanyID, "from", o.cfg.ReportFromDate, "to", o.cfg.ReportToDate)

	if _, err := o.tokens.BearerToken(ctx); err != nil {
		return fmt.Errorf("failed to obtain bearer token: %w", err)
	}
	sessionKey, err := o.keys.SessionKey()
	if err != nil {
		return fmt.Errorf("failed to generate identity session key: %w", err)
	}
	slog.Info("authenticated against session and identity services", "run_id", runID)

	tasks, err := o.discoverRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover company sessions: %w", err)
	}
	slog.Info("rooms discovered", "run_id", runID, "rooms", len(tasks))

	if err := o.ledger.RecordRunStarted(ctx, runlog.RunRecord{
		ID:        runID,
		CompanyID: o.cfg.ClassroomCompanyID,
		FromDate:  o.cfg.ReportFromDate,
		ToDate:    o.cfg.ReportToDate,
		StartedAt: time.Now(),
	}); err != nil {
		slog.Error("failed to record run start", "error", err, "run_id", runID)
	}

	results := o.processRooms(ctx, tasks, sessionKey)

	var doneRooms, failedRoomIDs []string
	for _, res := range results {
		if res.err != nil {
			slog.Error("failed to collect data for room", "error", res.err, "room_id", res.roomID)
			failedRoomIDs = append(failedRoomIDs, res.roomID)
			o.recordRoomOutcome(ctx, runID, res.roomID, runlog.RoomStatusFailed, 0, res.err.Error())
			continue
		}
		if err := o.emitRoomReports(res); err != nil {
			slog.Error("failed to write reports for room", "error", err, "room_id", res.roomID)
			failedRoomIDs = append(failedRoomIDs, res.roomID)
			o.recordRoomOutcome(ctx, runID, res.roomID, runlog.RoomStatusFailed, len(res.rows), err.Error())
			continue
		}
		doneRooms = append(doneRooms, res.roomID)
		o.recordRoomOutcome(ctx, runID, res.roomID, runlog.RoomStatusDone, len(res.rows), "")
	}

	if o.cfg.ReportCompanyExport {
		o.emitCompanyReport(ctx)
	}

	zipName := fmt.Sprintf("Company_%s_Report_%s_%s.zip", o.cfg.ClassroomCompanyID, o.cfg.ReportFromDate, o.cfg.ReportToDate)
	slog.Info("generating final archive", "run_id", runID, "zip", zipName)
	archivePath, err := o.emitter.ArchiveOutputs(zipName)
	if err != nil {
		return fmt.Errorf("failed to write final archive: %w", err)
	}
	slog.Info("report run finished", "run_id", runID, "archive", archivePath, "rooms_done", len(doneRooms), "rooms_failed", len(failedRoomIDs))

	finishedAt := time.Now()
	if err := o.ledger.RecordRunFinished(ctx, runID, archivePath, finishedAt); err != nil {
		slog.Error("failed to record run finish", "error", err, "run_id", runID)
	}
	if err := o.notifier.SendRunSummary(ctx, webhook.RunSummaryPayload{
		SchemaVersion: webhook.RunSummarySchemaVersion,
		RunID:         runID,
		CompanyID:     o.cfg.ClassroomCompanyID,
		FromDate:      o.cfg.ReportFromDate,
		ToDate:        o.cfg.ReportToDate,
		RoomsDone:     len(doneRooms),
		RoomsFailed:   len(failedRoomIDs),
		FailedRoomIDs: failedRoomIDs,
		ArchivePath:   archivePath,
		FinishedAt:    finishedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		slog.Error("failed to send run summary webhook", "error", err, "run_id", runID)
	}
	return nil
}

// discoverRooms chooses the room set: an explicit override list (sessions
// fetched later, inside each room's isolated task) or everything the
// company did in the window, grouped by room.
func (o *Orchestrator) discoverRooms(ctx context.Context) ([]roomTask, error) {
	if len(o.cfg.ClassroomOverrideRoomIDs) > 0 {
		slog.Info("generating report for specific company rooms", "room_ids", o.cfg.ClassroomOverrideRoomIDs)
		tasks := make([]roomTask, 0, len(o.cfg.ClassroomOverrideRoomIDs))
		for _, roomID := range o.cfg.ClassroomOverrideRoomIDs {
			tasks = append(tasks, roomTask{roomID: roomID})
		}
		return tasks, nil
	}

	slog.Info("generating report for all company rooms")
	sessions, err := o.client.ListCompanySessions(ctx, o.cfg.ReportFromDate, o.cfg.ReportToDate)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[string][]classroom.Session)
	for _, session := range sessions {
		byRoom[session.RoomID] = append(byRoom[session.RoomID], session)
	}
	tasks := make([]roomTask, 0, len(byRoom))
	for roomID, roomSessions := range byRoom {
		tasks = append(tasks, roomTask{roomID: roomID, sessions: roomSessions})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].roomID < tasks[j].roomID })
	return tasks, nil
}

// processRooms runs every room task on a bounded pool. All tasks settle:
// one room's failure never cancels its siblings.
func (o *Orchestrator) processRooms(ctx context.Context, tasks []roomTask, sessionKey string) []roomResult {
	results := make([]roomResult, len(tasks))
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := o.cfg.RoomConcurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = o.processRoom(ctx, tasks[idx], sessionKey)
			}
		}()
	}
	for idx := range tasks {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

func (o *Orchestrator) processRoom(ctx context.Context, task roomTask, sessionKey string) roomResult {
	res := roomResult{roomID: task.roomID}
	slog.Info("collecting data for room", "room_id", task.roomID)

	sessions := task.sessions
	if sessions == nil {
		var err error
		sessions, err = o.client.ListRoomSessions(ctx, task.roomID, o.cfg.ReportFromDate, o.cfg.ReportToDate)
		if err != nil {
			res.err = fmt.Errorf("failed to fetch sessions: %w", err)
			return res
		}
	}
	if len(sessions) == 0 {
		slog.Info("no sessions were found for room", "room_id", task.roomID)
		res.rows = []Row{}
		return res
	}

	rows, err := o.collector.CollectRoomRecords(ctx, sessions, sessionKey)
	if err != nil {
		res.err = err
		return res
	}
	res.rows = rows

	if len(o.cfg.ReportChatTypes) > 0 {
		res.chats = make(map[classroom.ChatType][]ChatRow, len(o.cfg.ReportChatTypes))
		for _, raw := range o.cfg.ReportChatTypes {
			chatType, err := classroom.ParseChatType(raw)
			if err != nil {
				res.err = err
				return res
			}
			chatRows, err := o.collector.CollectRoomChat(ctx, sessions, chatType)
			if err != nil {
				res.err = err
				return res
			}
			res.chats[chatType] = chatRows
		}
	}
	return res
}

func (o *Orchestrator) emitRoomReports(res roomResult) error {
	slog.Info("generating csv file for room", "room_id", res.roomID, "records", len(res.rows))
	path, err := o.emitter.WriteRoomReport(res.roomID, res.rows)
	if err != nil {
		return err
	}
	if path == "" {
		slog.Info("room produced no records, skipping file", "room_id", res.roomID)
	}

	roomName := ""
	if len(res.rows) > 0 {
		roomName = res.rows[0].RoomName
	}
	for chatType, chatRows := range res.chats {
		if _, err := o.emitter.WriteChatReport(res.roomID, roomName, chatType, chatRows); err != nil {
			return err
		}
	}
	return nil
}

// emitCompanyReport writes the reshaped company-level export. Its failure
// leaves the per-room reports intact, so it is logged rather than fatal.
func (o *Orchestrator) emitCompanyReport(ctx context.Context) {
	slog.Info("generating company-level aggregated csv")
	blob, err := o.client.GetCompanyAttendanceExport(ctx, o.cfg.ReportFromDate, o.cfg.ReportToDate)
	if err != nil {
		slog.Error("failed to fetch company export", "error", err)
		return
	}
	if blob == "" {
		slog.Info("company export is empty, skipping file")
		return
	}
	header, rows, err := ReshapeCompanyExport(blob, o.cfg.Location(), o.cfg.ClassroomOverrideRoomIDs)
	if err != nil {
		slog.Error("failed to reshape company export", "error", err)
		return
	}
	if _, err := o.emitter.WriteCompanyReport(header, rows); err != nil {
		slog.Error("failed to write company export csv", "error", err)
	}
}

func (o *Orchestrator) recordRoomOutcome(ctx context.Context, runID, roomID string, status runlog.RoomStatus, records int, detail string) {
	if err := o.ledger.RecordRoomOutcome(ctx, runlog.RoomOutcome{
		RunID:       runID,
		RoomID:      roomID,
		Status:      status,
		RecordCount: records,
		Detail:      detail,
		FinishedAt:  time.Now(),
	}); err != nil {
		slog.Error("failed to record room outcome", "error", err, "run_id", runID, "room_id", roomID)
	}
}
