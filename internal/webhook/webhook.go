package webhook

import "context"

const RunSummarySchemaVersion = "2026-09-01"

type RunSummaryPayload struct {
	SchemaVersion string   `json:"schema_version"`
	RunID         string   `json:"run_id"`
	CompanyID     string   `json:"company_id"`
	FromDate      string   `json:"from_date"`
	ToDate        string   `json:"to_date"`
	RoomsDone     int      `json:"rooms_done"`
	RoomsFailed   int      `json:"rooms_failed"`
	FailedRoomIDs []string `json:"failed_room_ids,omitempty"`
	ArchivePath   string   `json:"archive_path"`
	FinishedAt    string   `json:"finished_at"`
}

type Sender interface {
	SendRunSummary(ctx context.Context, payload RunSummaryPayload) error
}
