package report

import "github.com/foxseedlab/shussekin/internal/classroom"

// Row is one finalized per-(room, participant) report line. Joined and Left
// are display strings in the configured timezone; building a Row is the only
// place epoch values are formatted, so a Row can never be formatted twice.
type Row struct {
	RoomName         string
	ThirdPartyRoomID string
	ParticipantID    string
	FirstName        string
	LastName         string
	Email            string
	Title            string
	Company          string
	Country          string
	City             string
	State            string
	PostalCode       string
	Phone            string
	JobRole          string
	Joined           string
	Left             string
	Duration         int64
	Attention        int64
}

// ChatRow is one chat message line; messages are never merged.
type ChatRow struct {
	Time     string
	UserName string
	UserType string
	ChatType string
	Message  string
}

// Emitter persists finished record sets. Implementations must skip file
// creation for empty row sets and return an empty path in that case.
type Emitter interface {
	WriteRoomReport(roomID string, rows []Row) (string, error)
	WriteChatReport(roomID, roomName string, chatType classroom.ChatType, rows []ChatRow) (string, error)
	WriteCompanyReport(header []string, rows [][]string) (string, error)
	ArchiveOutputs(zipFileName string) (string, error)
}
