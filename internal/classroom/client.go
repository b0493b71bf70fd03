package classroom

import "context"

// Client reads session analytics from the classroom platform. All methods
// treat an upstream "no data" response as an empty slice; transport failures
// and non-success response envelopes surface as the same error.
type Client interface {
	ListCompanySessions(ctx context.Context, fromDate, toDate string) ([]Session, error)
	ListRoomSessions(ctx context.Context, roomID, fromDate, toDate string) ([]Session, error)
	GetSessionAttendance(ctx context.Context, sessionID string) ([]AttendanceRecord, error)
	GetSessionChatMessages(ctx context.Context, sessionID string, chatType ChatType) ([]ChatMessage, error)
	GetCompanyAttendanceExport(ctx context.Context, fromDate, toDate string) (string, error)
}

// TokenSource yields a bearer token valid for Client calls.
type TokenSource interface {
	BearerToken(ctx context.Context) (string, error)
}
