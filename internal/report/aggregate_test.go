package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/shussekin/internal/classroom"
	"github.com/foxseedlab/shussekin/internal/identity"
)

type fakeClient struct {
	mu sync.Mutex

	companySessions []classroom.Session
	roomSessions    map[string][]classroom.Session
	attendance      map[string][]classroom.AttendanceRecord
	chats           map[string][]classroom.ChatMessage
	exportBlob      string

	attendanceErr map[string]error
	roomErr       map[string]error
	exportErr     error

	attendanceCalls []string
}

func (f *fakeClient) ListCompanySessions(_ context.Context, _, _ string) ([]classroom.Session, error) {
	return f.companySessions, nil
}

func (f *fakeClient) ListRoomSessions(_ context.Context, roomID, _, _ string) ([]classroom.Session, error) {
	if err := f.roomErr[roomID]; err != nil {
		return nil, err
	}
	return f.roomSessions[roomID], nil
}

func (f *fakeClient) GetSessionAttendance(_ context.Context, sessionID string) ([]classroom.AttendanceRecord, error) {
	f.mu.Lock()
	f.attendanceCalls = append(f.attendanceCalls, sessionID)
	f.mu.Unlock()
	if err := f.attendanceErr[sessionID]; err != nil {
		return nil, err
	}
	return f.attendance[sessionID], nil
}

func (f *fakeClient) GetSessionChatMessages(_ context.Context, sessionID string, _ classroom.ChatType) ([]classroom.ChatMessage, error) {
	return f.chats[sessionID], nil
}

func (f *fakeClient) GetCompanyAttendanceExport(_ context.Context, _, _ string) (string, error) {
	if f.exportErr != nil {
		return "", f.exportErr
	}
	return f.exportBlob, nil
}

type fakeDirectory struct {
	mu       sync.Mutex
	profiles map[string]identity.Profile
	err      error
	calls    [][]string
}

func (f *fakeDirectory) GetProfiles(_ context.Context, _ string, ids []string) (map[string]identity.Profile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ids)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]identity.Profile, len(ids))
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestCollectRoomRecords_MergesAcrossSessions(t *testing.T) {
	sessions := []classroom.Session{
		{ID: "s1", RoomID: "r1", RoomName: "Main Hall", ThirdPartyRoomID: "tp-1"},
		{ID: "s2", RoomID: "r1", RoomName: "Main Hall", ThirdPartyRoomID: "tp-1"},
	}
	client := &fakeClient{
		attendance: map[string][]classroom.AttendanceRecord{
			"s1": {
				{ParticipantID: "100", Joined: 1500, Left: 2000, Attention: 300},
			},
			"s2": {
				{ParticipantID: "100", Joined: 1000, Left: 1800, Attention: 100},
			},
		},
	}
	directory := &fakeDirectory{profiles: map[string]identity.Profile{
		"100": {FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
	}}

	collector := NewCollector(client, directory, IncludeAll, time.UTC, 2)
	rows, err := collector.CollectRoomRecords(context.Background(), sessions, "ks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Duration != 1300 {
		t.Errorf("duration: got %d, want 1300", row.Duration)
	}
	if row.Attention != 400 {
		t.Errorf("attention: got %d, want 400", row.Attention)
	}
	if want := formatEpoch(1000, time.UTC); row.Joined != want {
		t.Errorf("joined: got %q, want %q", row.Joined, want)
	}
	if want := formatEpoch(2000, time.UTC); row.Left != want {
		t.Errorf("left: got %q, want %q", row.Left, want)
	}
	if row.RoomName != "Main Hall" || row.ThirdPartyRoomID != "tp-1" {
		t.Errorf("room identity not carried: %+v", row)
	}
	if row.FirstName != "Ada" || row.Email != "ada@example.com" {
		t.Errorf("profile not carried: %+v", row)
	}
}

func TestCollectRoomRecords_FiltersAndDedupesBeforeLookup(t *testing.T) {
	sessions := []classroom.Session{{ID: "s1", RoomID: "r1"}}
	client := &fakeClient{
		attendance: map[string][]classroom.AttendanceRecord{
			"s1": {
				{ParticipantID: "", Joined: 1, Left: 2},
				{ParticipantID: "7", Joined: 10, Left: 20},
				{ParticipantID: "7", Joined: 30, Left: 40},
				{ParticipantID: "9", Joined: 50, Left: 60},
			},
		},
	}
	directory := &fakeDirectory{profiles: map[string]identity.Profile{
		"7": {FirstName: "Seven"},
		"9": {FirstName: "Nine"},
	}}

	collector := NewCollector(client, directory, IncludeAll, time.UTC, 1)
	rows, err := collector.CollectRoomRecords(context.Background(), sessions, "ks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(directory.calls) != 1 {
		t.Fatalf("expected one directory lookup, got %d", len(directory.calls))
	}
	ids := directory.calls[0]
	if len(ids) != 2 || ids[0] != "7" || ids[1] != "9" {
		t.Fatalf("expected deduped ids [7 9], got %v", ids)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ParticipantID != "7" || rows[1].ParticipantID != "9" {
		t.Fatalf("rows not sorted by participant id: %v, %v", rows[0].ParticipantID, rows[1].ParticipantID)
	}
	if rows[0].Duration != 20 {
		t.Errorf("repeated participant should merge within the session: got %d, want 20", rows[0].Duration)
	}
}

func TestCollectRoomRecords_EmptySessionsYieldEmptyRows(t *testing.T) {
	collector := NewCollector(&fakeClient{}, &fakeDirectory{}, IncludeAll, time.UTC, 1)
	rows, err := collector.CollectRoomRecords(context.Background(), nil, "ks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows == nil {
		t.Fatal("rows must be non-nil for an empty room")
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestCollectRoomRecords_NegativeDurationPassesThrough(t *testing.T) {
	sessions := []classroom.Session{{ID: "s1", RoomID: "r1"}}
	client := &fakeClient{
		attendance: map[string][]classroom.AttendanceRecord{
			"s1": {{ParticipantID: "5", Joined: 2000, Left: 1500, Attention: 0}},
		},
	}
	directory := &fakeDirectory{profiles: map[string]identity.Profile{"5": {}}}

	collector := NewCollector(client, directory, IncludeAll, time.UTC, 1)
	rows, err := collector.CollectRoomRecords(context.Background(), sessions, "ks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Duration != -500 {
		t.Fatalf("expected duration -500, got %+v", rows)
	}
}

func TestCollectRoomRecords_SkipsUnresolvedAndRejectedProfiles(t *testing.T) {
	sessions := []classroom.Session{{ID: "s1", RoomID: "r1"}}
	client := &fakeClient{
		attendance: map[string][]classroom.AttendanceRecord{
			"s1": {
				{ParticipantID: "1", Joined: 10, Left: 20},
				{ParticipantID: "2", Joined: 10, Left: 20},
				{ParticipantID: "3", Joined: 10, Left: 20},
			},
		},
	}
	directory := &fakeDirectory{profiles: map[string]identity.Profile{
		"1": {Email: "keep@sponsor.example"},
		"2": {Email: "drop@other.example"},
	}}

	collector := NewCollector(client, directory, RequireEmailDomain("sponsor.example"), time.UTC, 1)
	rows, err := collector.CollectRoomRecords(context.Background(), sessions, "ks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ParticipantID != "1" {
		t.Fatalf("expected only participant 1, got %+v", rows)
	}
}

func TestCollectRoomRecords_SessionFailureFailsRoom(t *testing.T) {
	sessions := []classroom.Session{
		{ID: "s1", RoomID: "r1"},
		{ID: "s2", RoomID: "r1"},
	}
	client := &fakeClient{
		attendance: map[string][]classroom.AttendanceRecord{
			"s1": {{ParticipantID: "1", Joined: 10, Left: 20}},
		},
		attendanceErr: map[string]error{"s2": errors.New("upstream 502")},
	}
	directory := &fakeDirectory{profiles: map[string]identity.Profile{"1": {}}}

	collector := NewCollector(client, directory, IncludeAll, time.UTC, 2)
	if _, err := collector.CollectRoomRecords(context.Background(), sessions, "ks"); err == nil {
		t.Fatal("expected a failing session to fail the room")
	}
}

func TestCollectRoomChat_OrdersAcrossSessions(t *testing.T) {
	sessions := []classroom.Session{
		{ID: "s1", RoomID: "r1"},
		{ID: "s2", RoomID: "r1"},
	}
	client := &fakeClient{
		chats: map[string][]classroom.ChatMessage{
			"s1": {
				{SentAt: 300, AuthorName: "bob", AuthorType: "attendee", Text: "later"},
			},
			"s2": {
				{SentAt: 100, AuthorName: "eve", AuthorType: "moderator", Text: "first"},
				{SentAt: 200, AuthorName: "eve", AuthorType: "moderator", Text: "second"},
			},
		},
	}

	collector := NewCollector(client, &fakeDirectory{}, IncludeAll, time.UTC, 1)
	rows, err := collector.CollectRoomChat(context.Background(), sessions, classroom.ChatTypePublic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Message != "first" || rows[1].Message != "second" || rows[2].Message != "later" {
		t.Fatalf("messages out of order: %+v", rows)
	}
	if rows[0].ChatType != "public" {
		t.Errorf("chat type: got %q, want %q", rows[0].ChatType, "public")
	}
	if want := formatEpoch(100, time.UTC); rows[0].Time != want {
		t.Errorf("time: got %q, want %q", rows[0].Time, want)
	}
}
