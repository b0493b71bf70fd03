package classroom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foxseedlab/shussekin/internal/classroom"
)

type staticTokenSource struct {
	token string
}

func (s *staticTokenSource) BearerToken(_ context.Context) (string, error) {
	return s.token, nil
}

func TestListRoomSessions_SendsBearerAndParams(t *testing.T) {
	var gotAuth, gotRoomID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRoomID = r.URL.Query().Get("room_id")
		_, _ = w.Write([]byte(`{"status":"success","data":[{"id":"s1","room_id":"r1","room_name":"Algebra","third_party_room_id":"ext-1"}]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, &staticTokenSource{token: "tok-1"})
	sessions, err := client.ListRoomSessions(context.Background(), "r1", "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotRoomID != "r1" {
		t.Fatalf("unexpected room_id param: %q", gotRoomID)
	}
	if len(sessions) != 1 || sessions[0].RoomName != "Algebra" || sessions[0].ThirdPartyRoomID != "ext-1" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestListCompanySessions_NullDataMeansZeroSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":null}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, &staticTokenSource{token: "tok"})
	sessions, err := client.ListCompanySessions(context.Background(), "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected zero sessions, got %+v", sessions)
	}
}

func TestGetSessionAttendance_UnwrapsNestedField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"detailed_attendance":[
			{"tp_user_id":"7","time_joined":"1000","time_left":1500,"focus_time":300},
			{"time_joined":2000,"time_left":2100,"focus_time":50}
		]}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, &staticTokenSource{token: "tok"})
	records, err := client.GetSessionAttendance(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 raw records, got %d", len(records))
	}
	if records[0].ParticipantID != "7" || records[0].Joined != 1000 || records[0].Left != 1500 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].ParticipantID != "" {
		t.Fatalf("expected empty participant id on second record, got %q", records[1].ParticipantID)
	}
}

func TestGetData_NonSuccessEnvelopeIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","data":null}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, &staticTokenSource{token: "tok"})
	if _, err := client.ListCompanySessions(context.Background(), "2026-08-01", "2026-08-31"); err == nil {
		t.Fatal("expected error for non-success envelope")
	}
}

func TestGetData_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","data":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, &staticTokenSource{token: "tok"})
	if _, err := client.ListCompanySessions(context.Background(), "2026-08-01", "2026-08-31"); err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGetData_ClientErrorIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, &staticTokenSource{token: "tok"})
	if _, err := client.ListCompanySessions(context.Background(), "2026-08-01", "2026-08-31"); err == nil {
		t.Fatal("expected error for 403")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestGetCompanyAttendanceExport_ReturnsRawBlob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"export_data":"a,b\n1,2\n"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, &staticTokenSource{token: "tok"})
	blob, err := client.GetCompanyAttendanceExport(context.Background(), "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob != "a,b\n1,2\n" {
		t.Fatalf("unexpected blob: %q", blob)
	}
}

var _ classroom.Client = (*HTTPClient)(nil)
