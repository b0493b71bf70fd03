package classroom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/foxseedlab/shussekin/internal/classroom"
)

const (
	requestTimeout   = 5 * time.Second
	maxRetries       = 2
	retryInitialWait = 500 * time.Millisecond
)

type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type HTTPClient struct {
	baseURL string
	tokens  classroom.TokenSource
	client  *http.Client
}

func NewHTTPClient(baseURL string, tokens classroom.TokenSource) classroom.Client {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		tokens:  tokens,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *HTTPClient) ListCompanySessions(ctx context.Context, fromDate, toDate string) ([]classroom.Session, error) {
	params := url.Values{}
	params.Set("from_date", fromDate)
	params.Set("to_date", toDate)
	var sessions []classroom.Session
	if err := c.getData(ctx, "backend/api/analytics/company-sessions", params, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) ListRoomSessions(ctx context.Context, roomID, fromDate, toDate string) ([]classroom.Session, error) {
	params := url.Values{}
	params.Set("room_id", roomID)
	params.Set("from_date", fromDate)
	params.Set("to_date", toDate)
	var sessions []classroom.Session
	if err := c.getData(ctx, "backend/api/analytics/sessions", params, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) GetSessionAttendance(ctx context.Context, sessionID string) ([]classroom.AttendanceRecord, error) {
	var payload struct {
		DetailedAttendance []classroom.AttendanceRecord `json:"detailed_attendance"`
	}
	path := "backend/api/analytics/detailed-session-attendees/" + url.PathEscape(sessionID)
	if err := c.getData(ctx, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.DetailedAttendance, nil
}

func (c *HTTPClient) GetSessionChatMessages(ctx context.Context, sessionID string, chatType classroom.ChatType) ([]classroom.ChatMessage, error) {
	params := url.Values{}
	params.Set("chat_type", string(chatType))
	var payload struct {
		ChatMessages []classroom.ChatMessage `json:"chat_messages"`
	}
	path := "backend/api/analytics/session-chat/" + url.PathEscape(sessionID)
	if err := c.getData(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	return payload.ChatMessages, nil
}

func (c *HTTPClient) GetCompanyAttendanceExport(ctx context.Context, fromDate, toDate string) (string, error) {
	params := url.Values{}
	params.Set("from_date", fromDate)
	params.Set("to_date", toDate)
	var payload struct {
		ExportData string `json:"export_data"`
	}
	if err := c.getData(ctx, "backend/api/analytics/company-attendance-export", params, &payload); err != nil {
		return "", err
	}
	return payload.ExportData, nil
}

// getData performs a bearer-authenticated GET and unwraps the {status, data}
// envelope. A null or absent data field leaves out untouched so callers see
// their zero value. Idempotent, so transient failures are retried with
// bounded exponential backoff.
func (c *HTTPClient) getData(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.tokens.BearerToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain bearer token: %w", err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("session api returned status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("session api returned status %d", resp.StatusCode))
		}

		var envelope apiEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return backoff.Permanent(fmt.Errorf("session api response is not valid JSON: %w", err))
		}
		if envelope.Status != "success" {
			return backoff.Permanent(fmt.Errorf("session api returned status %q", envelope.Status))
		}
		if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
			return nil
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return backoff.Permanent(fmt.Errorf("session api data has unexpected shape: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialWait
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.WithContext(b, ctx), maxRetries)); err != nil {
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	return nil
}
