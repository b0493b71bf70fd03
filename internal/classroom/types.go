package classroom

import (
	"bytes"
	"fmt"
	"strconv"
)

// EpochSeconds decodes a unix timestamp that the session API serves either
// as a JSON number or as a numeric string, depending on the endpoint.
type EpochSeconds int64

func (e *EpochSeconds) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*e = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp %q is not numeric: %w", s, err)
	}
	*e = EpochSeconds(v)
	return nil
}

func (e EpochSeconds) Int64() int64 {
	return int64(e)
}

type Session struct {
	ID               string `json:"id"`
	RoomID           string `json:"room_id"`
	RoomName         string `json:"room_name"`
	ThirdPartyRoomID string `json:"third_party_room_id"`
}

// AttendanceRecord is one raw (session, participant) row. ParticipantID is
// empty when the upstream row carries no third-party user id; such rows are
// excluded from every report.
type AttendanceRecord struct {
	ParticipantID string       `json:"tp_user_id"`
	Joined        EpochSeconds `json:"time_joined"`
	Left          EpochSeconds `json:"time_left"`
	Attention     EpochSeconds `json:"focus_time"`
}

type ChatType string

const (
	ChatTypePublic    ChatType = "public"
	ChatTypeQnA       ChatType = "qna"
	ChatTypeModerator ChatType = "moderator"
)

func ParseChatType(s string) (ChatType, error) {
	switch ChatType(s) {
	case ChatTypePublic, ChatTypeQnA, ChatTypeModerator:
		return ChatType(s), nil
	}
	return "", fmt.Errorf("unknown chat type %q", s)
}

type ChatMessage struct {
	SentAt     EpochSeconds `json:"time_sent"`
	AuthorName string       `json:"user_name"`
	AuthorType string       `json:"user_type"`
	Text       string       `json:"message"`
}
