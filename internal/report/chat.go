package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/foxseedlab/shussekin/internal/classroom"
)

// CollectRoomChat gathers one chat-type's messages across a room's
// sessions, ordered by send time. Messages are per-row output, never merged.
func (c *Collector) CollectRoomChat(ctx context.Context, sessions []classroom.Session, chatType classroom.ChatType) ([]ChatRow, error) {
	var messages []classroom.ChatMessage
	for _, session := range sessions {
		batch, err := c.client.GetSessionChatMessages(ctx, session.ID, chatType)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s chat for session %s: %w", chatType, session.ID, err)
		}
		if len(batch) == 0 {
			slog.Debug("no chat messages in session", "session_id", session.ID, "chat_type", chatType)
			continue
		}
		messages = append(messages, batch...)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SentAt < messages[j].SentAt
	})

	rows := make([]ChatRow, 0, len(messages))
	for _, msg := range messages {
		rows = append(rows, ChatRow{
			Time:     formatEpoch(msg.SentAt.Int64(), c.loc),
			UserName: msg.AuthorName,
			UserType: msg.AuthorType,
			ChatType: string(chatType),
			Message:  msg.Text,
		})
	}
	return rows, nil
}
