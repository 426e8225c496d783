// Package domain contains core concepts of the farmer portal.
// This file defines chat messages and conversation turns.
// Messages are immutable once created and only ever appended to a log.
package domain

import "time"

// Role identifies the author side of a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// ChatMessage represents one immutable entry of a conversation log.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is one user prompt plus the reply it produced.
type Turn struct {
	UserText string
	BotText  string
}
