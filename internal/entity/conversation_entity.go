package entity

import (
	"time"

	"github.com/google/uuid"
)

type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
	TurnRoleSystem    TurnRole = "system"
)

func (r TurnRole) Valid() bool {
	switch r {
	case TurnRoleUser, TurnRoleAssistant, TurnRoleSystem:
		return true
	}
	return false
}

// Conversation is the ordered dialogue between one owner and one document.
type Conversation struct {
	Id         uuid.UUID
	OwnerId    uuid.UUID
	DocumentId uuid.UUID
	Turns      []*ConversationTurn
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ConversationTurn is immutable once appended. CitedChunkIds keeps rank order.
type ConversationTurn struct {
	Id            uuid.UUID
	Role          TurnRole
	Content       string
	CitedChunkIds []uuid.UUID
	Meta          map[string]interface{}
	CreatedAt     time.Time
}
