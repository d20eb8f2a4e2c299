package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Conversation struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_owner_document,priority:1"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_owner_document,priority:2"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Turns []ConversationTurn `gorm:"foreignKey:ConversationId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ConversationTurn is ordered by Position within its conversation.
type ConversationTurn struct {
	Id             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_turns_position,priority:1"`
	Position       int               `gorm:"not null;uniqueIndex:idx_turns_position,priority:2"`
	Role           string            `gorm:"type:varchar(16);not null"`
	Content        string            `gorm:"type:text;not null"`
	Meta           datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`

	Citations []TurnCitation `gorm:"foreignKey:TurnId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// TurnCitation links a turn to a chunk it cited, keeping rank order.
type TurnCitation struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnId   uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Position int       `gorm:"not null"`
}

func (TurnCitation) TableName() string {
	return "turn_citations"
}
