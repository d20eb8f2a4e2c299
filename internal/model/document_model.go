package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalName string    `gorm:"type:varchar(512);not null"`
	Filename     string    `gorm:"type:varchar(512);not null"`
	Path         string    `gorm:"type:text;not null"`
	Size         int64     `gorm:"not null;default:0"`
	UploadedAt   time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Document) TableName() string {
	return "documents"
}
