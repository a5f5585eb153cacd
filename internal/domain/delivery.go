package domain

import "time"

// NoticeDelivery records a single outbound dispatch of a notice through one
// communication mode.
type NoticeDelivery struct {
	ID                string            `gorm:"type:uuid;primaryKey"`
	NoticeID          string            `gorm:"type:uuid;not null"`
	Mode              CommunicationMode `gorm:"type:varchar(16);not null"`
	Recipient         string            `gorm:"type:varchar(255);not null"`
	Succeeded         bool              `gorm:"not null"`
	StatusCode        *int              `gorm:"type:int"`
	ProviderMessageID *string           `gorm:"type:varchar(255)"`
	Error             *string           `gorm:"type:text"`
	CreatedAt         time.Time
}
