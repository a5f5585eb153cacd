package domain

import (
	"fmt"
	"strings"
	"time"
)

// AcknowledgedByRefused is the acknowledgedBy value that records an outright
// refusal; every other value routes to pending verification.
const AcknowledgedByRefused = "Refused"

// AcknowledgementStatus represents the verification state of an acknowledgement.
type AcknowledgementStatus string

const (
	AckStatusAcknowledged        AcknowledgementStatus = "ACKNOWLEDGED"
	AckStatusRefused             AcknowledgementStatus = "REFUSED"
	AckStatusPendingVerification AcknowledgementStatus = "PENDING_VERIFICATION"
)

func (s AcknowledgementStatus) String() string { return string(s) }

func (s AcknowledgementStatus) IsValid() bool {
	switch s {
	case AckStatusAcknowledged, AckStatusRefused, AckStatusPendingVerification:
		return true
	}
	return false
}

// NoticeAcknowledgement is evidence that a notice reached, or was refused by,
// a recipient. One-to-one with a SENT notice.
type NoticeAcknowledgement struct {
	ID                  string                `gorm:"type:uuid;primaryKey"`
	AcknowledgementCode string                `gorm:"type:varchar(32);not null"`
	NoticeID            string                `gorm:"type:uuid;not null"`
	AcknowledgedBy      string                `gorm:"type:varchar(255);not null"`
	AcknowledgementDate time.Time             `gorm:"not null"`
	AcknowledgementMode CommunicationMode     `gorm:"type:varchar(16);not null"`
	ProofDocumentPath   *string               `gorm:"type:varchar(512)"`
	Remarks             *string               `gorm:"type:text"`
	Status              AcknowledgementStatus `gorm:"type:varchar(24);not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (a *NoticeAcknowledgement) Validate() error {
	if strings.TrimSpace(a.NoticeID) == "" {
		return fmt.Errorf("%w: notice id is required", ErrValidation)
	}
	if strings.TrimSpace(a.AcknowledgedBy) == "" {
		return fmt.Errorf("%w: acknowledgedBy is required", ErrValidation)
	}
	if a.AcknowledgementDate.IsZero() {
		return fmt.Errorf("%w: acknowledgement date is required", ErrValidation)
	}
	if !a.AcknowledgementMode.IsValid() {
		return fmt.Errorf("%w: invalid acknowledgement mode %q", ErrValidation, a.AcknowledgementMode)
	}
	return nil
}

// AcknowledgementOutcome maps the acknowledgedBy value onto the
// acknowledgement status and the state-machine event it drives.
func AcknowledgementOutcome(acknowledgedBy string) (AcknowledgementStatus, NoticeEvent) {
	if strings.EqualFold(strings.TrimSpace(acknowledgedBy), AcknowledgedByRefused) {
		return AckStatusRefused, NoticeEventRefused
	}
	return AckStatusPendingVerification, NoticeEventAcknowledgementReceived
}

// ValidateAcknowledgementDate enforces the date window: on/after the notice's
// generation date (day precision) and not after now.
func ValidateAcknowledgementDate(ackDate, generationDate, now time.Time) error {
	genDay := time.Date(generationDate.Year(), generationDate.Month(), generationDate.Day(), 0, 0, 0, 0, generationDate.Location())
	if ackDate.Before(genDay) {
		return fmt.Errorf("%w: acknowledgement date precedes notice generation date", ErrInvalidDateRange)
	}
	if ackDate.After(now) {
		return fmt.Errorf("%w: acknowledgement date is in the future", ErrInvalidDateRange)
	}
	return nil
}
