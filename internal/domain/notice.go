package domain

import (
	"fmt"
	"strings"
	"time"
)

// NoticeStatus represents the lifecycle state of a legal notice.
type NoticeStatus string

const (
	NoticeStatusDraft               NoticeStatus = "DRAFT"
	NoticeStatusGenerated           NoticeStatus = "GENERATED"
	NoticeStatusSent                NoticeStatus = "SENT"
	NoticeStatusAcknowledged        NoticeStatus = "ACKNOWLEDGED"
	NoticeStatusRefused             NoticeStatus = "REFUSED"
	NoticeStatusPendingVerification NoticeStatus = "PENDING_VERIFICATION"
	NoticeStatusFailed              NoticeStatus = "FAILED"
	NoticeStatusExpired             NoticeStatus = "EXPIRED"
)

func (s NoticeStatus) String() string { return string(s) }

func (s NoticeStatus) IsValid() bool {
	switch s {
	case NoticeStatusDraft, NoticeStatusGenerated, NoticeStatusSent,
		NoticeStatusAcknowledged, NoticeStatusRefused, NoticeStatusPendingVerification,
		NoticeStatusFailed, NoticeStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s NoticeStatus) IsTerminal() bool {
	switch s {
	case NoticeStatusAcknowledged, NoticeStatusRefused, NoticeStatusFailed, NoticeStatusExpired:
		return true
	}
	return false
}

func ParseNoticeStatusFromString(s string) (NoticeStatus, error) {
	st := NoticeStatus(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid notice status %q", ErrValidation, s)
	}
	return st, nil
}

// NoticeEvent is an input to the notice state machine.
type NoticeEvent string

const (
	// NoticeEventDispatched fires when at least one communication mode delivered.
	NoticeEventDispatched NoticeEvent = "DISPATCHED"
	// NoticeEventDispatchFailed fires when every communication mode failed.
	NoticeEventDispatchFailed NoticeEvent = "DISPATCH_FAILED"
	// NoticeEventRefused fires when an acknowledgement records an outright refusal.
	NoticeEventRefused NoticeEvent = "REFUSED"
	// NoticeEventAcknowledgementReceived fires when any non-refusal acknowledgement lands.
	NoticeEventAcknowledgementReceived NoticeEvent = "ACKNOWLEDGEMENT_RECEIVED"
	// NoticeEventVerified fires when manual verification confirms a pending acknowledgement.
	NoticeEventVerified NoticeEvent = "VERIFIED"
	// NoticeEventExpired fires when the expiry date passes with no acknowledgement.
	NoticeEventExpired NoticeEvent = "EXPIRED"
)

// NextNoticeStatus is the single transition function of the notice lifecycle.
// Undefined (status, event) pairs are rejected with ErrInvalidState, so a
// status can only change along the table below:
//
//	DRAFT/GENERATED --DISPATCHED-------------> SENT
//	DRAFT/GENERATED --DISPATCH_FAILED--------> FAILED
//	SENT            --REFUSED----------------> REFUSED
//	SENT            --ACKNOWLEDGEMENT_RECEIVED-> PENDING_VERIFICATION
//	SENT            --EXPIRED----------------> EXPIRED
//	PENDING_VERIFICATION --VERIFIED----------> ACKNOWLEDGED
func NextNoticeStatus(current NoticeStatus, event NoticeEvent) (NoticeStatus, error) {
	switch current {
	case NoticeStatusDraft, NoticeStatusGenerated:
		switch event {
		case NoticeEventDispatched:
			return NoticeStatusSent, nil
		case NoticeEventDispatchFailed:
			return NoticeStatusFailed, nil
		}
	case NoticeStatusSent:
		switch event {
		case NoticeEventRefused:
			return NoticeStatusRefused, nil
		case NoticeEventAcknowledgementReceived:
			return NoticeStatusPendingVerification, nil
		case NoticeEventExpired:
			return NoticeStatusExpired, nil
		}
	case NoticeStatusPendingVerification:
		if event == NoticeEventVerified {
			return NoticeStatusAcknowledged, nil
		}
	}
	return "", fmt.Errorf("%w: event %s not allowed from notice status %s", ErrInvalidState, event, current)
}

// CommunicationMode is a delivery channel for a notice.
type CommunicationMode string

const (
	ModeEmail    CommunicationMode = "EMAIL"
	ModeSMS      CommunicationMode = "SMS"
	ModeWhatsApp CommunicationMode = "WHATSAPP"
	ModePost     CommunicationMode = "POST"
	ModeCourier  CommunicationMode = "COURIER"
)

func (m CommunicationMode) String() string { return string(m) }

func (m CommunicationMode) IsValid() bool {
	switch m {
	case ModeEmail, ModeSMS, ModeWhatsApp, ModePost, ModeCourier:
		return true
	}
	return false
}

func ParseCommunicationModeFromString(s string) (CommunicationMode, error) {
	m := CommunicationMode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: invalid communication mode %q", ErrValidation, s)
	}
	return m, nil
}

// TriggerType records what prompted a notice.
type TriggerType string

const (
	TriggerManual       TriggerType = "MANUAL"
	TriggerDPDThreshold TriggerType = "DPD_THRESHOLD"
	TriggerLegalEscal   TriggerType = "LEGAL_ESCALATION"
)

func (t TriggerType) String() string { return string(t) }

func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerManual, TriggerDPDThreshold, TriggerLegalEscal:
		return true
	}
	return false
}

func ParseTriggerTypeFromString(s string) (TriggerType, error) {
	t := TriggerType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid trigger type %q", ErrValidation, s)
	}
	return t, nil
}

// LegalNotice is a pre-legal/legal notice issued against a loan account.
type LegalNotice struct {
	ID                   string              `gorm:"type:uuid;primaryKey"`
	NoticeCode           string              `gorm:"type:varchar(32);not null"`
	CaseID               *string             `gorm:"type:uuid"`
	LoanAccountNumber    string              `gorm:"type:varchar(64);not null"`
	BorrowerName         string              `gorm:"type:varchar(255)"`
	DPDDays              int                 `gorm:"not null"`
	TriggerType          TriggerType         `gorm:"type:varchar(32);not null"`
	CommunicationModes   []CommunicationMode `gorm:"-"`
	Content              string              `gorm:"type:text"`
	NoticeGenerationDate time.Time           `gorm:"type:date;not null"`
	ExpiryDate           *time.Time          `gorm:"type:date"`
	Status               NoticeStatus        `gorm:"type:varchar(24);not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (n *LegalNotice) Validate() error {
	if strings.TrimSpace(n.LoanAccountNumber) == "" {
		return fmt.Errorf("%w: loan account number is required", ErrValidation)
	}
	if n.DPDDays < 0 {
		return fmt.Errorf("%w: dpdDays must be >= 0", ErrValidation)
	}
	if !n.TriggerType.IsValid() {
		return fmt.Errorf("%w: invalid trigger type %q", ErrValidation, n.TriggerType)
	}
	if len(n.CommunicationModes) == 0 {
		return fmt.Errorf("%w: at least one communication mode is required", ErrValidation)
	}
	seen := make(map[CommunicationMode]struct{}, len(n.CommunicationModes))
	for _, mode := range n.CommunicationModes {
		if !mode.IsValid() {
			return fmt.Errorf("%w: invalid communication mode %q", ErrValidation, mode)
		}
		if _, dup := seen[mode]; dup {
			return fmt.Errorf("%w: duplicate communication mode %q", ErrValidation, mode)
		}
		seen[mode] = struct{}{}
	}
	if n.Status != "" && !n.Status.IsValid() {
		return fmt.Errorf("%w: invalid notice status %q", ErrValidation, n.Status)
	}
	return nil
}
