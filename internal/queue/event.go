package queue

import (
	"fmt"
	"strings"
	"time"
)

// EventType identifies a case or notice lifecycle transition.
type EventType string

const (
	EventCaseCreated        EventType = "case.created"
	EventCaseAssigned       EventType = "case.assigned"
	EventCaseClosed         EventType = "case.closed"
	EventNoticeGenerated    EventType = "notice.generated"
	EventNoticeSent         EventType = "notice.sent"
	EventNoticeFailed       EventType = "notice.failed"
	EventNoticeAcknowledged EventType = "notice.acknowledged"
	EventNoticeRefused      EventType = "notice.refused"
	EventNoticeExpired      EventType = "notice.expired"
)

func (t EventType) String() string {
	return string(t)
}

func (t EventType) IsValid() bool {
	switch t {
	case EventCaseCreated, EventCaseAssigned, EventCaseClosed,
		EventNoticeGenerated, EventNoticeSent, EventNoticeFailed,
		EventNoticeAcknowledged, EventNoticeRefused, EventNoticeExpired:
		return true
	}
	return false
}

// LifecycleEvent is the broker payload emitted after a workflow transition
// commits. Downstream audit consumers treat it as append-only.
type LifecycleEvent struct {
	EventID           string            `json:"eventId"`
	EventType         EventType         `json:"eventType"`
	OccurredAt        time.Time         `json:"occurredAt"`
	CaseCode          string            `json:"caseCode,omitempty"`
	NoticeCode        string            `json:"noticeCode,omitempty"`
	LoanAccountNumber string            `json:"loanAccountNumber,omitempty"`
	Attributes        map[string]string `json:"attributes,omitempty"`
}

func (e LifecycleEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("eventId is required")
	}
	if !e.EventType.IsValid() {
		return fmt.Errorf("invalid event type %q", e.EventType)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("occurredAt is required")
	}
	return nil
}
