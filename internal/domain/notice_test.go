package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNextNoticeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current NoticeStatus
		event   NoticeEvent
		want    NoticeStatus
		wantErr bool
	}{
		{name: "draft dispatched", current: NoticeStatusDraft, event: NoticeEventDispatched, want: NoticeStatusSent},
		{name: "generated dispatched", current: NoticeStatusGenerated, event: NoticeEventDispatched, want: NoticeStatusSent},
		{name: "generated dispatch failed", current: NoticeStatusGenerated, event: NoticeEventDispatchFailed, want: NoticeStatusFailed},
		{name: "sent refused", current: NoticeStatusSent, event: NoticeEventRefused, want: NoticeStatusRefused},
		{name: "sent acknowledged", current: NoticeStatusSent, event: NoticeEventAcknowledgementReceived, want: NoticeStatusPendingVerification},
		{name: "sent expired", current: NoticeStatusSent, event: NoticeEventExpired, want: NoticeStatusExpired},
		{name: "pending verified", current: NoticeStatusPendingVerification, event: NoticeEventVerified, want: NoticeStatusAcknowledged},
		{name: "draft acknowledged rejected", current: NoticeStatusDraft, event: NoticeEventAcknowledgementReceived, wantErr: true},
		{name: "sent dispatched again rejected", current: NoticeStatusSent, event: NoticeEventDispatched, wantErr: true},
		{name: "terminal refused rejected", current: NoticeStatusRefused, event: NoticeEventVerified, wantErr: true},
		{name: "expired acknowledged rejected", current: NoticeStatusExpired, event: NoticeEventAcknowledgementReceived, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NextNoticeStatus(tt.current, tt.event)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Fatalf("NextNoticeStatus() error = %v, want ErrInvalidState", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NextNoticeStatus() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("NextNoticeStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNoticeStatusIsTerminal(t *testing.T) {
	t.Parallel()

	terminal := []NoticeStatus{NoticeStatusAcknowledged, NoticeStatusRefused, NoticeStatusFailed, NoticeStatusExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}

	open := []NoticeStatus{NoticeStatusDraft, NoticeStatusGenerated, NoticeStatusSent, NoticeStatusPendingVerification}
	for _, s := range open {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestParseNoticeStatusFromString(t *testing.T) {
	t.Parallel()

	got, err := ParseNoticeStatusFromString(" pending verification ")
	if err != nil {
		t.Fatalf("ParseNoticeStatusFromString() unexpected error = %v", err)
	}
	if got != NoticeStatusPendingVerification {
		t.Fatalf("ParseNoticeStatusFromString() = %s, want %s", got, NoticeStatusPendingVerification)
	}

	if _, err := ParseNoticeStatusFromString("mailed"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseNoticeStatusFromString() error = %v, want ErrValidation", err)
	}
}

func TestLegalNoticeValidate(t *testing.T) {
	t.Parallel()

	valid := LegalNotice{
		LoanAccountNumber:  "LN4567890",
		DPDDays:            62,
		TriggerType:        TriggerDPDThreshold,
		CommunicationModes: []CommunicationMode{ModeEmail, ModeSMS},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	noModes := valid
	noModes.CommunicationModes = nil
	if err := noModes.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() without modes error = %v, want ErrValidation", err)
	}

	dupModes := valid
	dupModes.CommunicationModes = []CommunicationMode{ModeEmail, ModeEmail}
	if err := dupModes.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() with duplicate modes error = %v, want ErrValidation", err)
	}

	badTrigger := valid
	badTrigger.TriggerType = "WHIM"
	if err := badTrigger.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() with bad trigger error = %v, want ErrValidation", err)
	}
}

func TestAcknowledgementOutcome(t *testing.T) {
	t.Parallel()

	status, event := AcknowledgementOutcome("Refused")
	if status != AckStatusRefused || event != NoticeEventRefused {
		t.Fatalf("AcknowledgementOutcome(Refused) = (%s, %s), want (REFUSED, REFUSED)", status, event)
	}

	status, event = AcknowledgementOutcome(" refused ")
	if status != AckStatusRefused || event != NoticeEventRefused {
		t.Fatalf("AcknowledgementOutcome with whitespace/case = (%s, %s), want refusal", status, event)
	}

	status, event = AcknowledgementOutcome("Borrower")
	if status != AckStatusPendingVerification || event != NoticeEventAcknowledgementReceived {
		t.Fatalf("AcknowledgementOutcome(Borrower) = (%s, %s), want pending verification", status, event)
	}
}

func TestValidateAcknowledgementDate(t *testing.T) {
	t.Parallel()

	generation := time.Date(2025, 7, 21, 10, 30, 0, 0, time.UTC)
	now := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)

	// Same calendar day as generation is allowed even before the generation instant.
	sameDay := time.Date(2025, 7, 21, 8, 0, 0, 0, time.UTC)
	if err := ValidateAcknowledgementDate(sameDay, generation, now); err != nil {
		t.Fatalf("ValidateAcknowledgementDate(same day) unexpected error = %v", err)
	}

	before := time.Date(2025, 7, 20, 23, 0, 0, 0, time.UTC)
	if err := ValidateAcknowledgementDate(before, generation, now); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("ValidateAcknowledgementDate(before generation) error = %v, want ErrInvalidDateRange", err)
	}

	future := now.Add(time.Hour)
	if err := ValidateAcknowledgementDate(future, generation, now); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("ValidateAcknowledgementDate(future) error = %v, want ErrInvalidDateRange", err)
	}
}
