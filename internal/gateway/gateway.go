package gateway

import (
	"context"

	"github.com/kursadbilgin/collections-engine/internal/domain"
)

// Borrower is the master-data view of a delinquent account's holder.
type Borrower struct {
	LoanAccountNumber string
	Name              string
	Email             string
	Phone             string
	Address           string
}

// Contact returns the recipient address for one communication mode.
func (b Borrower) Contact(mode domain.CommunicationMode) string {
	switch mode {
	case domain.ModeEmail:
		return b.Email
	case domain.ModeSMS, domain.ModeWhatsApp:
		return b.Phone
	case domain.ModePost, domain.ModeCourier:
		return b.Address
	}
	return ""
}

// BorrowerLookup resolves a loan account to borrower contact details.
type BorrowerLookup interface {
	GetByLoanAccount(ctx context.Context, accountNumber string) (*Borrower, error)
}

// Delivery is one outbound notice transmission through a single mode.
type Delivery struct {
	NoticeCode string
	Mode       domain.CommunicationMode
	Recipient  string
	Content    string
}

// DispatchResult stores dispatch call metadata for audit and persistence.
type DispatchResult struct {
	StatusCode int
	Body       string
	MessageID  string
}

// NotificationDispatch is the outbound notice delivery port.
type NotificationDispatch interface {
	Send(ctx context.Context, delivery Delivery) (*DispatchResult, error)
}

// DocumentMetadata describes a stored proof document.
type DocumentMetadata struct {
	FileName    string
	ContentType string
	NoticeCode  string
}

// DocumentStorage persists proof documents attached to acknowledgements.
// The core treats the stored path as opaque.
type DocumentStorage interface {
	Store(ctx context.Context, content []byte, meta DocumentMetadata) (string, error)
}
