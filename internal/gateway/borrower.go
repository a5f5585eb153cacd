package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/collections-engine/internal/domain"
)

const defaultBorrowerTimeout = 5 * time.Second

type borrowerResponse struct {
	LoanAccountNumber string `json:"loanAccountNumber"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
}

// HTTPBorrowerLookup resolves borrowers from the loan-servicing API.
type HTTPBorrowerLookup struct {
	client  *resty.Client
	baseURL string
}

func NewHTTPBorrowerLookup(baseURL string) (*HTTPBorrowerLookup, error) {
	client := resty.New()
	client.SetTimeout(defaultBorrowerTimeout)
	client.SetRetryCount(0)

	return NewHTTPBorrowerLookupWithClient(baseURL, client)
}

func NewHTTPBorrowerLookupWithClient(baseURL string, client *resty.Client) (*HTTPBorrowerLookup, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("borrower api url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid borrower api url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	return &HTTPBorrowerLookup{
		client:  client,
		baseURL: trimmed,
	}, nil
}

func (l *HTTPBorrowerLookup) GetByLoanAccount(ctx context.Context, accountNumber string) (*Borrower, error) {
	if l == nil || l.client == nil {
		return nil, fmt.Errorf("borrower lookup is not initialized")
	}

	trimmed := strings.TrimSpace(accountNumber)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: loan account number is required", domain.ErrValidation)
	}

	var body borrowerResponse
	response, err := l.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("%s/borrowers/%s", l.baseURL, url.PathEscape(trimmed)))
	if err != nil {
		return nil, fmt.Errorf("%w: borrower lookup failed: %v", domain.ErrExternalDependency, err)
	}

	switch {
	case response.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: borrower for account %s", domain.ErrNotFound, trimmed)
	case response.StatusCode() >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("%w: borrower lookup returned status %d", domain.ErrExternalDependency, response.StatusCode())
	}

	return &Borrower{
		LoanAccountNumber: body.LoanAccountNumber,
		Name:              body.Name,
		Email:             body.Email,
		Phone:             body.Phone,
		Address:           body.Address,
	}, nil
}
