package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultDispatchTimeout = 10 * time.Second

type dispatchRequest struct {
	To         string `json:"to"`
	Mode       string `json:"mode"`
	NoticeCode string `json:"noticeCode"`
	Content    string `json:"content"`
}

// WebhookDispatch sends notices to a webhook-compatible delivery endpoint.
type WebhookDispatch struct {
	client   *resty.Client
	endpoint string
}

func NewWebhookDispatch(endpoint string) (*WebhookDispatch, error) {
	client := resty.New()
	client.SetTimeout(defaultDispatchTimeout)
	client.SetRetryCount(0)

	return NewWebhookDispatchWithClient(endpoint, client)
}

func NewWebhookDispatchWithClient(endpoint string, client *resty.Client) (*WebhookDispatch, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("dispatch endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid dispatch endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultDispatchTimeout)
	}
	client.SetRetryCount(0)

	return &WebhookDispatch{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (d *WebhookDispatch) Send(ctx context.Context, delivery Delivery) (*DispatchResult, error) {
	if d == nil || d.client == nil {
		return nil, fmt.Errorf("dispatch is not initialized")
	}
	if strings.TrimSpace(delivery.Recipient) == "" {
		return nil, &DispatchError{Message: fmt.Sprintf("no recipient for mode %s", delivery.Mode)}
	}

	reqBody := dispatchRequest{
		To:         delivery.Recipient,
		Mode:       strings.ToLower(delivery.Mode.String()),
		NoticeCode: delivery.NoticeCode,
		Content:    delivery.Content,
	}

	response, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(d.endpoint)
	if err != nil {
		return nil, &DispatchError{
			Message:   "dispatch request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &DispatchError{
			Message:   "dispatch returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	responseBody := strings.TrimSpace(response.String())

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &DispatchResult{
			StatusCode: statusCode,
			Body:       responseBody,
			MessageID:  dispatchMessageID(response),
		}, nil
	}

	return nil, &DispatchError{
		StatusCode: statusCode,
		Message:    dispatchErrorMessage(statusCode, responseBody),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func dispatchErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("dispatch endpoint returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}

func dispatchMessageID(response *resty.Response) string {
	if response == nil {
		return ""
	}

	for _, key := range []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID", "X-Correlation-Id"} {
		if value := strings.TrimSpace(response.Header().Get(key)); value != "" {
			return value
		}
	}

	return ""
}
