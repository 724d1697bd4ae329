package error

import (
	"fmt"
	"net/http"
)

type WebhookError struct {
	URL    string
	Status int
	Cause  string
}

func (err WebhookError) Error() string {
	if err.Status > 0 {
		return fmt.Sprintf("webhook %s responded with status %d", err.URL, err.Status)
	}
	return fmt.Sprintf("webhook %s failed: %s", err.URL, err.Cause)
}

func (err WebhookError) ErrCode() string {
	return "WEBHOOK_ERROR"
}

func (err WebhookError) StatusCode() int {
	return http.StatusBadGateway
}
