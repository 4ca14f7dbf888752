package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultResendBaseURL = "https://api.resend.com"

// Resend sends mail through the Resend HTTP API. Each Send is a single POST;
// a failed send is reported, never repeated.
type Resend struct {
	client *resty.Client
}

func NewResend(apiKey, baseURL string) (*Resend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultResendBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(0)
	return &Resend{client: client}, nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	var out resendResponse
	var apiErr resendError
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(resendRequest{From: msg.From, To: msg.To, Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	if resp.IsError() {
		detail := apiErr.Message
		if detail == "" {
			detail = strings.TrimSpace(resp.String())
		}
		return "", fmt.Errorf("send email: resend status %d: %s", resp.StatusCode(), detail)
	}
	return out.ID, nil
}

var _ Sender = (*Resend)(nil)
