package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// EmailSender delivers a rendered email. Implementations must not retry;
// callers treat a failed send as reported-and-dropped.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html, text string) error
}

type SendGridEmailService struct {
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewSendGridEmailService(apiKey, from string) *SendGridEmailService {
	return &SendGridEmailService{
		apiKey:     apiKey,
		from:       from,
		httpClient: http.DefaultClient,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPayload struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendGridContent `json:"content"`
}

func (s *SendGridEmailService) SendEmail(ctx context.Context, to, subject, html, text string) error {
	payload := sendGridPayload{
		From:    sendGridAddress{Email: s.from},
		Subject: subject,
	}
	payload.Personalizations = []struct {
		To []sendGridAddress `json:"to"`
	}{{To: []sendGridAddress{{Email: to}}}}

	if text != "" {
		payload.Content = append(payload.Content, sendGridContent{Type: "text/plain", Value: text})
	}
	if html != "" {
		payload.Content = append(payload.Content, sendGridContent{Type: "text/html", Value: html})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		"https://api.sendgrid.com/v3/mail/send",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return nil
}

// LogEmailService stands in when no SendGrid key is configured.
type LogEmailService struct{}

func (LogEmailService) SendEmail(_ context.Context, to, subject, _, _ string) error {
	log.Printf("email (mock) to=%s subject=%q", to, subject)
	return nil
}
