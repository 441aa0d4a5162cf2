// Package sms delivers transactional text messages through an HTTP gateway.
// Verification code delivery uses this path; the codes themselves never leave
// the issuing service in API responses outside sandbox mode.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

// Sender delivers a single message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// HTTPSender posts messages to the configured gateway with one retry on
// transient failure.
type HTTPSender struct {
	baseURL  string
	apiKey   string
	senderID string
	client   *http.Client
	logg     *logger.Logger
}

func NewHTTPSender(cfg config.SMSConfig, logg *logger.Logger) *HTTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSender{
		baseURL:  cfg.ProviderURL,
		apiKey:   cfg.APIKey,
		senderID: cfg.SenderID,
		client:   &http.Client{Timeout: timeout},
		logg:     logg,
	}
}

type sendRequest struct {
	To       string `json:"to"`
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
}

func (s *HTTPSender) Send(ctx context.Context, phone, message string) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(200 * time.Millisecond):
			}
		}
		if lastErr = s.post(ctx, phone, message); lastErr == nil {
			return nil
		}
		s.logg.Warn(ctx, fmt.Sprintf("sms send attempt %d failed: %v", attempt+1, lastErr))
	}
	return fmt.Errorf("sending sms: %w", lastErr)
}

func (s *HTTPSender) post(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(sendRequest{To: phone, SenderID: s.senderID, Message: message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}

// SandboxSender logs instead of sending. Used in development and tests.
type SandboxSender struct {
	logg *logger.Logger
}

func NewSandboxSender(logg *logger.Logger) *SandboxSender {
	return &SandboxSender{logg: logg}
}

func (s *SandboxSender) Send(ctx context.Context, phone, message string) error {
	s.logg.Info(ctx, fmt.Sprintf("sandbox sms to %s: %s", phone, message))
	return nil
}
