package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	fcm "google.golang.org/api/fcm/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

var ErrInvalidToken = errors.New("fcm_invalid_token")

type Notification struct {
	Title string
	Body  string
}

// Message is a push payload. A nil Notification sends a data-only message.
type Message struct {
	Data         map[string]string
	Notification *Notification
}

type FCMSender struct {
	projectID string
	svc       *fcm.Service
}

// NewFCMSender loads a service account file. projectID defaults to the one in the credentials.
func NewFCMSender(ctx context.Context, projectID, credentialsPath string) (*FCMSender, error) {
	if strings.TrimSpace(credentialsPath) == "" {
		return nil, fmt.Errorf("fcm credentials path required")
	}
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	if projectID == "" {
		var creds struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal(raw, &creds); err != nil {
			return nil, fmt.Errorf("parse fcm credentials: %w", err)
		}
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("fcm project id required")
	}
	svc, err := fcm.NewService(ctx, option.WithCredentialsJSON(raw), option.WithScopes(fcmScope))
	if err != nil {
		return nil, fmt.Errorf("load fcm credentials: %w", err)
	}
	return &FCMSender{projectID: projectID, svc: svc}, nil
}

// NewFCMSenderWithClient sends through client without credentials, for proxies and tests.
func NewFCMSenderWithClient(ctx context.Context, projectID string, client *http.Client) (*FCMSender, error) {
	svc, err := fcm.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("fcm client: %w", err)
	}
	return &FCMSender{projectID: projectID, svc: svc}, nil
}

func (s *FCMSender) Send(ctx context.Context, token string, msg Message) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("fcm token required")
	}
	if s == nil || s.svc == nil {
		return fmt.Errorf("fcm sender not configured")
	}

	m := &fcm.Message{
		Token: token,
		Data:  msg.Data,
		Android: &fcm.AndroidConfig{
			Priority: "HIGH",
		},
	}
	if msg.Notification != nil {
		m.Notification = &fcm.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		}
		m.Apns = &fcm.ApnsConfig{
			Headers: map[string]string{
				"apns-push-type": "alert",
				"apns-priority":  "10",
			},
		}
	}

	parent := "projects/" + s.projectID
	_, err := s.svc.Projects.Messages.Send(parent, &fcm.SendMessageRequest{Message: m}).Context(ctx).Do()
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if unregistered(gerr) {
			return fmt.Errorf("%w: %s", ErrInvalidToken, gerr.Message)
		}
		return fmt.Errorf("fcm send failed: status %d: %s", gerr.Code, gerr.Message)
	}
	return fmt.Errorf("send fcm request: %w", err)
}

func unregistered(gerr *googleapi.Error) bool {
	for _, d := range gerr.Details {
		detail, ok := d.(map[string]any)
		if ok && detail["errorCode"] == "UNREGISTERED" {
			return true
		}
	}
	return false
}
