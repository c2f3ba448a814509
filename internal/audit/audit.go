// Package audit writes a file-based trail of security-relevant events:
// logins, registrations, federated logins, and post deletions. Events are
// recorded in the background and failures are logged, never user-visible.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Event actions
const (
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionRegister       = "register"
	ActionFederatedLogin = "federated_login"
	ActionPostDeleted    = "post_deleted"
)

// Event is a single audit record, persisted as one JSON file.
type Event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Action   string    `json:"action"`
	UserID   uint      `json:"user_id,omitempty"`
	Username string    `json:"username,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Recorder persists audit events as JSON files with UUID4 filenames.
type Recorder struct {
	AuditDir string
}

// NewRecorder creates a recorder writing into auditDir.
func NewRecorder(auditDir string) *Recorder {
	return &Recorder{AuditDir: auditDir}
}

// Record writes an event synchronously.
func (r *Recorder) Record(event Event) error {
	if err := r.ensureAuditDir(); err != nil {
		return fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	event.ID = uuid.New().String()
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	path := filepath.Join(r.AuditDir, event.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write audit file: %w", err)
	}
	return nil
}

// RecordAsync writes an event in the background (non-blocking).
func (r *Recorder) RecordAsync(event Event) {
	go func() {
		if err := r.Record(event); err != nil {
			log.Printf("Failed to record audit event: %v", err)
		}
	}()
}

// LoginSucceeded records a successful local login.
func (r *Recorder) LoginSucceeded(userID uint, username string) {
	r.RecordAsync(Event{Action: ActionLogin, UserID: userID, Username: username})
}

// LoginFailed records a rejected local login. Only the attempted username
// is kept; the reason is deliberately not distinguished.
func (r *Recorder) LoginFailed(username string) {
	r.RecordAsync(Event{Action: ActionLoginFailed, Username: username})
}

// UserRegistered records a new local account.
func (r *Recorder) UserRegistered(userID uint, username string) {
	r.RecordAsync(Event{Action: ActionRegister, UserID: userID, Username: username})
}

// FederatedLogin records a login via an identity provider.
func (r *Recorder) FederatedLogin(userID uint, username, provider string) {
	r.RecordAsync(Event{Action: ActionFederatedLogin, UserID: userID, Username: username, Detail: provider})
}

// PostDeleted records a post deletion and by whom.
func (r *Recorder) PostDeleted(userID uint, username string, postID uint) {
	r.RecordAsync(Event{Action: ActionPostDeleted, UserID: userID, Username: username, Detail: fmt.Sprintf("post %d", postID)})
}

func (r *Recorder) ensureAuditDir() error {
	if _, err := os.Stat(r.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(r.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
