// Package audit records security and business events. Every event is
// written to the structured log with log_type=audit and, when a Store is
// configured, appended to durable storage.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"peegflow/pkg/platform/privacy"
	"peegflow/pkg/requestcontext"
)

// Action names an audited event.
type Action string

const (
	ActionLoginSucceeded       Action = "auth.login_succeeded"
	ActionLoginFailed          Action = "auth.login_failed"
	ActionLoginLocked          Action = "auth.login_locked"
	ActionPasswordRehashed     Action = "auth.password_rehashed"
	ActionPlatformLogin        Action = "platform.login_succeeded"
	ActionPlatformLoginFailed  Action = "platform.login_failed"
	ActionPracticeRegistered   Action = "tenant.registered"
	ActionTenantCreated        Action = "tenant.created"
	ActionTenantUpdated        Action = "tenant.updated"
	ActionSlotsGenerated       Action = "appointment.slots_generated"
	ActionAppointmentBooked    Action = "appointment.booked"
	ActionAppointmentCanceled  Action = "appointment.canceled"
	ActionAppointmentStatusSet Action = "appointment.status_set"
	ActionPatientCreated       Action = "patient.created"
	ActionPatientDeleted       Action = "patient.deleted"
	ActionPatientAccessRevoked Action = "patient.access_revoked"
	ActionPatientAccessGranted Action = "patient.access_granted"
	ActionSessionNoteLocked    Action = "session_note.locked"
	ActionSessionNoteExported  Action = "session_note.exported"
	ActionExpenseCreated       Action = "finance.expense_created"
	ActionExpenseDeleted       Action = "finance.expense_deleted"
)

// Event is one audited action. TenantID is empty for platform actions.
type Event struct {
	Timestamp time.Time
	Action    Action
	TenantID  string
	ActorID   string
	Subject   string
	Reason    string
	RequestID string
	ClientIP  string
	// Device is a coarse user agent label. It is logged but not stored.
	Device string
}

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Logger writes audit events to slog and optionally to a Store.
type Logger struct {
	text  *slog.Logger
	store Store
}

func NewLogger(text *slog.Logger, store Store) *Logger {
	return &Logger{text: text, store: store}
}

// Log fills request-scoped fields on e and records it. A store failure is
// logged and swallowed so auditing never fails the business operation.
func (l *Logger) Log(ctx context.Context, e Event) {
	if l == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = privacy.AnonymizeIP(requestcontext.ClientIP(ctx))
	}

	if l.text != nil {
		args := []any{
			"event", string(e.Action),
			"log_type", "audit",
			"request_id", e.RequestID,
			"client_ip", e.ClientIP,
		}
		if e.TenantID != "" {
			args = append(args, "tenant_id", e.TenantID)
		}
		if e.ActorID != "" {
			args = append(args, "actor_id", e.ActorID)
		}
		if e.Subject != "" {
			args = append(args, "subject", e.Subject)
		}
		if e.Reason != "" {
			args = append(args, "reason", e.Reason)
		}
		if e.Device != "" {
			args = append(args, "device", e.Device)
		}
		l.text.InfoContext(ctx, string(e.Action), args...)
	}

	if l.store == nil {
		return
	}
	if err := l.store.Append(ctx, e); err != nil && l.text != nil {
		l.text.ErrorContext(ctx, "failed to append audit event",
			"error", err,
			"event", string(e.Action),
		)
	}
}

// MemoryStore keeps events in process. Used by tests and the in-memory
// deployment mode.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *MemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Actions returns the recorded actions in order.
func (s *MemoryStore) Actions() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Action, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}
