package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/negainoido/icfpc2025/internal/apperr"
	"github.com/negainoido/icfpc2025/internal/store"
)

// ListSessions returns every session, newest first.
func (o *Orchestrator) ListSessions(ctx context.Context) ([]store.Session, error) {
	sessions, err := o.store.ListSessions(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "listing sessions", err)
	}
	return sessions, nil
}

// GetCurrentActive returns the active session, or nil if none exists.
func (o *Orchestrator) GetCurrentActive(ctx context.Context) (*store.Session, error) {
	sess, err := o.store.ActiveSession(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "reading active session", err)
	}
	return sess, nil
}

// SessionDetail bundles a session with its call log, the shape
// GET /api/sessions/{id} returns.
type SessionDetail struct {
	Session store.Session  `json:"session"`
	APILogs []store.APILog `json:"api_logs"`
}

// GetSession fetches a session plus its associated call log.
func (o *Orchestrator) GetSession(ctx context.Context, id string) (*SessionDetail, error) {
	sess, err := o.store.GetSession(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "looking up session", err)
	}
	if sess == nil {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("no session %s", id))
	}
	logs, err := o.store.APILogsForSession(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "loading session call log", err)
	}
	return &SessionDetail{Session: *sess, APILogs: logs}, nil
}

// ExportSession produces the normalised JSON dump for the export
// endpoint: the session record plus its full call log, in one
// self-contained document a user can archive or hand to a teammate.
func (o *Orchestrator) ExportSession(ctx context.Context, id string) (json.RawMessage, error) {
	detail, err := o.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.Invariant, "marshalling session export", err)
	}
	return data, nil
}
