// Package session implements the orchestrator state machine:
// single-active-session gating, the pending FIFO queue, and durable
// request/response logging around the oracle client.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/negainoido/icfpc2025/internal/apperr"
	"github.com/negainoido/icfpc2025/internal/oracle"
	"github.com/negainoido/icfpc2025/internal/store"
)

// Orchestrator wires the store and the oracle client together behind
// the select/explore/guess/abort operations. All mutation paths take
// store.Lock to form a single serialisable critical section, so no two
// sessions are ever observed active at once.
type Orchestrator struct {
	store  *store.Store
	oracle *oracle.Client
	clock  func() time.Time
}

// New constructs an Orchestrator over an already-open store and a
// configured oracle client.
func New(st *store.Store, oc *oracle.Client) *Orchestrator {
	return &Orchestrator{store: st, oracle: oc, clock: time.Now}
}

// SelectResult is the response shape for the select operation.
type SelectResult struct {
	SessionID   string
	ProblemName string
	Status      store.Status
}

// Select activates immediately when no session is active, enqueues
// when one is and enqueue=true, or fails with Conflict when one is and
// enqueue=false.
func (o *Orchestrator) Select(ctx context.Context, problemName, userName string, enqueue bool) (SelectResult, error) {
	o.store.Lock()
	defer o.store.Unlock()

	active, err := o.store.ActiveSession(ctx)
	if err != nil {
		return SelectResult{}, apperr.Wrap(apperr.Persistence, "checking for an active session", err)
	}

	if active != nil {
		if !enqueue {
			return SelectResult{}, apperr.New(apperr.Conflict, "a session is already active")
		}
		return o.enqueue(ctx, problemName, userName)
	}
	return o.activate(ctx, problemName, userName)
}

func (o *Orchestrator) enqueue(ctx context.Context, problemName, userName string) (SelectResult, error) {
	id := uuid.NewString()
	now := o.clock()
	sess := store.Session{
		SessionID: id,
		UserName:  userName,
		Status:    store.StatusPending,
		CreatedAt: now,
	}
	if err := o.store.CreateSession(ctx, sess); err != nil {
		return SelectResult{}, apperr.Wrap(apperr.Persistence, "creating pending session", err)
	}
	if err := o.store.EnqueuePending(ctx, store.PendingRequest{
		SessionID:   id,
		ProblemName: problemName,
		CreatedAt:   now,
	}); err != nil {
		return SelectResult{}, apperr.Wrap(apperr.Persistence, "enqueuing pending session", err)
	}
	return SelectResult{SessionID: id, ProblemName: "", Status: store.StatusPending}, nil
}

func (o *Orchestrator) activate(ctx context.Context, problemName, userName string) (SelectResult, error) {
	id := uuid.NewString()
	now := o.clock()
	sess := store.Session{
		SessionID: id,
		UserName:  userName,
		Status:    store.StatusPending,
		CreatedAt: now,
	}
	if err := o.store.CreateSession(ctx, sess); err != nil {
		return SelectResult{}, apperr.Wrap(apperr.Persistence, "creating session", err)
	}

	resp, call, callErr := o.oracle.Select(ctx, problemName)
	if err := o.logCall(ctx, id, call); err != nil {
		return SelectResult{}, err
	}
	if callErr != nil {
		if err := o.store.UpdateStatus(ctx, id, store.StatusFailed, ptrTime(now)); err != nil {
			return SelectResult{}, apperr.Wrap(apperr.Persistence, "marking session failed after upstream error", err)
		}
		return SelectResult{}, apperr.Wrap(apperr.UpstreamError, "upstream select failed", callErr)
	}

	if err := o.store.UpdateStatus(ctx, id, store.StatusActive, nil); err != nil {
		return SelectResult{}, apperr.Wrap(apperr.Persistence, "activating session", err)
	}
	if err := o.store.SetProblemName(ctx, id, problemName); err != nil {
		return SelectResult{}, apperr.Wrap(apperr.Persistence, "recording problem name", err)
	}
	return SelectResult{SessionID: id, ProblemName: resp.ProblemName, Status: store.StatusActive}, nil
}

// ExploreResult is the response shape for the explore operation.
type ExploreResult struct {
	SessionID  string
	Results    [][]int
	QueryCount int
}

// Explore issues a batch of plans against the upstream oracle on behalf
// of the active session resolved from sessionID/userName.
func (o *Orchestrator) Explore(ctx context.Context, sessionID, userName string, plans []string) (ExploreResult, error) {
	o.store.Lock()
	defer o.store.Unlock()

	sess, err := o.resolveActive(ctx, sessionID, userName)
	if err != nil {
		return ExploreResult{}, err
	}

	resp, call, callErr := o.oracle.Explore(ctx, plans)
	if err := o.logCall(ctx, sess.SessionID, call); err != nil {
		return ExploreResult{}, err
	}
	if callErr != nil {
		return ExploreResult{}, apperr.Wrap(apperr.UpstreamError, "upstream explore failed", callErr)
	}
	return ExploreResult{SessionID: sess.SessionID, Results: resp.Results, QueryCount: resp.QueryCount}, nil
}

// GuessResult is the response shape for the guess operation.
type GuessResult struct {
	SessionID string
	Correct   bool
}

// Guess submits a guessed map to the upstream oracle, completes the
// session, and promotes the queue head.
func (o *Orchestrator) Guess(ctx context.Context, sessionID, userName string, guessMap json.RawMessage) (GuessResult, error) {
	o.store.Lock()
	defer o.store.Unlock()

	sess, err := o.resolveActive(ctx, sessionID, userName)
	if err != nil {
		return GuessResult{}, err
	}

	resp, call, callErr := o.oracle.Guess(ctx, guessMap)
	if err := o.logCall(ctx, sess.SessionID, call); err != nil {
		return GuessResult{}, err
	}
	if callErr != nil {
		return GuessResult{}, apperr.Wrap(apperr.UpstreamError, "upstream guess failed", callErr)
	}

	now := o.clock()
	if err := o.store.UpdateStatus(ctx, sess.SessionID, store.StatusCompleted, &now); err != nil {
		return GuessResult{}, apperr.Wrap(apperr.Persistence, "completing session", err)
	}

	if err := o.promotePending(ctx); err != nil {
		return GuessResult{}, err
	}
	return GuessResult{SessionID: sess.SessionID, Correct: resp.Correct}, nil
}

// Abort marks a pending or active session as failed. Only pending or
// active sessions can be aborted, and aborting the active one promotes
// the queue head.
func (o *Orchestrator) Abort(ctx context.Context, sessionID string) error {
	o.store.Lock()
	defer o.store.Unlock()

	sess, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return apperr.Wrap(apperr.Persistence, "looking up session", err)
	}
	if sess == nil {
		return apperr.New(apperr.NotFound, fmt.Sprintf("no session %s", sessionID))
	}
	if sess.Status != store.StatusActive && sess.Status != store.StatusPending {
		return apperr.New(apperr.InputValidation, "session is already inactive")
	}

	wasActive := sess.Status == store.StatusActive
	now := o.clock()
	if err := o.store.UpdateStatus(ctx, sessionID, store.StatusFailed, &now); err != nil {
		return apperr.Wrap(apperr.Persistence, "aborting session", err)
	}
	if sess.Status == store.StatusPending {
		if err := o.store.DequeuePending(ctx, sessionID); err != nil {
			return apperr.Wrap(apperr.Persistence, "removing aborted session from queue", err)
		}
	}
	if wasActive {
		return o.promotePending(ctx)
	}
	return nil
}

// promotePending activates the oldest pending session, replaying its
// stored select payload exactly once. It runs inline, inside the same
// critical section as the terminal transition that triggers it, rather
// than via a background poller, so promotion happens exactly once by
// construction. If the upstream select for the head fails, the head is
// marked failed and the next pending session is tried in its place, so
// a transient upstream failure doesn't strand the rest of the queue.
func (o *Orchestrator) promotePending(ctx context.Context) error {
	head, err := o.store.OldestPending(ctx)
	if err != nil {
		return apperr.Wrap(apperr.Persistence, "reading pending queue head", err)
	}
	if head == nil {
		return nil
	}
	if err := o.store.DequeuePending(ctx, head.SessionID); err != nil {
		return apperr.Wrap(apperr.Persistence, "dequeuing promoted session", err)
	}

	resp, call, callErr := o.oracle.Select(ctx, head.ProblemName)
	if err := o.logCall(ctx, head.SessionID, call); err != nil {
		return err
	}
	now := o.clock()
	if callErr != nil {
		if err := o.failSession(ctx, head.SessionID, now); err != nil {
			return err
		}
		return o.promotePending(ctx)
	}
	if err := o.store.UpdateStatus(ctx, head.SessionID, store.StatusActive, nil); err != nil {
		return apperr.Wrap(apperr.Persistence, "activating promoted session", err)
	}
	return o.store.SetProblemName(ctx, head.SessionID, resp.ProblemName)
}

func (o *Orchestrator) failSession(ctx context.Context, id string, at time.Time) error {
	if err := o.store.UpdateStatus(ctx, id, store.StatusFailed, &at); err != nil {
		return apperr.Wrap(apperr.Persistence, "marking promoted session failed", err)
	}
	return nil
}

// resolveActive resolves a session_ref: an explicit id wins over a
// user_name; at least one must be given; the resolved session must be
// active.
func (o *Orchestrator) resolveActive(ctx context.Context, sessionID, userName string) (*store.Session, error) {
	var sess *store.Session
	var err error
	switch {
	case sessionID != "":
		sess, err = o.store.GetSession(ctx, sessionID)
	case userName != "":
		sess, err = o.store.GetSessionByUserName(ctx, userName)
	default:
		return nil, apperr.New(apperr.InputValidation, "session_ref requires a session_id or user_name")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "resolving session_ref", err)
	}
	if sess == nil || sess.Status != store.StatusActive {
		return nil, apperr.New(apperr.NotFound, "no active session matches session_ref")
	}
	return sess, nil
}

func (o *Orchestrator) logCall(ctx context.Context, sessionID string, call oracle.Call) error {
	if call.Endpoint == "" {
		return nil
	}
	log := store.APILog{
		SessionID:    sessionID,
		Endpoint:     call.Endpoint,
		RequestBody:  call.RequestBody,
		ResponseBody: call.ResponseBody,
		StatusCode:   call.StatusCode,
		CreatedAt:    o.clock(),
	}
	if err := o.store.InsertAPILog(ctx, log); err != nil {
		return apperr.Wrap(apperr.Persistence, "logging upstream call", err)
	}
	return nil
}

func ptrTime(t time.Time) *time.Time { return &t }
