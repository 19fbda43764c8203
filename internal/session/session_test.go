package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/negainoido/icfpc2025/internal/apperr"
	"github.com/negainoido/icfpc2025/internal/oracle"
	"github.com/negainoido/icfpc2025/internal/store"
)

func newTestOrchestrator(t *testing.T, handler http.HandlerFunc) (*Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oc := oracle.New(srv.URL, "team-1")
	return New(st, oc), st
}

func fakeUpstream(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/select":
			json.NewEncoder(w).Encode(map[string]string{"problemName": "probatio"})
		case "/explore":
			json.NewEncoder(w).Encode(map[string]any{"results": [][]int{{0, 1}}, "queryCount": 1})
		case "/guess":
			json.NewEncoder(w).Encode(map[string]any{"correct": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestSelectActivatesWhenNoneActive(t *testing.T) {
	o, _ := newTestOrchestrator(t, fakeUpstream(t))
	res, err := o.Select(context.Background(), "probatio", "alice", false)
	require.NoError(t, err)
	require.Equal(t, store.StatusActive, res.Status)
	require.Equal(t, "probatio", res.ProblemName)
}

func TestSelectWithoutEnqueueConflictsWhenActive(t *testing.T) {
	o, _ := newTestOrchestrator(t, fakeUpstream(t))
	ctx := context.Background()
	_, err := o.Select(ctx, "probatio", "alice", false)
	require.NoError(t, err)

	_, err = o.Select(ctx, "primus", "bob", false)
	require.True(t, apperr.Is(err, apperr.Conflict), "expected a conflict error, got %v", err)
}

func TestSelectWithEnqueueCreatesPendingSession(t *testing.T) {
	o, _ := newTestOrchestrator(t, fakeUpstream(t))
	ctx := context.Background()
	_, err := o.Select(ctx, "probatio", "alice", false)
	require.NoError(t, err)

	res, err := o.Select(ctx, "primus", "bob", true)
	require.NoError(t, err)
	require.Equal(t, store.StatusPending, res.Status)
	require.Empty(t, res.ProblemName, "a pending session should not carry a problemName yet")
}

func TestExploreByUserNameResolvesActiveSessionOverNewerPendingOne(t *testing.T) {
	o, _ := newTestOrchestrator(t, fakeUpstream(t))
	ctx := context.Background()

	active, err := o.Select(ctx, "probatio", "alice", false)
	require.NoError(t, err)
	_, err = o.Select(ctx, "primus", "alice", true)
	require.NoError(t, err, "alice can enqueue a second request behind her own active session")

	res, err := o.Explore(ctx, "", "alice", []string{"0"})
	require.NoError(t, err, "user_name should resolve to alice's active session, not her newer pending one")
	require.Equal(t, active.SessionID, res.SessionID)
}

func TestExploreRequiresSessionRef(t *testing.T) {
	o, _ := newTestOrchestrator(t, fakeUpstream(t))
	_, err := o.Explore(context.Background(), "", "", []string{"0"})
	require.True(t, apperr.Is(err, apperr.InputValidation), "expected input-validation error, got %v", err)
}

func TestExploreAgainstUnknownSessionIsNotFound(t *testing.T) {
	o, _ := newTestOrchestrator(t, fakeUpstream(t))
	_, err := o.Explore(context.Background(), "no-such-id", "", []string{"0"})
	require.True(t, apperr.Is(err, apperr.NotFound), "expected not-found error, got %v", err)
}

func TestGuessCompletesSessionAndPromotesQueue(t *testing.T) {
	o, st := newTestOrchestrator(t, fakeUpstream(t))
	ctx := context.Background()

	active, err := o.Select(ctx, "probatio", "alice", false)
	require.NoError(t, err)
	pending, err := o.Select(ctx, "primus", "bob", true)
	require.NoError(t, err)

	guessRes, err := o.Guess(ctx, active.SessionID, "", json.RawMessage(`{"rooms":[0]}`))
	require.NoError(t, err)
	require.True(t, guessRes.Correct, "expected the fake upstream to report correct=true")

	completed, err := st.GetSession(ctx, active.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.StatusCompleted, completed.Status)

	promoted, err := st.GetSession(ctx, pending.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.StatusActive, promoted.Status, "pending session should have been promoted")
}

func TestAbortActiveSessionPromotesQueue(t *testing.T) {
	o, st := newTestOrchestrator(t, fakeUpstream(t))
	ctx := context.Background()

	active, err := o.Select(ctx, "probatio", "alice", false)
	require.NoError(t, err)
	pending, err := o.Select(ctx, "primus", "bob", true)
	require.NoError(t, err)

	require.NoError(t, o.Abort(ctx, active.SessionID))

	aborted, err := st.GetSession(ctx, active.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.StatusFailed, aborted.Status)

	promoted, err := st.GetSession(ctx, pending.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.StatusActive, promoted.Status, "pending session should have been promoted")

	current, err := o.GetCurrentActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	require.Equal(t, pending.SessionID, current.SessionID)
}

func TestPromotionSkipsPendingSessionsThatFailUpstreamSelect(t *testing.T) {
	upstream := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/select":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["problemName"] == "primus" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"problemName": body["problemName"]})
		case "/guess":
			json.NewEncoder(w).Encode(map[string]any{"correct": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	o, st := newTestOrchestrator(t, upstream)
	ctx := context.Background()

	active, err := o.Select(ctx, "probatio", "alice", false)
	require.NoError(t, err)
	flaky, err := o.Select(ctx, "primus", "bob", true)
	require.NoError(t, err)
	healthy, err := o.Select(ctx, "secundus", "carol", true)
	require.NoError(t, err)

	_, err = o.Guess(ctx, active.SessionID, "", json.RawMessage(`{}`))
	require.NoError(t, err, "completing the active session should promote the queue")

	failed, err := st.GetSession(ctx, flaky.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.StatusFailed, failed.Status, "the pending session whose upstream select fails should be marked failed")

	promoted, err := st.GetSession(ctx, healthy.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.StatusActive, promoted.Status, "the next pending session should be tried and activated in the failed one's place")
}

func TestAbortingInactiveSessionFails(t *testing.T) {
	o, _ := newTestOrchestrator(t, fakeUpstream(t))
	ctx := context.Background()
	active, err := o.Select(ctx, "probatio", "alice", false)
	require.NoError(t, err)
	_, err = o.Guess(ctx, active.SessionID, "", json.RawMessage(`{}`))
	require.NoError(t, err)

	err = o.Abort(ctx, active.SessionID)
	require.True(t, apperr.Is(err, apperr.InputValidation), "expected input-validation aborting a completed session, got %v", err)
}
