package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSelectSendsTeamIDAndParsesResponse(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"problemName": "probatio"})
	}))
	defer srv.Close()

	c := New(srv.URL, "team-123")
	resp, call, err := c.Select(context.Background(), "probatio")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if gotPath != "/select" {
		t.Fatalf("expected path /select, got %s", gotPath)
	}
	if gotBody["id"] != "team-123" || gotBody["problemName"] != "probatio" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if resp.ProblemName != "probatio" {
		t.Fatalf("expected problemName probatio, got %s", resp.ProblemName)
	}
	if call.StatusCode != 200 {
		t.Fatalf("expected call to record status 200, got %d", call.StatusCode)
	}
}

func TestNonOKStatusReturnsOracleError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream unavailable"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "team-123")
	_, call, err := c.Explore(context.Background(), []string{"012"})
	if err == nil {
		t.Fatal("expected an error for a 502 response")
	}
	oe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *oracle.Error, got %T", err)
	}
	if oe.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", oe.StatusCode)
	}
	if call.ResponseBody == "" {
		t.Fatal("expected the Call to carry the response body even on failure")
	}
}

func TestRegisterSetsTeamID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "fresh-id"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, _, err := c.Register(context.Background(), "team", "go", "team@example.org"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if c.teamID != "fresh-id" {
		t.Fatalf("expected teamID to be set from the register response, got %q", c.teamID)
	}
}
