package federation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mammut-social/mammut/domain"
)

func TestProxyDoForwardsWithCredential(t *testing.T) {
	var gotUser, gotPass string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"detail":"hello"}`))
	}))
	defer upstream.Close()

	database := setupTestDB(t)
	registry := NewNodeRegistry(database)
	upstreamHost := upstream.Listener.Addr().String()
	if err := database.SaveNode(&domain.Node{
		Host:            upstreamHost,
		SendingUsername: "node1user",
		SendingPassword: "node1pass",
	}); err != nil {
		t.Fatalf("SaveNode failed: %v", err)
	}

	proxy := NewProxy(registry)
	status, body, err := proxy.Do(upstream.URL+"/authors", http.MethodGet, nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	// Status and body pass through verbatim
	if status != http.StatusTeapot {
		t.Errorf("Expected upstream status 418, got %d", status)
	}
	if string(body) != `{"detail":"hello"}` {
		t.Errorf("Unexpected body '%s'", body)
	}
	if gotUser != "node1user" || gotPass != "node1pass" {
		t.Errorf("Expected sending credential, got %s:%s", gotUser, gotPass)
	}
}

func TestProxyDoNoCredentialNeverCallsOut(t *testing.T) {
	var calls int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer upstream.Close()

	database := setupTestDB(t)
	registry := NewNodeRegistry(database)

	proxy := NewProxy(registry)
	_, _, err := proxy.Do(upstream.URL+"/authors", http.MethodGet, nil)
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("Expected ErrNoCredential, got %v", err)
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Error("Proxy must not call out without a credential")
	}
}

func TestProxyDoNonJSONUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer upstream.Close()

	database := setupTestDB(t)
	registry := NewNodeRegistry(database)
	if err := database.SaveNode(&domain.Node{
		Host:            upstream.Listener.Addr().String(),
		SendingUsername: "node1user",
		SendingPassword: "node1pass",
	}); err != nil {
		t.Fatalf("SaveNode failed: %v", err)
	}

	proxy := NewProxy(registry)
	_, _, err := proxy.Do(upstream.URL+"/authors", http.MethodGet, nil)
	if !errors.Is(err, ErrBadUpstream) {
		t.Errorf("Expected ErrBadUpstream, got %v", err)
	}
}

func TestProxyDoUnreachableUpstream(t *testing.T) {
	database := setupTestDB(t)
	registry := NewNodeRegistry(database)
	if err := database.SaveNode(&domain.Node{
		Host:            "127.0.0.1:1",
		SendingUsername: "node1user",
		SendingPassword: "node1pass",
	}); err != nil {
		t.Fatalf("SaveNode failed: %v", err)
	}

	proxy := NewProxy(registry)
	_, _, err := proxy.Do("http://127.0.0.1:1/authors", http.MethodGet, nil)
	if !errors.Is(err, ErrBadUpstream) {
		t.Errorf("Expected ErrBadUpstream for unreachable peer, got %v", err)
	}
}
