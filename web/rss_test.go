package web

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/federation"
)

func TestFeedListsOnlyPublicPosts(t *testing.T) {
	s, engine := newTestServer(t)
	author := createSessionAuthor(t, s, "alice", "secret", "Alice")

	createPostHTTP(t, engine, author.Id, "alice", "secret", `{"title":"Visible Entry"}`)
	createPostHTTP(t, engine, author.Id, "alice", "secret",
		`{"title":"Secret Entry","visibility":"PRIVATE"}`)
	createPostHTTP(t, engine, author.Id, "alice", "secret",
		`{"title":"Unlisted Entry","unlisted":true}`)

	w := request(engine, "GET", "/feed", anonymHost, nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/rss+xml") {
		t.Errorf("Expected RSS content type, got '%s'", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Public Mammut Posts") {
		t.Errorf("Expected feed title, got: %s", body)
	}
	if !strings.Contains(body, "Visible Entry") {
		t.Error("Expected the public post in the feed")
	}
	if strings.Contains(body, "Secret Entry") {
		t.Error("Private posts must not appear in the feed")
	}
	if strings.Contains(body, "Unlisted Entry") {
		t.Error("Unlisted posts must not appear in the feed")
	}
	if !strings.Contains(body, "Alice") {
		t.Error("Expected the post author in the feed")
	}
}

func TestFeedItem(t *testing.T) {
	s, engine := newTestServer(t)
	author := createSessionAuthor(t, s, "alice", "secret", "Alice")

	public := createPostHTTP(t, engine, author.Id, "alice", "secret", `{"title":"Single Entry"}`)
	private := createPostHTTP(t, engine, author.Id, "alice", "secret",
		`{"title":"Hidden Entry","visibility":"PRIVATE"}`)

	publicId, _ := federation.LastSegmentUUID(public.ID)
	privateId, _ := federation.LastSegmentUUID(private.ID)

	w := request(engine, "GET", "/feed/"+publicId.String(), anonymHost, nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Single Entry") {
		t.Error("Expected the post in the single item feed")
	}

	// Non-public posts are never served over the feed
	w = request(engine, "GET", "/feed/"+privateId.String(), anonymHost, nil, "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for private post, got %d", w.Code)
	}

	w = request(engine, "GET", "/feed/"+uuid.NewString(), anonymHost, nil, "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown post, got %d", w.Code)
	}
}

func TestFeedDisabled(t *testing.T) {
	s, _ := newTestServer(t)
	s.conf.Conf.WithRss = false
	engine := s.Engine()

	w := request(engine, "GET", "/feed", anonymHost, nil, "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with RSS disabled, got %d", w.Code)
	}
}
