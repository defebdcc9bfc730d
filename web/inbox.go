package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/federation"
)

// handleInboxList returns the posts delivered to the author's inbox, newest
// first. The inbox is private to its owner.
func (s *Server) handleInboxList(c *gin.Context) {
	if !s.requireLocal(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	author := s.requireAuthorSession(c, authorId)
	if author == nil {
		return
	}

	err, inbox := s.db.GetOrCreateInbox(authorId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	page, size := pageParams(c, defaultInboxSize)
	err, entries := s.db.ReadInboxItems(inbox.Id, domain.KindPost, page, size)
	if err != nil {
		listErr(c, err)
		return
	}

	items := make([]federation.WirePost, 0, len(*entries))
	for _, entry := range *entries {
		err, post := s.db.ReadPostById(entry.Ref.LocalId)
		if err != nil || post == nil {
			continue
		}
		err, postAuthor := s.db.ReadAuthorById(post.AuthorId)
		if err != nil || postAuthor == nil {
			continue
		}
		items = append(items, s.postWire(post, postAuthor))
	}
	c.JSON(http.StatusOK, gin.H{"type": "inbox", "author": author.URL(), "items": items})
}

// handleInboxPost ingests one federated object delivered by a peer or by the
// local frontend.
func (s *Server) handleInboxPost(c *gin.Context) {
	if !s.requireAuthorized(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	owner := s.loadAuthor(c, authorId)
	if owner == nil {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "The object is invalid"})
		return
	}

	if err := s.ingestor.Ingest(owner, body); err != nil {
		switch {
		case errors.Is(err, federation.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		case errors.Is(err, federation.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Object delivered to inbox"})
}

// handleInboxClear drops every item from the author's inbox. The referenced
// objects stay untouched.
func (s *Server) handleInboxClear(c *gin.Context) {
	if !s.requireLocal(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	if s.requireAuthorSession(c, authorId) == nil {
		return
	}

	err, inbox := s.db.GetOrCreateInbox(authorId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	if err := s.db.ClearInbox(inbox.Id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
