package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mammut-social/mammut/federation"
)

func (s *Server) handleFollowersList(c *gin.Context) {
	if !s.requireAuthorized(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	if s.loadAuthor(c, authorId) == nil {
		return
	}

	page, size := pageParams(c, defaultSize)
	err, followers := s.db.ReadFollowers(authorId, page, size)
	if err != nil {
		listErr(c, err)
		return
	}

	items := make([]federation.WireAuthor, 0, len(*followers))
	for i := range *followers {
		items = append(items, federation.AuthorWire(&(*followers)[i]))
	}
	c.JSON(http.StatusOK, gin.H{"type": "followers", "items": items})
}

// handleFollowerCheck answers whether foreignId follows authorId: the
// follower's profile on hit, 404 otherwise.
func (s *Server) handleFollowerCheck(c *gin.Context) {
	if !s.requireAuthorized(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	foreignId, ok := pathUUID(c, "foreignId")
	if !ok {
		return
	}
	if s.loadAuthor(c, authorId) == nil {
		return
	}

	err, following := s.db.IsFollower(authorId, foreignId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	if !following {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not a follower"})
		return
	}

	follower := s.loadAuthor(c, foreignId)
	if follower == nil {
		return
	}
	c.JSON(http.StatusOK, federation.AuthorWire(follower))
}

// handleFollowerAdd accepts a pending follow: the inbox owner approves
// foreignId as a follower, and the stored follow request is resolved in the
// same transaction. Adding an already-present follower is a no-op.
func (s *Server) handleFollowerAdd(c *gin.Context) {
	if !s.requireLocal(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	foreignId, ok := pathUUID(c, "foreignId")
	if !ok {
		return
	}
	if s.requireAuthorSession(c, authorId) == nil {
		return
	}
	follower := s.loadAuthor(c, foreignId)
	if follower == nil {
		return
	}

	if err := s.db.AddFollower(authorId, foreignId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, federation.AuthorWire(follower))
}

func (s *Server) handleFollowerRemove(c *gin.Context) {
	if !s.requireLocal(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	foreignId, ok := pathUUID(c, "foreignId")
	if !ok {
		return
	}
	if s.requireAuthorSession(c, authorId) == nil {
		return
	}

	if err := s.db.RemoveFollower(authorId, foreignId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
