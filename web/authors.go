package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mammut-social/mammut/federation"
)

// handleAuthorsList returns the paginated author listing. With
// ?remote=true the page is merged with the authors of every reachable peer;
// an unreachable peer is skipped, never failing the aggregate.
func (s *Server) handleAuthorsList(c *gin.Context) {
	if !s.requireAuthorized(c) {
		return
	}

	page, size := pageParams(c, defaultSize)
	err, authors := s.db.ReadAuthorsPage(page, size)
	if err != nil {
		listErr(c, err)
		return
	}

	items := make([]federation.WireAuthor, 0, len(*authors))
	for i := range *authors {
		items = append(items, federation.AuthorWire(&(*authors)[i]))
	}

	if c.Query("remote") == "true" {
		items = append(items, federation.GatherRemoteAuthors(s.registry)...)
	}

	c.JSON(http.StatusOK, gin.H{"type": "authors", "items": items})
}

func (s *Server) handleAuthorGet(c *gin.Context) {
	if !s.requireAuthorized(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	author := s.loadAuthor(c, authorId)
	if author == nil {
		return
	}
	c.JSON(http.StatusOK, federation.AuthorWire(author))
}

// handleAuthorUpdate overwrites the mutable profile fields of a local
// author. Requires an authenticated session of that same author.
func (s *Server) handleAuthorUpdate(c *gin.Context) {
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
	author := s.loadAuthor(c, authorId)
	if author == nil {
		return
	}

	var body struct {
		DisplayName  string `json:"displayName"`
		Github       string `json:"github"`
		ProfileImage string `json:"profileImage"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "The object is invalid"})
		return
	}
	if body.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "displayName is required"})
		return
	}

	if err := s.db.UpdateAuthorProfile(authorId, body.DisplayName, body.Github, body.ProfileImage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	author.DisplayName = body.DisplayName
	author.Github = body.Github
	author.ProfileImage = body.ProfileImage
	c.JSON(http.StatusOK, federation.AuthorWire(author))
}
