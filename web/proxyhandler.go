package web

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mammut-social/mammut/federation"
)

func proxyErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, federation.ErrNoCredential):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "The node needs to be connected by a serveradmin first"})
	case errors.Is(err, federation.ErrBadUpstream):
		c.JSON(http.StatusNotFound, gin.H{"detail": "The remote node returned a non-JSON response"})
	case errors.Is(err, federation.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
	}
}

// handleProxyGet fetches an author-scoped resource from a peer on behalf of
// the local frontend. Only author paths may pass through.
func (s *Server) handleProxyGet(c *gin.Context) {
	if !s.requireAuthorized(c) {
		return
	}
	rawURL := c.Query("url")
	if rawURL == "" || !strings.Contains(rawURL, "/authors") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url must reference an authors resource"})
		return
	}

	status, body, err := s.proxy.Do(rawURL, http.MethodGet, nil)
	if err != nil {
		proxyErr(c, err)
		return
	}
	c.Data(status, "application/json", body)
}

// handleProxyPost forwards an object to a remote inbox on behalf of the
// local frontend. Only inbox URLs may be targeted.
func (s *Server) handleProxyPost(c *gin.Context) {
	if !s.requireLocal(c) {
		return
	}
	rawURL := c.Query("url")
	if rawURL == "" || !(strings.HasSuffix(rawURL, "/inbox") || strings.HasSuffix(rawURL, "/inbox/")) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url must reference an inbox"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "The object is invalid"})
		return
	}

	status, respBody, err := s.proxy.Do(rawURL, http.MethodPost, body)
	if err != nil {
		proxyErr(c, err)
		return
	}
	c.Data(status, "application/json", respBody)
}
