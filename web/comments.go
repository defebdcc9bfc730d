package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/federation"
	"github.com/mammut-social/mammut/util"
)

// commentWire renders one comment, resolving its author when possible and
// falling back to the raw remote reference.
func (s *Server) commentWire(comment *domain.Comment, postURL string) federation.WireComment {
	var authorWire federation.WireAuthor
	if comment.AuthorId != uuid.Nil {
		if err, author := s.db.ReadAuthorById(comment.AuthorId); err == nil {
			authorWire = federation.AuthorWire(author)
		}
	}
	if authorWire.ID == "" {
		authorWire = federation.RemoteAuthorWire(comment.AuthorURL)
	}
	return federation.CommentWire(comment, authorWire, postURL)
}

func (s *Server) handleCommentsList(c *gin.Context) {
	if !s.requireAuthorized(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	postId, ok := pathUUID(c, "postId")
	if !ok {
		return
	}
	author := s.loadAuthor(c, authorId)
	if author == nil {
		return
	}
	post := s.loadPost(c, authorId, postId)
	if post == nil {
		return
	}

	page, size := pageParams(c, defaultSize)
	err, comments := s.db.ReadCommentsByPost(postId, page, size)
	if err != nil {
		listErr(c, err)
		return
	}

	postURL := post.URL(author.URL())
	items := make([]federation.WireComment, 0, len(*comments))
	for i := range *comments {
		items = append(items, s.commentWire(&(*comments)[i], postURL))
	}
	c.JSON(http.StatusOK, gin.H{"type": "comments", "items": items})
}

// handleCommentCreate adds a comment by an authenticated local author.
func (s *Server) handleCommentCreate(c *gin.Context) {
	if !s.requireLocal(c) {
		return
	}
	authorId, ok := pathUUID(c, "authorId")
	if !ok {
		return
	}
	postId, ok := pathUUID(c, "postId")
	if !ok {
		return
	}
	commenter := s.authenticatedAuthor(c)
	if commenter == nil {
		c.Header("WWW-Authenticate", `Basic realm="mammut"`)
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}
	author := s.loadAuthor(c, authorId)
	if author == nil {
		return
	}
	post := s.loadPost(c, authorId, postId)
	if post == nil {
		return
	}

	var body struct {
		Comment     string `json:"comment"`
		ContentType string `json:"contentType"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Comment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "The object is invalid"})
		return
	}
	if body.ContentType == "" {
		body.ContentType = "text/plain"
	}
	if !domain.ValidContentType(body.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid content type: " + body.ContentType})
		return
	}
	// Plain text typed into a frontend is flattened and HTML-escaped; richer
	// content types pass through verbatim
	if body.ContentType == "text/plain" {
		body.Comment = util.NormalizeInput(body.Comment)
	}

	comment := &domain.Comment{
		Id:          uuid.New(),
		PostId:      postId,
		AuthorId:    commenter.Id,
		AuthorURL:   commenter.URL(),
		Content:     body.Comment,
		ContentType: body.ContentType,
		Published:   time.Now(),
	}
	if err := s.db.UpsertComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	postURL := post.URL(author.URL())
	c.JSON(http.StatusCreated, s.commentWire(comment, postURL))
}
