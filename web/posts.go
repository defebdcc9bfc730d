package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/federation"
)

type postBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ContentType string   `json:"contentType"`
	Content     string   `json:"content"`
	Categories  []string `json:"categories"`
	Visibility  string   `json:"visibility"`
	Unlisted    bool     `json:"unlisted"`
}

func (s *Server) validatePostBody(c *gin.Context) (*postBody, bool) {
	var body postBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "The object is invalid"})
		return nil, false
	}
	if body.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "title is required"})
		return nil, false
	}
	if body.ContentType == "" {
		body.ContentType = "text/plain"
	}
	if !domain.ValidContentType(body.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid content type: " + body.ContentType})
		return nil, false
	}
	if body.Visibility == "" {
		body.Visibility = domain.VisibilityPublic
	}
	if !domain.ValidVisibility(body.Visibility) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid visibility: " + body.Visibility})
		return nil, false
	}
	return &body, true
}

func (s *Server) postWire(post *domain.Post, author *domain.Author) federation.WirePost {
	err, count := s.db.CountCommentsByPost(post.Id)
	if err != nil {
		count = 0
	}
	return federation.PostWire(post, author, count)
}

func (s *Server) handlePostsList(c *gin.Context) {
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

	page, size := pageParams(c, defaultSize)
	err, posts := s.db.ReadPostsByAuthor(authorId, page, size)
	if err != nil {
		listErr(c, err)
		return
	}

	items := make([]federation.WirePost, 0, len(*posts))
	for i := range *posts {
		items = append(items, s.postWire(&(*posts)[i], author))
	}
	c.JSON(http.StatusOK, gin.H{"type": "posts", "items": items})
}

// handlePostCreate creates a post under a fresh id and fans it out to the
// author's followers. Requires the author's own session.
func (s *Server) handlePostCreate(c *gin.Context) {
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

	body, ok := s.validatePostBody(c)
	if !ok {
		return
	}

	s.createPost(c, author, uuid.New(), body)
}

func (s *Server) createPost(c *gin.Context, author *domain.Author, id uuid.UUID, body *postBody) {
	now := time.Now()
	post := &domain.Post{
		Id:          id,
		AuthorId:    author.Id,
		Title:       body.Title,
		Description: body.Description,
		ContentType: body.ContentType,
		Content:     body.Content,
		Categories:  body.Categories,
		Visibility:  body.Visibility,
		Unlisted:    body.Unlisted,
		Published:   now,
		Modified:    now,
	}
	postURL := post.URL(author.URL())
	post.Source = postURL
	post.Origin = postURL

	if err := s.db.CreatePost(post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Post already exists"})
		return
	}

	delivered := s.deliverer.DeliverPost(post, author)
	log.Printf("Posts: %s created post %s, delivered to %d followers", author.Id, post.Id, delivered)

	c.JSON(http.StatusCreated, s.postWire(post, author))
}

func (s *Server) handlePostGet(c *gin.Context) {
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

	// Non-public posts are only served to their owner
	if post.Visibility != domain.VisibilityPublic {
		if viewer := s.authenticatedAuthor(c); viewer == nil || viewer.Id != authorId {
			c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have a permission"})
			return
		}
	}

	c.JSON(http.StatusOK, s.postWire(post, author))
}

// handlePostUpdate overwrites the mutable fields of an existing post.
func (s *Server) handlePostUpdate(c *gin.Context) {
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
	author := s.requireAuthorSession(c, authorId)
	if author == nil {
		return
	}
	post := s.loadPost(c, authorId, postId)
	if post == nil {
		return
	}

	body, ok := s.validatePostBody(c)
	if !ok {
		return
	}

	post.Title = body.Title
	post.Description = body.Description
	post.ContentType = body.ContentType
	post.Content = body.Content
	post.Categories = body.Categories
	post.Visibility = body.Visibility
	post.Unlisted = body.Unlisted

	if err := s.db.UpdatePost(post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	err, updated := s.db.ReadPostById(postId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, s.postWire(updated, author))
}

// handlePostPut creates a post under a caller-chosen id, so a frontend can
// mirror an object with a known identity. Repeating the id is a 400.
func (s *Server) handlePostPut(c *gin.Context) {
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
	author := s.requireAuthorSession(c, authorId)
	if author == nil {
		return
	}

	body, ok := s.validatePostBody(c)
	if !ok {
		return
	}

	s.createPost(c, author, postId, body)
}

func (s *Server) handlePostDelete(c *gin.Context) {
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
	if s.requireAuthorSession(c, authorId) == nil {
		return
	}
	if s.loadPost(c, authorId, postId) == nil {
		return
	}

	if err := s.db.DeletePost(postId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
