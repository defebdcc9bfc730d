package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/federation"
)

func (s *Server) likeWire(like *domain.Like) federation.WireLike {
	var authorWire federation.WireAuthor
	if like.AuthorId != uuid.Nil {
		if err, author := s.db.ReadAuthorById(like.AuthorId); err == nil {
			authorWire = federation.AuthorWire(author)
		}
	}
	if authorWire.ID == "" {
		authorWire = federation.RemoteAuthorWire(like.AuthorURL)
	}
	return federation.LikeWire(like, authorWire)
}

func (s *Server) renderLikes(c *gin.Context, likes *[]domain.Like) {
	items := make([]federation.WireLike, 0, len(*likes))
	for i := range *likes {
		items = append(items, s.likeWire(&(*likes)[i]))
	}
	c.JSON(http.StatusOK, gin.H{"type": "liked", "items": items})
}

// handlePostLikes lists likes on one of the author's posts.
func (s *Server) handlePostLikes(c *gin.Context) {
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

	err, likes := s.db.ReadLikesByObjectURL(post.URL(author.URL()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	s.renderLikes(c, likes)
}

// handleCommentLikes lists likes on one comment under the author's post.
func (s *Server) handleCommentLikes(c *gin.Context) {
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
	commentId, ok := pathUUID(c, "commentId")
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
	err, comment := s.db.ReadCommentById(commentId)
	if err != nil || comment == nil || comment.PostId != postId {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Comment not found"})
		return
	}

	commentURL := comment.URL(post.URL(author.URL()))
	err, likes := s.db.ReadLikesByObjectURL(commentURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	s.renderLikes(c, likes)
}

// handleLiked lists the likes the author has made on public objects. A like
// on a non-public object never leaves this node.
func (s *Server) handleLiked(c *gin.Context) {
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

	err, likes := s.db.ReadLikesByAuthorURL(author.URL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}

	public := make([]domain.Like, 0, len(*likes))
	for _, like := range *likes {
		if federation.LikeIsPublic(s.db, &like) {
			public = append(public, like)
		}
	}
	s.renderLikes(c, &public)
}
