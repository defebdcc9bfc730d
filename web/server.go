package web

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/federation"
	"github.com/mammut-social/mammut/util"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	defaultPage      = 1
	defaultSize      = 25
	defaultInboxSize = 10
)

// Server wires the federation core to the HTTP surface. All dependencies
// are constructed once at startup and passed in explicitly.
type Server struct {
	conf      *util.AppConfig
	db        *db.DB
	registry  *federation.NodeRegistry
	ingestor  *federation.Ingestor
	resolver  *federation.Resolver
	proxy     *federation.Proxy
	deliverer *federation.Deliverer
}

func NewServer(conf *util.AppConfig, database *db.DB, registry *federation.NodeRegistry) *Server {
	return &Server{
		conf:      conf,
		db:        database,
		registry:  registry,
		ingestor:  federation.NewIngestor(database),
		resolver:  federation.NewResolver(database),
		proxy:     federation.NewProxy(registry),
		deliverer: federation.NewDeliverer(database, registry),
	}
}

// Engine builds the gin engine with all routes registered.
func (s *Server) Engine() *gin.Engine {
	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))
	g.Use(NodeContextMiddleware(s.registry))

	// Stricter rate limit plus a 1MB body cap on the write-heavy
	// federation endpoints
	fedLimiter := NewRateLimiter(rate.Limit(5), 10)
	maxBodySize := MaxBytesMiddleware(1 * 1024 * 1024)

	g.GET("/authors", s.handleAuthorsList)
	g.GET("/authors/:authorId", s.handleAuthorGet)
	g.POST("/authors/:authorId", s.handleAuthorUpdate)

	g.GET("/authors/:authorId/posts", s.handlePostsList)
	g.POST("/authors/:authorId/posts", maxBodySize, s.handlePostCreate)
	g.GET("/authors/:authorId/posts/:postId", s.handlePostGet)
	g.POST("/authors/:authorId/posts/:postId", maxBodySize, s.handlePostUpdate)
	g.PUT("/authors/:authorId/posts/:postId", maxBodySize, s.handlePostPut)
	g.DELETE("/authors/:authorId/posts/:postId", s.handlePostDelete)

	g.GET("/authors/:authorId/posts/:postId/comments", s.handleCommentsList)
	g.POST("/authors/:authorId/posts/:postId/comments", maxBodySize, s.handleCommentCreate)

	g.GET("/authors/:authorId/posts/:postId/likes", s.handlePostLikes)
	g.GET("/authors/:authorId/posts/:postId/comments/:commentId/likes", s.handleCommentLikes)
	g.GET("/authors/:authorId/liked", s.handleLiked)

	g.GET("/authors/:authorId/followers", s.handleFollowersList)
	g.GET("/authors/:authorId/followers/:foreignId", s.handleFollowerCheck)
	g.PUT("/authors/:authorId/followers/:foreignId", s.handleFollowerAdd)
	g.DELETE("/authors/:authorId/followers/:foreignId", s.handleFollowerRemove)

	g.GET("/authors/:authorId/inbox", s.handleInboxList)
	g.POST("/authors/:authorId/inbox", RateLimitMiddleware(fedLimiter), maxBodySize, s.handleInboxPost)
	g.DELETE("/authors/:authorId/inbox", s.handleInboxClear)

	g.GET("/proxy", s.handleProxyGet)
	g.POST("/proxy", maxBodySize, s.handleProxyPost)

	if s.conf.Conf.WithRss {
		g.GET("/feed", s.handleFeed)
		g.GET("/feed/:id", s.handleFeedItem)
	}

	return g
}

// Router starts serving on the configured port.
func Router(conf *util.AppConfig, database *db.DB, registry *federation.NodeRegistry) error {
	log.Printf("Starting federation server on %s:%d", conf.Conf.Host, conf.Conf.HttpPort)
	s := NewServer(conf, database, registry)
	return s.Engine().Run(fmt.Sprintf(":%d", conf.Conf.HttpPort))
}

// pageParams reads the page and size query parameters.
func pageParams(c *gin.Context, defSize int) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		page = defaultPage
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defSize)))
	if err != nil || size < 1 {
		size = defSize
	}
	return page, size
}

// pathUUID parses a path parameter as a UUID, answering 404 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Invalid %s", name)})
		return uuid.Nil, false
	}
	return id, true
}

// requireAuthorized rejects requests from nodes the registry does not
// recognize; both the local node and authenticated peers pass.
func (s *Server) requireAuthorized(c *gin.Context) bool {
	if !nodeContext(c).Authorized() {
		c.Header("WWW-Authenticate", `Basic realm="mammut federation"`)
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Unknown node"})
		return false
	}
	return true
}

// requireLocal rejects everything that does not originate from the local
// node itself.
func (s *Server) requireLocal(c *gin.Context) bool {
	if !nodeContext(c).IsLocal() {
		c.Header("WWW-Authenticate", `Basic realm="mammut federation"`)
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Local requests only"})
		return false
	}
	return true
}

// authenticatedAuthor resolves the request's Basic credential against the
// local author table. Returns nil when absent or wrong; shadow authors have
// no hash and can never pass.
func (s *Server) authenticatedAuthor(c *gin.Context) *domain.Author {
	username, password, ok := c.Request.BasicAuth()
	if !ok || username == "" {
		return nil
	}
	err, author := s.db.ReadAuthorByUsername(username)
	if err != nil || author == nil || !author.IsLocal() {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(author.PasswordHash), []byte(password)) != nil {
		return nil
	}
	return author
}

// requireAuthorSession enforces a logged-in local author matching authorId.
func (s *Server) requireAuthorSession(c *gin.Context, authorId uuid.UUID) *domain.Author {
	author := s.authenticatedAuthor(c)
	if author == nil {
		c.Header("WWW-Authenticate", `Basic realm="mammut"`)
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return nil
	}
	if author.Id != authorId {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have a permission"})
		return nil
	}
	return author
}

// loadAuthor fetches an author or answers 404.
func (s *Server) loadAuthor(c *gin.Context, id uuid.UUID) *domain.Author {
	err, author := s.db.ReadAuthorById(id)
	if err != nil || author == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Author not found"})
		return nil
	}
	return author
}

// loadPost fetches a post owned by authorId or answers 404.
func (s *Server) loadPost(c *gin.Context, authorId, postId uuid.UUID) *domain.Post {
	err, post := s.db.ReadPostById(postId)
	if err != nil || post == nil || post.AuthorId != authorId {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Post not found"})
		return nil
	}
	return post
}

// listErr maps a pagination failure to 404 and everything else to 500.
func listErr(c *gin.Context, err error) {
	if err == db.ErrPageNotFound {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Page does not exist"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
}
