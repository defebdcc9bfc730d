package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/util"
)

const feedLimit = 50

func feedAuthor(database *db.DB, post *domain.Post) *feeds.Author {
	err, author := database.ReadAuthorById(post.AuthorId)
	if err != nil || author == nil {
		return &feeds.Author{Name: "unknown"}
	}
	return &feeds.Author{Name: author.DisplayName, Email: fmt.Sprintf("%s@mammut", author.Id)}
}

func feedItem(conf *util.AppConfig, database *db.DB, post *domain.Post) *feeds.Item {
	return &feeds.Item{
		Id:          post.Id.String(),
		Title:       post.Title,
		Link:        &feeds.Link{Href: fmt.Sprintf("http://%s:%d/feed/%s", conf.Conf.Host, conf.Conf.HttpPort, post.Id)},
		Description: post.Description,
		Content:     post.Content,
		Author:      feedAuthor(database, post),
		Created:     post.Published,
		Updated:     post.Modified,
	}
}

// GetRSS renders the newest listed public posts as one RSS feed.
func GetRSS(conf *util.AppConfig, database *db.DB) (string, error) {
	err, posts := database.ReadPublicPosts(feedLimit)
	if err != nil {
		log.Println("Could not get public posts!", err)
		return "", errors.New("error retrieving public posts")
	}

	feed := &feeds.Feed{
		Title:       "Public Mammut Posts",
		Link:        &feeds.Link{Href: fmt.Sprintf("http://%s:%d/feed", conf.Conf.Host, conf.Conf.HttpPort)},
		Description: "public posts of this mammut node",
		Author:      &feeds.Author{Name: "everyone", Email: "everyone@mammut"},
		Created:     time.Now(),
	}

	var feedItems []*feeds.Item
	for i := range *posts {
		feedItems = append(feedItems, feedItem(conf, database, &(*posts)[i]))
	}
	feed.Items = feedItems
	return feed.ToRss()
}

// GetRSSItem renders a single listed public post as an RSS feed.
func GetRSSItem(conf *util.AppConfig, database *db.DB, id uuid.UUID) (string, error) {
	err, post := database.ReadPostById(id)
	if err != nil || post == nil {
		log.Println("Could not get post!", err)
		return "", errors.New("error retrieving post by id")
	}
	if post.Visibility != domain.VisibilityPublic || post.Unlisted {
		return "", errors.New("post is not public")
	}

	feed := &feeds.Feed{
		Title:       "Single Mammut Post",
		Link:        &feeds.Link{Href: fmt.Sprintf("http://%s:%d/feed/%s", conf.Conf.Host, conf.Conf.HttpPort, post.Id)},
		Description: "public posts of this mammut node",
		Author:      feedAuthor(database, post),
		Created:     time.Now(),
	}
	feed.Items = []*feeds.Item{feedItem(conf, database, post)}
	return feed.ToRss()
}

func (s *Server) handleFeed(c *gin.Context) {
	rss, err := GetRSS(s.conf, s.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (s *Server) handleFeedItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rss, err := GetRSSItem(s.conf, s.db, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Post not found"})
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
