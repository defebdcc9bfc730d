package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	VisibilityPublic  = "PUBLIC"
	VisibilityFriends = "FRIENDS"
	VisibilityPrivate = "PRIVATE"
)

var contentTypes = map[string]bool{
	"text/plain":         true,
	"text/markdown":      true,
	"application/base64": true,
	"image/png;base64":   true,
	"image/jpeg;base64":  true,
}

// ValidContentType reports whether ct is one of the supported content types.
func ValidContentType(ct string) bool {
	return contentTypes[ct]
}

// ValidVisibility reports whether v is PUBLIC, FRIENDS or PRIVATE.
func ValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityFriends || v == VisibilityPrivate
}

// Post is a published entry, local or ingested from a peer. Id never changes
// once assigned; Published never changes after creation; Modified increases
// on every update.
type Post struct {
	Id          uuid.UUID
	AuthorId    uuid.UUID
	Source      string
	Origin      string
	Title       string
	Description string
	ContentType string
	Content     string
	Categories  []string
	Visibility  string
	Unlisted    bool
	Published   time.Time
	Modified    time.Time
}

// URL returns the canonical self URL, {host}authors/{author}/posts/{id}.
func (p *Post) URL(authorURL string) string {
	return fmt.Sprintf("%s/posts/%s", authorURL, p.Id)
}

// Comment belongs to exactly one post. AuthorURL keeps the raw remote
// reference when the comment author could not be resolved locally.
type Comment struct {
	Id          uuid.UUID
	PostId      uuid.UUID
	AuthorId    uuid.UUID
	AuthorURL   string
	Content     string
	ContentType string
	Published   time.Time
}

// URL returns the canonical self URL under the parent post.
func (c *Comment) URL(postURL string) string {
	return fmt.Sprintf("%s/comments/%s", postURL, c.Id)
}
