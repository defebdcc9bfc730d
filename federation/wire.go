package federation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/util"
)

// Typed wire representations of the canonical JSON shapes exchanged between
// nodes. One struct and one builder per entity, so a missing or renamed
// field is a compile error instead of a silent hole in a map.

type WireAuthor struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	URL          string `json:"url"`
	Host         string `json:"host"`
	DisplayName  string `json:"displayName"`
	Github       string `json:"github"`
	ProfileImage string `json:"profileImage"`
}

type WirePost struct {
	Type        string     `json:"type"`
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Origin      string     `json:"origin"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ContentType string     `json:"contentType"`
	Content     string     `json:"content"`
	Author      WireAuthor `json:"author"`
	Categories  []string   `json:"categories"`
	Count       int        `json:"count"`
	Comments    string     `json:"comments"`
	Published   string     `json:"published"`
	Visibility  string     `json:"visibility"`
	Unlisted    bool       `json:"unlisted"`
}

type WireComment struct {
	Type        string     `json:"type"`
	Author      WireAuthor `json:"author"`
	Comment     string     `json:"comment"`
	ContentType string     `json:"contentType"`
	Published   string     `json:"published"`
	ID          string     `json:"id"`
}

type WireLike struct {
	Context string     `json:"@context"`
	Summary string     `json:"summary"`
	Type    string     `json:"type"`
	Author  WireAuthor `json:"author"`
	Object  string     `json:"object"`
}

type WireFollow struct {
	Type    string     `json:"type"`
	Summary string     `json:"summary"`
	Actor   WireAuthor `json:"actor"`
	Object  WireAuthor `json:"object"`
}

// AuthorWire builds the canonical representation of an author.
func AuthorWire(author *domain.Author) WireAuthor {
	selfURL := author.URL()
	return WireAuthor{
		Type:         "author",
		ID:           selfURL,
		URL:          selfURL,
		Host:         author.Host,
		DisplayName:  author.DisplayName,
		Github:       author.Github,
		ProfileImage: author.ProfileImage,
	}
}

// PostWire builds the canonical representation of a post. commentCount is
// rendered as the post's count field.
func PostWire(post *domain.Post, author *domain.Author, commentCount int) WirePost {
	postURL := post.URL(author.URL())
	return WirePost{
		Type:        "post",
		ID:          postURL,
		Source:      post.Source,
		Origin:      post.Origin,
		Title:       post.Title,
		Description: post.Description,
		ContentType: post.ContentType,
		Content:     post.Content,
		Author:      AuthorWire(author),
		Categories:  post.Categories,
		Count:       commentCount,
		Comments:    postURL + "/comments",
		Published:   util.FormatWireTime(post.Published),
		Visibility:  post.Visibility,
		Unlisted:    post.Unlisted,
	}
}

// CommentWire builds the canonical representation of a comment under its
// parent post URL.
func CommentWire(comment *domain.Comment, author WireAuthor, postURL string) WireComment {
	return WireComment{
		Type:        "comment",
		Author:      author,
		Comment:     comment.Content,
		ContentType: comment.ContentType,
		Published:   util.FormatWireTime(comment.Published),
		ID:          fmt.Sprintf("%s/comments/%s", postURL, comment.Id),
	}
}

// LikeWire builds the canonical representation of a like.
func LikeWire(like *domain.Like, author WireAuthor) WireLike {
	return WireLike{
		Context: domain.ActivityStreamsContext,
		Summary: fmt.Sprintf("%s Likes your %s", author.DisplayName, strings.ToLower(string(like.ObjectKind))),
		Type:    "Like",
		Author:  author,
		Object:  like.ObjectURL,
	}
}

// FollowWire builds the canonical representation of a follow request.
func FollowWire(actor, object WireAuthor) WireFollow {
	return WireFollow{
		Type:    "Follow",
		Summary: fmt.Sprintf("%s wants to follow %s", actor.DisplayName, object.DisplayName),
		Actor:   actor,
		Object:  object,
	}
}

// RemoteAuthorWire renders a bare reference to an author known only by URL.
func RemoteAuthorWire(authorURL string) WireAuthor {
	return WireAuthor{
		Type: "author",
		ID:   authorURL,
		URL:  authorURL,
	}
}

// LastSegmentUUID extracts the trailing path segment of a canonical self URL
// and parses it as a UUID, e.g. ".../authors/{uuid}" or ".../posts/{uuid}".
func LastSegmentUUID(selfURL string) (uuid.UUID, error) {
	trimmed := strings.TrimSuffix(selfURL, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 {
		return uuid.Nil, fmt.Errorf("%w: empty object URL", ErrValidation)
	}
	id, err := uuid.Parse(parts[len(parts)-1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id in URL %q", ErrValidation, selfURL)
	}
	return id, nil
}

// SegmentUUID parses the path segment n positions from the end of the URL,
// e.g. n=2 on ".../posts/{pid}/comments/{cid}" yields pid.
func SegmentUUID(selfURL string, n int) (uuid.UUID, error) {
	trimmed := strings.TrimSuffix(selfURL, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) <= n {
		return uuid.Nil, fmt.Errorf("%w: short object URL %q", ErrValidation, selfURL)
	}
	id, err := uuid.Parse(parts[len(parts)-1-n])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id in URL %q", ErrValidation, selfURL)
	}
	return id, nil
}

// HostOf returns the host part of a URL, for registry lookups.
func HostOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	return parsed.Host, nil
}
