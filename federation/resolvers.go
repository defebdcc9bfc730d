package federation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/util"
)

// Resolver reconciles inbound canonical representations with local storage:
// create the record under the id embedded in its self URL, or overwrite the
// mutable descriptive fields of the existing one. All three resolvers are
// idempotent; the unique-id upsert at the storage layer keeps them safe
// under concurrent delivery of the same object from multiple peers.
type Resolver struct {
	db *db.DB
}

func NewResolver(database *db.DB) *Resolver {
	return &Resolver{db: database}
}

// ResolveAuthor creates or updates a shadow copy of the represented author.
// Local-only fields (username, password hash) are never touched.
func (r *Resolver) ResolveAuthor(wire WireAuthor) (*domain.Author, error) {
	if wire.ID == "" || wire.Host == "" || wire.DisplayName == "" {
		return nil, fmt.Errorf("%w: author is missing id, host or displayName", ErrValidation)
	}
	id, err := LastSegmentUUID(wire.ID)
	if err != nil {
		return nil, err
	}

	author := &domain.Author{
		Id:           id,
		Host:         wire.Host,
		DisplayName:  wire.DisplayName,
		Github:       wire.Github,
		ProfileImage: wire.ProfileImage,
	}
	if err := r.db.UpsertRemoteAuthor(author); err != nil {
		return nil, fmt.Errorf("failed to store author %s: %w", id, err)
	}

	err, stored := r.db.ReadAuthorById(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back author %s: %w", id, err)
	}
	return stored, nil
}

// ResolvePost creates or updates the represented post. The id is adopted
// from the representation and never regenerated; published is kept from the
// first write, modified moves forward on every update.
func (r *Resolver) ResolvePost(wire WirePost) (*domain.Post, error) {
	if wire.ID == "" || wire.Title == "" {
		return nil, fmt.Errorf("%w: post is missing id or title", ErrValidation)
	}
	if !domain.ValidContentType(wire.ContentType) {
		return nil, fmt.Errorf("%w: invalid content type %q", ErrValidation, wire.ContentType)
	}
	if !domain.ValidVisibility(wire.Visibility) {
		return nil, fmt.Errorf("%w: invalid visibility %q", ErrValidation, wire.Visibility)
	}
	id, err := LastSegmentUUID(wire.ID)
	if err != nil {
		return nil, err
	}
	published, err := util.ParseWireTime(wire.Published)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid published timestamp %q", ErrValidation, wire.Published)
	}

	author, err := r.ResolveAuthor(wire.Author)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Id:          id,
		AuthorId:    author.Id,
		Source:      wire.Source,
		Origin:      wire.Origin,
		Title:       wire.Title,
		Description: wire.Description,
		ContentType: wire.ContentType,
		Content:     wire.Content,
		Categories:  wire.Categories,
		Visibility:  wire.Visibility,
		Unlisted:    wire.Unlisted,
		Published:   published,
		Modified:    time.Now(),
	}
	if err := r.db.UpsertPost(post); err != nil {
		return nil, fmt.Errorf("failed to store post %s: %w", id, err)
	}

	err, stored := r.db.ReadPostById(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back post %s: %w", id, err)
	}
	return stored, nil
}

// ResolveComment creates or updates the represented comment. The parent
// post id is taken from the comment's self URL and must exist locally.
func (r *Resolver) ResolveComment(wire WireComment) (*domain.Comment, error) {
	if wire.ID == "" || wire.Comment == "" {
		return nil, fmt.Errorf("%w: comment is missing id or comment", ErrValidation)
	}
	if !domain.ValidContentType(wire.ContentType) {
		return nil, fmt.Errorf("%w: invalid content type %q", ErrValidation, wire.ContentType)
	}
	id, err := LastSegmentUUID(wire.ID)
	if err != nil {
		return nil, err
	}
	postId, err := SegmentUUID(wire.ID, 2)
	if err != nil {
		return nil, err
	}
	published, err := util.ParseWireTime(wire.Published)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid published timestamp %q", ErrValidation, wire.Published)
	}

	if err, _ := r.db.ReadPostById(postId); err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: post %s is not hosted here", ErrNotFound, postId)
	} else if err != nil {
		return nil, err
	}

	author, err := r.ResolveAuthor(wire.Author)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		Id:          id,
		PostId:      postId,
		AuthorId:    author.Id,
		AuthorURL:   wire.Author.URL,
		Content:     wire.Comment,
		ContentType: wire.ContentType,
		Published:   published,
	}
	if err := r.db.UpsertComment(comment); err != nil {
		return nil, fmt.Errorf("failed to store comment %s: %w", id, err)
	}

	err, stored := r.db.ReadCommentById(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back comment %s: %w", id, err)
	}
	return stored, nil
}
