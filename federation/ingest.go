package federation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
)

// Ingestor runs the inbox ingestion protocol: classify the delivered JSON
// object, resolve or create what it references, and append one inbox item
// for its identity. Authentication happens before Ingest is called; every
// later failure maps to a validation or not-found rejection with no inbox
// item written.
type Ingestor struct {
	db       *db.DB
	resolver *Resolver
}

func NewIngestor(database *db.DB) *Ingestor {
	return &Ingestor{db: database, resolver: NewResolver(database)}
}

type envelope struct {
	Type string `json:"type"`
}

// Ingest delivers one federated object into owner's inbox. Re-delivery of
// an identical representation updates the underlying object but never adds
// a second inbox item.
func (ing *Ingestor) Ingest(owner *domain.Author, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: unparsable body", ErrValidation)
	}

	var kind domain.ObjectKind
	var ref domain.ObjectRef
	var err error

	switch strings.ToLower(strings.TrimSpace(env.Type)) {
	case "post":
		kind = domain.KindPost
		ref, err = ing.ingestPost(body)
	case "comment":
		kind = domain.KindComment
		ref, err = ing.ingestComment(body)
	case "follow":
		kind = domain.KindFollow
		ref, err = ing.ingestFollow(owner, body)
	case "like":
		kind = domain.KindLike
		ref, err = ing.ingestLike(body)
	default:
		return fmt.Errorf("%w: unrecognized object type %q", ErrValidation, env.Type)
	}
	if err != nil {
		return err
	}

	err, inbox := ing.db.GetOrCreateInbox(owner.Id)
	if err != nil {
		return fmt.Errorf("failed to open inbox for %s: %w", owner.Id, err)
	}
	err, appended := ing.db.AppendInboxItem(inbox.Id, kind, ref)
	if err != nil {
		return fmt.Errorf("failed to append inbox item: %w", err)
	}
	if !appended {
		log.Printf("Inbox: %s already contains %s, skipping", owner.Id, ref.Identity())
	}
	return nil
}

func (ing *Ingestor) ingestPost(body []byte) (domain.ObjectRef, error) {
	var wire WirePost
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.ObjectRef{}, fmt.Errorf("%w: malformed post", ErrValidation)
	}
	post, err := ing.resolver.ResolvePost(wire)
	if err != nil {
		return domain.ObjectRef{}, err
	}
	return domain.ObjectRef{LocalId: post.Id}, nil
}

func (ing *Ingestor) ingestComment(body []byte) (domain.ObjectRef, error) {
	var wire WireComment
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.ObjectRef{}, fmt.Errorf("%w: malformed comment", ErrValidation)
	}
	comment, err := ing.resolver.ResolveComment(wire)
	if err != nil {
		return domain.ObjectRef{}, err
	}
	return domain.ObjectRef{LocalId: comment.Id}, nil
}

// ingestFollow validates that the follow is addressed to the inbox owner
// and that no request between the pair is already pending, then records the
// transient follow request.
func (ing *Ingestor) ingestFollow(owner *domain.Author, body []byte) (domain.ObjectRef, error) {
	var wire WireFollow
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.ObjectRef{}, fmt.Errorf("%w: malformed follow", ErrValidation)
	}
	if wire.Object.ID == "" {
		return domain.ObjectRef{}, fmt.Errorf("%w: follow is missing object", ErrValidation)
	}
	targetId, err := LastSegmentUUID(wire.Object.ID)
	if err != nil {
		return domain.ObjectRef{}, err
	}
	if targetId != owner.Id {
		return domain.ObjectRef{}, fmt.Errorf("%w: follow object %s does not match inbox owner %s", ErrValidation, targetId, owner.Id)
	}

	actor, err := ing.resolver.ResolveAuthor(wire.Actor)
	if err != nil {
		return domain.ObjectRef{}, err
	}

	request := &domain.FollowRequest{
		Id:           uuid.New(),
		FromAuthorId: actor.Id,
		ToAuthorId:   owner.Id,
		Summary:      wire.Summary,
		CreatedAt:    time.Now(),
	}
	if err := ing.db.CreateFollowRequest(request); err != nil {
		if err == db.ErrDuplicate {
			return domain.ObjectRef{}, fmt.Errorf("%w: follow request is already sent", ErrValidation)
		}
		return domain.ObjectRef{}, fmt.Errorf("failed to create follow request: %w", err)
	}
	return domain.ObjectRef{LocalId: request.Id}, nil
}

// ingestLike validates the fixed @context and that the liked object is
// hosted here, then records the immutable like.
func (ing *Ingestor) ingestLike(body []byte) (domain.ObjectRef, error) {
	var wire WireLike
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.ObjectRef{}, fmt.Errorf("%w: malformed like", ErrValidation)
	}
	if wire.Context != domain.ActivityStreamsContext {
		return domain.ObjectRef{}, fmt.Errorf("%w: invalid @context %q", ErrValidation, wire.Context)
	}
	if wire.Object == "" {
		return domain.ObjectRef{}, fmt.Errorf("%w: like is missing object", ErrValidation)
	}

	objectId, err := LastSegmentUUID(wire.Object)
	if err != nil {
		return domain.ObjectRef{}, err
	}
	kind, err := ing.classifyLikeTarget(objectId)
	if err != nil {
		return domain.ObjectRef{}, err
	}

	author, err := ing.resolver.ResolveAuthor(wire.Author)
	if err != nil {
		return domain.ObjectRef{}, err
	}

	like := &domain.Like{
		Id:         uuid.New(),
		AuthorId:   author.Id,
		AuthorURL:  author.URL(),
		ObjectKind: kind,
		ObjectURL:  wire.Object,
		CreatedAt:  time.Now(),
	}
	if err := ing.db.CreateLike(like); err != nil {
		if err == db.ErrDuplicate {
			return domain.ObjectRef{}, fmt.Errorf("%w: like already exists", ErrValidation)
		}
		return domain.ObjectRef{}, fmt.Errorf("failed to create like: %w", err)
	}
	return domain.ObjectRef{LocalId: like.Id}, nil
}

// classifyLikeTarget decides whether the liked object is a post or a
// comment this node hosts. A like on an object hosted elsewhere is invalid.
func (ing *Ingestor) classifyLikeTarget(objectId uuid.UUID) (domain.ObjectKind, error) {
	if err, _ := ing.db.ReadPostById(objectId); err == nil {
		return domain.KindPost, nil
	} else if err != sql.ErrNoRows {
		return "", err
	}
	if err, _ := ing.db.ReadCommentById(objectId); err == nil {
		return domain.KindComment, nil
	} else if err != sql.ErrNoRows {
		return "", err
	}
	return "", fmt.Errorf("%w: object %s is not hosted here", ErrValidation, objectId)
}
