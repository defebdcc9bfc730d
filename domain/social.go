package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityStreamsContext is the fixed @context every federated Like carries.
const ActivityStreamsContext = "https://www.w3.org/ns/activitystreams"

type ObjectKind string

const (
	KindPost    ObjectKind = "POST"
	KindComment ObjectKind = "COMMENT"
	KindFollow  ObjectKind = "FOLLOW"
	KindLike    ObjectKind = "LIKE"
)

// Like is immutable once created. AuthorURL keeps the liking author's raw
// reference when it could not be resolved locally. ObjectURL is the
// canonical URL of the liked Post or Comment; visibility of a like is
// derived from its target, never stored.
type Like struct {
	Id         uuid.UUID
	AuthorId   uuid.UUID
	AuthorURL  string
	ObjectKind ObjectKind // KindPost or KindComment
	ObjectURL  string
	CreatedAt  time.Time
}

// FollowRequest is transient protocol state: it exists while a follow is
// pending and is deleted once resolved into the followers relation.
type FollowRequest struct {
	Id           uuid.UUID
	FromAuthorId uuid.UUID
	ToAuthorId   uuid.UUID
	Summary      string
	CreatedAt    time.Time
}

// ObjectRef points at a federated object, either by resolved local id or by
// the raw remote URL when resolution failed.
type ObjectRef struct {
	LocalId   uuid.UUID
	RemoteURL string
}

// Identity is the deduplication key for inbox insertion.
func (r ObjectRef) Identity() string {
	if r.LocalId != uuid.Nil {
		return r.LocalId.String()
	}
	return r.RemoteURL
}

// InboxItem is one entry in an author's inbox. At most one item per distinct
// object identity exists in a given inbox.
type InboxItem struct {
	Id        uuid.UUID
	InboxId   uuid.UUID
	Kind      ObjectKind
	Ref       ObjectRef
	CreatedAt time.Time
}

// Inbox is the per-author feed of delivered objects, created lazily on
// first use.
type Inbox struct {
	Id       uuid.UUID
	AuthorId uuid.UUID
}
