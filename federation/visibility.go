package federation

import (
	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
)

// LikeIsPublic derives the visibility of a like from its target: a like is
// public iff the liked object is public, and a comment is public iff its
// parent post is. Nothing is stored.
func LikeIsPublic(database *db.DB, like *domain.Like) bool {
	objectId, err := LastSegmentUUID(like.ObjectURL)
	if err != nil {
		return false
	}

	switch like.ObjectKind {
	case domain.KindPost:
		err, post := database.ReadPostById(objectId)
		if err != nil {
			return false
		}
		return post.Visibility == domain.VisibilityPublic
	case domain.KindComment:
		err, comment := database.ReadCommentById(objectId)
		if err != nil {
			return false
		}
		err, post := database.ReadPostById(comment.PostId)
		if err != nil {
			return false
		}
		return post.Visibility == domain.VisibilityPublic
	}
	return false
}
