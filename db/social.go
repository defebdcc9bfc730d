package db

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
)

const (
	sqlInsertLike             = `INSERT INTO likes(id, author_id, author_url, object_kind, object_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	sqlSelectLikesByObjectURL = `SELECT id, author_id, author_url, object_kind, object_url, created_at FROM likes
					WHERE object_url = ? ORDER BY created_at DESC`
	sqlSelectLikesByAuthorURL = `SELECT id, author_id, author_url, object_kind, object_url, created_at FROM likes
					WHERE author_url = ? ORDER BY created_at DESC`

	sqlInsertFollowRequest = `INSERT INTO follow_requests(id, from_author_id, to_author_id, summary, created_at) VALUES (?, ?, ?, ?, ?)`
	sqlSelectFollowRequest = `SELECT id, from_author_id, to_author_id, summary, created_at FROM follow_requests WHERE from_author_id = ? AND to_author_id = ?`
	sqlDeleteFollowRequest = `DELETE FROM follow_requests WHERE from_author_id = ? AND to_author_id = ?`

	sqlInsertFollower   = `INSERT OR IGNORE INTO followers(author_id, follower_id) VALUES (?, ?)`
	sqlDeleteFollower   = `DELETE FROM followers WHERE author_id = ? AND follower_id = ?`
	sqlSelectIsFollower = `SELECT COUNT(*) FROM followers WHERE author_id = ? AND follower_id = ?`
	sqlSelectFollowers  = `SELECT a.id, a.username, a.host, a.display_name, a.github, a.profile_image, a.password_hash, a.created_at
					FROM followers f INNER JOIN authors a ON a.id = f.follower_id
					WHERE f.author_id = ? ORDER BY f.created_at ASC LIMIT ? OFFSET ?`
	sqlCountFollowers = `SELECT COUNT(*) FROM followers WHERE author_id = ?`
)

// CreateLike stores an immutable like. A second like by the same author on
// the same object yields ErrDuplicate.
func (db *DB) CreateLike(like *domain.Like) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		authorId := ""
		if like.AuthorId != uuid.Nil {
			authorId = like.AuthorId.String()
		}
		_, err := tx.Exec(sqlInsertLike,
			like.Id.String(),
			authorId,
			like.AuthorURL,
			string(like.ObjectKind),
			like.ObjectURL,
			like.CreatedAt,
		)
		if err != nil && isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	})
}

func (db *DB) readLikes(query, key string) (error, *[]domain.Like) {
	rows, err := db.db.Query(query, key)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var likes []domain.Like
	for rows.Next() {
		var like domain.Like
		var idStr, authorIdStr, kind string
		if err := rows.Scan(&idStr, &authorIdStr, &like.AuthorURL, &kind, &like.ObjectURL, &like.CreatedAt); err != nil {
			return err, &likes
		}
		like.Id, _ = uuid.Parse(idStr)
		if authorIdStr != "" {
			like.AuthorId, _ = uuid.Parse(authorIdStr)
		}
		like.ObjectKind = domain.ObjectKind(kind)
		likes = append(likes, like)
	}
	if err = rows.Err(); err != nil {
		return err, &likes
	}
	return nil, &likes
}

// ReadLikesByObjectURL returns all likes on the object with that canonical
// URL, newest first.
func (db *DB) ReadLikesByObjectURL(objectURL string) (error, *[]domain.Like) {
	return db.readLikes(sqlSelectLikesByObjectURL, objectURL)
}

// ReadLikesByAuthorURL returns all likes made by the author with that
// canonical URL, newest first.
func (db *DB) ReadLikesByAuthorURL(authorURL string) (error, *[]domain.Like) {
	return db.readLikes(sqlSelectLikesByAuthorURL, authorURL)
}

// CreateFollowRequest stores a pending follow. A second request between the
// same pair yields ErrDuplicate.
func (db *DB) CreateFollowRequest(fr *domain.FollowRequest) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertFollowRequest,
			fr.Id.String(),
			fr.FromAuthorId.String(),
			fr.ToAuthorId.String(),
			fr.Summary,
			fr.CreatedAt,
		)
		if err != nil && isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	})
}

func (db *DB) ReadFollowRequest(from, to uuid.UUID) (error, *domain.FollowRequest) {
	row := db.db.QueryRow(sqlSelectFollowRequest, from.String(), to.String())
	var fr domain.FollowRequest
	var idStr, fromStr, toStr string
	err := row.Scan(&idStr, &fromStr, &toStr, &fr.Summary, &fr.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	fr.Id, _ = uuid.Parse(idStr)
	fr.FromAuthorId, _ = uuid.Parse(fromStr)
	fr.ToAuthorId, _ = uuid.Parse(toStr)
	return nil, &fr
}

func (db *DB) DeleteFollowRequest(from, to uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteFollowRequest, from.String(), to.String())
		return err
	})
}

// AddFollower records follower as a follower of author and resolves any
// pending follow request between the pair.
func (db *DB) AddFollower(authorId, followerId uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(sqlInsertFollower, authorId.String(), followerId.String()); err != nil {
			return err
		}
		_, err := tx.Exec(sqlDeleteFollowRequest, followerId.String(), authorId.String())
		return err
	})
}

func (db *DB) RemoveFollower(authorId, followerId uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteFollower, authorId.String(), followerId.String())
		return err
	})
}

func (db *DB) IsFollower(authorId, followerId uuid.UUID) (error, bool) {
	var count int
	if err := db.db.QueryRow(sqlSelectIsFollower, authorId.String(), followerId.String()).Scan(&count); err != nil {
		return err, false
	}
	return nil, count > 0
}

// ReadFollowers returns one page of the author's followers.
func (db *DB) ReadFollowers(authorId uuid.UUID, page, size int) (error, *[]domain.Author) {
	var total int
	if err := db.db.QueryRow(sqlCountFollowers, authorId.String()).Scan(&total); err != nil {
		return err, nil
	}
	limit, offset, err := pageBounds(total, page, size)
	if err != nil {
		return err, nil
	}

	rows, err := db.db.Query(sqlSelectFollowers, authorId.String(), limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var followers []domain.Author
	for rows.Next() {
		var author domain.Author
		var idStr string
		var username sql.NullString
		if err := rows.Scan(&idStr, &username, &author.Host, &author.DisplayName, &author.Github, &author.ProfileImage, &author.PasswordHash, &author.CreatedAt); err != nil {
			return err, &followers
		}
		author.Id, _ = uuid.Parse(idStr)
		followers = append(followers, author)
	}
	if err = rows.Err(); err != nil {
		return err, &followers
	}
	return nil, &followers
}
