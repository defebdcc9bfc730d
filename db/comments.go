package db

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
)

const (
	sqlUpsertComment = `INSERT INTO comments(id, post_id, author_id, author_url, content, content_type, published)
					VALUES (?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT(id) DO UPDATE SET
						content = excluded.content,
						content_type = excluded.content_type`

	sqlSelectCommentById    = `SELECT id, post_id, author_id, author_url, content, content_type, published FROM comments WHERE id = ?`
	sqlSelectCommentsByPost = `SELECT id, post_id, author_id, author_url, content, content_type, published FROM comments
					WHERE post_id = ? ORDER BY published DESC LIMIT ? OFFSET ?`
	sqlCountCommentsByPost = `SELECT COUNT(*) FROM comments WHERE post_id = ?`
)

// UpsertComment creates the comment or overwrites its content and content
// type when the same id is delivered again.
func (db *DB) UpsertComment(comment *domain.Comment) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		authorId := ""
		if comment.AuthorId != uuid.Nil {
			authorId = comment.AuthorId.String()
		}
		_, err := tx.Exec(sqlUpsertComment,
			comment.Id.String(),
			comment.PostId.String(),
			authorId,
			comment.AuthorURL,
			comment.Content,
			comment.ContentType,
			comment.Published,
		)
		return err
	})
}

func scanComment(scan func(...any) error) (error, *domain.Comment) {
	var comment domain.Comment
	var idStr, postIdStr, authorIdStr string
	err := scan(
		&idStr,
		&postIdStr,
		&authorIdStr,
		&comment.AuthorURL,
		&comment.Content,
		&comment.ContentType,
		&comment.Published,
	)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	comment.Id, _ = uuid.Parse(idStr)
	comment.PostId, _ = uuid.Parse(postIdStr)
	if authorIdStr != "" {
		comment.AuthorId, _ = uuid.Parse(authorIdStr)
	}
	return nil, &comment
}

func (db *DB) ReadCommentById(id uuid.UUID) (error, *domain.Comment) {
	return scanComment(db.db.QueryRow(sqlSelectCommentById, id.String()).Scan)
}

func (db *DB) CountCommentsByPost(postId uuid.UUID) (error, int) {
	var total int
	if err := db.db.QueryRow(sqlCountCommentsByPost, postId.String()).Scan(&total); err != nil {
		return err, 0
	}
	return nil, total
}

// ReadCommentsByPost returns one page of the post's comments, newest first.
func (db *DB) ReadCommentsByPost(postId uuid.UUID, page, size int) (error, *[]domain.Comment) {
	err, total := db.CountCommentsByPost(postId)
	if err != nil {
		return err, nil
	}
	limit, offset, err := pageBounds(total, page, size)
	if err != nil {
		return err, nil
	}

	rows, err := db.db.Query(sqlSelectCommentsByPost, postId.String(), limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		err, comment := scanComment(rows.Scan)
		if err != nil {
			return err, &comments
		}
		comments = append(comments, *comment)
	}
	if err = rows.Err(); err != nil {
		return err, &comments
	}
	return nil, &comments
}
