package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
)

const (
	sqlInsertPost = `INSERT INTO posts(id, author_id, source, origin, title, description, content_type, content, categories, visibility, unlisted, published, modified)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Resolver upsert: id and author never change, published is kept from
	// the first write, modified moves forward.
	sqlUpsertPost = `INSERT INTO posts(id, author_id, source, origin, title, description, content_type, content, categories, visibility, unlisted, published, modified)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT(id) DO UPDATE SET
						source = excluded.source,
						origin = excluded.origin,
						title = excluded.title,
						description = excluded.description,
						content_type = excluded.content_type,
						content = excluded.content,
						categories = excluded.categories,
						visibility = excluded.visibility,
						unlisted = excluded.unlisted,
						modified = excluded.modified`

	sqlUpdatePost = `UPDATE posts SET title = ?, description = ?, content_type = ?, content = ?, categories = ?, visibility = ?, unlisted = ?, modified = ? WHERE id = ?`

	sqlDeletePost          = `DELETE FROM posts WHERE id = ?`
	sqlSelectPostById      = `SELECT id, author_id, source, origin, title, description, content_type, content, categories, visibility, unlisted, published, modified FROM posts WHERE id = ?`
	sqlSelectPostsByAuthor = `SELECT id, author_id, source, origin, title, description, content_type, content, categories, visibility, unlisted, published, modified FROM posts
					WHERE author_id = ? ORDER BY published DESC LIMIT ? OFFSET ?`
	sqlCountPostsByAuthor = `SELECT COUNT(*) FROM posts WHERE author_id = ?`
	sqlSelectPublicPosts  = `SELECT id, author_id, source, origin, title, description, content_type, content, categories, visibility, unlisted, published, modified FROM posts
					WHERE visibility = 'PUBLIC' AND unlisted = 0 ORDER BY published DESC LIMIT ?`
)

func postArgs(post *domain.Post) []any {
	categories, _ := json.Marshal(post.Categories)
	return []any{
		post.Id.String(),
		post.AuthorId.String(),
		post.Source,
		post.Origin,
		post.Title,
		post.Description,
		post.ContentType,
		post.Content,
		string(categories),
		post.Visibility,
		post.Unlisted,
		post.Published,
		post.Modified,
	}
}

func (db *DB) CreatePost(post *domain.Post) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertPost, postArgs(post)...)
		if err != nil && isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	})
}

// UpsertPost creates the post or reconciles the mutable fields of the
// existing row with the same id.
func (db *DB) UpsertPost(post *domain.Post) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpsertPost, postArgs(post)...)
		return err
	})
}

func (db *DB) UpdatePost(post *domain.Post) error {
	categories, _ := json.Marshal(post.Categories)
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdatePost,
			post.Title,
			post.Description,
			post.ContentType,
			post.Content,
			string(categories),
			post.Visibility,
			post.Unlisted,
			time.Now(),
			post.Id.String(),
		)
		return err
	})
}

func (db *DB) DeletePost(id uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(sqlDeletePost, id.String()); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM comments WHERE post_id = ?`, id.String())
		return err
	})
}

func scanPost(scan func(...any) error) (error, *domain.Post) {
	var post domain.Post
	var idStr, authorIdStr, categories string
	err := scan(
		&idStr,
		&authorIdStr,
		&post.Source,
		&post.Origin,
		&post.Title,
		&post.Description,
		&post.ContentType,
		&post.Content,
		&categories,
		&post.Visibility,
		&post.Unlisted,
		&post.Published,
		&post.Modified,
	)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	post.Id, _ = uuid.Parse(idStr)
	post.AuthorId, _ = uuid.Parse(authorIdStr)
	json.Unmarshal([]byte(categories), &post.Categories)
	return nil, &post
}

func (db *DB) ReadPostById(id uuid.UUID) (error, *domain.Post) {
	return scanPost(db.db.QueryRow(sqlSelectPostById, id.String()).Scan)
}

// ReadPostsByAuthor returns one page of the author's posts, newest first.
func (db *DB) ReadPostsByAuthor(authorId uuid.UUID, page, size int) (error, *[]domain.Post) {
	var total int
	if err := db.db.QueryRow(sqlCountPostsByAuthor, authorId.String()).Scan(&total); err != nil {
		return err, nil
	}
	limit, offset, err := pageBounds(total, page, size)
	if err != nil {
		return err, nil
	}

	rows, err := db.db.Query(sqlSelectPostsByAuthor, authorId.String(), limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		err, post := scanPost(rows.Scan)
		if err != nil {
			return err, &posts
		}
		posts = append(posts, *post)
	}
	if err = rows.Err(); err != nil {
		return err, &posts
	}
	return nil, &posts
}

// ReadPublicPosts returns the newest listed PUBLIC posts, for the feed.
func (db *DB) ReadPublicPosts(limit int) (error, *[]domain.Post) {
	rows, err := db.db.Query(sqlSelectPublicPosts, limit)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		err, post := scanPost(rows.Scan)
		if err != nil {
			return err, &posts
		}
		posts = append(posts, *post)
	}
	if err = rows.Err(); err != nil {
		return err, &posts
	}
	return nil, &posts
}
