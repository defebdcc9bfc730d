package db

import (
	"database/sql"
)

const (
	sqlCreateNodesTable = `CREATE TABLE IF NOT EXISTS nodes(
		host TEXT NOT NULL PRIMARY KEY,
		receiving_username TEXT NOT NULL,
		receiving_password TEXT NOT NULL,
		sending_username TEXT NOT NULL DEFAULT '',
		sending_password TEXT NOT NULL DEFAULT '',
		is_local INTEGER NOT NULL DEFAULT 0
	)`

	sqlCreateAuthorsTable = `CREATE TABLE IF NOT EXISTS authors(
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT UNIQUE,
		host TEXT NOT NULL,
		display_name TEXT NOT NULL,
		github TEXT NOT NULL DEFAULT '',
		profile_image TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateFollowersTable = `CREATE TABLE IF NOT EXISTS followers(
		author_id TEXT NOT NULL,
		follower_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY(author_id, follower_id)
	)`

	sqlCreatePostsTable = `CREATE TABLE IF NOT EXISTS posts(
		id TEXT NOT NULL PRIMARY KEY,
		author_id TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		origin TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT 'text/plain',
		content TEXT NOT NULL DEFAULT '',
		categories TEXT NOT NULL DEFAULT '[]',
		visibility TEXT NOT NULL DEFAULT 'PUBLIC',
		unlisted INTEGER NOT NULL DEFAULT 0,
		published TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		modified TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateCommentsTable = `CREATE TABLE IF NOT EXISTS comments(
		id TEXT NOT NULL PRIMARY KEY,
		post_id TEXT NOT NULL,
		author_id TEXT NOT NULL DEFAULT '',
		author_url TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT 'text/plain',
		published TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateLikesTable = `CREATE TABLE IF NOT EXISTS likes(
		id TEXT NOT NULL PRIMARY KEY,
		author_id TEXT NOT NULL DEFAULT '',
		author_url TEXT NOT NULL,
		object_kind TEXT NOT NULL,
		object_url TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(author_url, object_url)
	)`

	sqlCreateFollowRequestsTable = `CREATE TABLE IF NOT EXISTS follow_requests(
		id TEXT NOT NULL PRIMARY KEY,
		from_author_id TEXT NOT NULL,
		to_author_id TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(from_author_id, to_author_id)
	)`

	sqlCreateInboxesTable = `CREATE TABLE IF NOT EXISTS inboxes(
		id TEXT NOT NULL PRIMARY KEY,
		author_id TEXT UNIQUE NOT NULL
	)`

	// object_ref is the resolved identity (local uuid or raw remote URL);
	// the unique constraint is what makes re-delivery idempotent under
	// concurrent inserts.
	sqlCreateInboxItemsTable = `CREATE TABLE IF NOT EXISTS inbox_items(
		id TEXT NOT NULL PRIMARY KEY,
		inbox_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		object_ref TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(inbox_id, object_ref)
	)`

	sqlCreateIndices = `
		CREATE INDEX IF NOT EXISTS idx_authors_host ON authors(host);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
		CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published DESC);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
		CREATE INDEX IF NOT EXISTS idx_likes_object_url ON likes(object_url);
		CREATE INDEX IF NOT EXISTS idx_likes_author_url ON likes(author_url);
		CREATE INDEX IF NOT EXISTS idx_inbox_items_inbox_id ON inbox_items(inbox_id);
		CREATE INDEX IF NOT EXISTS idx_inbox_items_created_at ON inbox_items(created_at DESC);
	`
)

// CreateDB creates the database schema.
func (db *DB) CreateDB() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		for _, stmt := range []string{
			sqlCreateNodesTable,
			sqlCreateAuthorsTable,
			sqlCreateFollowersTable,
			sqlCreatePostsTable,
			sqlCreateCommentsTable,
			sqlCreateLikesTable,
			sqlCreateFollowRequestsTable,
			sqlCreateInboxesTable,
			sqlCreateInboxItemsTable,
			sqlCreateIndices,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
