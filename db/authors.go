package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
)

const (
	sqlInsertAuthor = `INSERT INTO authors(id, username, host, display_name, github, profile_image, password_hash, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	// The resolver upsert. Only descriptive fields are overwritten; username
	// and password_hash belong to the local node and are never touched by a
	// federated representation.
	sqlUpsertRemoteAuthor = `INSERT INTO authors(id, username, host, display_name, github, profile_image, password_hash, created_at)
					VALUES (?, NULL, ?, ?, ?, ?, '', ?)
					ON CONFLICT(id) DO UPDATE SET
						host = excluded.host,
						display_name = excluded.display_name,
						github = excluded.github,
						profile_image = excluded.profile_image`

	sqlUpdateAuthorProfile = `UPDATE authors SET display_name = ?, github = ?, profile_image = ? WHERE id = ?`

	sqlSelectAuthorById       = `SELECT id, username, host, display_name, github, profile_image, password_hash, created_at FROM authors WHERE id = ?`
	sqlSelectAuthorByUsername = `SELECT id, username, host, display_name, github, profile_image, password_hash, created_at FROM authors WHERE username = ?`
	sqlSelectAuthorsPage      = `SELECT id, username, host, display_name, github, profile_image, password_hash, created_at FROM authors ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`
	sqlCountAuthors           = `SELECT COUNT(*) FROM authors`
)

// CreateLocalAuthor creates an author that can log in against this node.
func (db *DB) CreateLocalAuthor(author *domain.Author, username string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertAuthor,
			author.Id.String(),
			username,
			author.Host,
			author.DisplayName,
			author.Github,
			author.ProfileImage,
			author.PasswordHash,
			author.CreatedAt,
		)
		if err != nil && isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	})
}

// UpsertRemoteAuthor creates or reconciles a shadow copy of a remote
// author. Applying the same representation twice is a no-op.
func (db *DB) UpsertRemoteAuthor(author *domain.Author) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpsertRemoteAuthor,
			author.Id.String(),
			author.Host,
			author.DisplayName,
			author.Github,
			author.ProfileImage,
			time.Now(),
		)
		return err
	})
}

// UpdateAuthorProfile overwrites the mutable profile fields of a local
// author.
func (db *DB) UpdateAuthorProfile(id uuid.UUID, displayName, github, profileImage string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateAuthorProfile, displayName, github, profileImage, id.String())
		return err
	})
}

func scanAuthor(row *sql.Row) (error, *domain.Author) {
	var author domain.Author
	var idStr string
	var username sql.NullString
	err := row.Scan(
		&idStr,
		&username,
		&author.Host,
		&author.DisplayName,
		&author.Github,
		&author.ProfileImage,
		&author.PasswordHash,
		&author.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	author.Id, _ = uuid.Parse(idStr)
	return nil, &author
}

func (db *DB) ReadAuthorById(id uuid.UUID) (error, *domain.Author) {
	return scanAuthor(db.db.QueryRow(sqlSelectAuthorById, id.String()))
}

func (db *DB) ReadAuthorByUsername(username string) (error, *domain.Author) {
	return scanAuthor(db.db.QueryRow(sqlSelectAuthorByUsername, username))
}

// ReadAuthorsPage returns one page of all authors, oldest first. A page
// beyond the last one yields ErrPageNotFound.
func (db *DB) ReadAuthorsPage(page, size int) (error, *[]domain.Author) {
	var total int
	if err := db.db.QueryRow(sqlCountAuthors).Scan(&total); err != nil {
		return err, nil
	}
	limit, offset, err := pageBounds(total, page, size)
	if err != nil {
		return err, nil
	}

	rows, err := db.db.Query(sqlSelectAuthorsPage, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var authors []domain.Author
	for rows.Next() {
		var author domain.Author
		var idStr string
		var username sql.NullString
		if err := rows.Scan(&idStr, &username, &author.Host, &author.DisplayName, &author.Github, &author.ProfileImage, &author.PasswordHash, &author.CreatedAt); err != nil {
			return err, &authors
		}
		author.Id, _ = uuid.Parse(idStr)
		authors = append(authors, author)
	}
	if err = rows.Err(); err != nil {
		return err, &authors
	}
	return nil, &authors
}
