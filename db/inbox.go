package db

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/mammut-social/mammut/domain"
	"time"
)

const (
	sqlInsertInbox         = `INSERT OR IGNORE INTO inboxes(id, author_id) VALUES (?, ?)`
	sqlSelectInboxByAuthor = `SELECT id, author_id FROM inboxes WHERE author_id = ?`

	sqlInsertInboxItem = `INSERT INTO inbox_items(id, inbox_id, kind, object_ref, created_at) VALUES (?, ?, ?, ?, ?)
					ON CONFLICT(inbox_id, object_ref) DO NOTHING`
	sqlSelectInboxItems = `SELECT id, inbox_id, kind, object_ref, created_at FROM inbox_items
					WHERE inbox_id = ? AND kind = ? ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`
	sqlCountInboxItems  = `SELECT COUNT(*) FROM inbox_items WHERE inbox_id = ? AND kind = ?`
	sqlDeleteInboxItems = `DELETE FROM inbox_items WHERE inbox_id = ?`
)

// GetOrCreateInbox returns the author's inbox, creating it lazily.
func (db *DB) GetOrCreateInbox(authorId uuid.UUID) (error, *domain.Inbox) {
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertInbox, uuid.New().String(), authorId.String())
		return err
	})
	if err != nil {
		return err, nil
	}

	row := db.db.QueryRow(sqlSelectInboxByAuthor, authorId.String())
	var inbox domain.Inbox
	var idStr, authorIdStr string
	if err := row.Scan(&idStr, &authorIdStr); err != nil {
		return err, nil
	}
	inbox.Id, _ = uuid.Parse(idStr)
	inbox.AuthorId, _ = uuid.Parse(authorIdStr)
	return nil, &inbox
}

// AppendInboxItem inserts an item for the given object identity. Appended is
// false when an item with the same identity already exists; the unique
// constraint serializes concurrent deliveries of the same object.
func (db *DB) AppendInboxItem(inboxId uuid.UUID, kind domain.ObjectKind, ref domain.ObjectRef) (error, bool) {
	appended := false
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlInsertInboxItem,
			uuid.New().String(),
			inboxId.String(),
			string(kind),
			ref.Identity(),
			time.Now(),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		appended = n > 0
		return nil
	})
	return err, appended
}

// ReadInboxItems returns one page of items of the given kind, newest first.
func (db *DB) ReadInboxItems(inboxId uuid.UUID, kind domain.ObjectKind, page, size int) (error, *[]domain.InboxItem) {
	var total int
	if err := db.db.QueryRow(sqlCountInboxItems, inboxId.String(), string(kind)).Scan(&total); err != nil {
		return err, nil
	}
	limit, offset, err := pageBounds(total, page, size)
	if err != nil {
		return err, nil
	}

	rows, err := db.db.Query(sqlSelectInboxItems, inboxId.String(), string(kind), limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var items []domain.InboxItem
	for rows.Next() {
		var item domain.InboxItem
		var idStr, inboxIdStr, kindStr, refStr string
		if err := rows.Scan(&idStr, &inboxIdStr, &kindStr, &refStr, &item.CreatedAt); err != nil {
			return err, &items
		}
		item.Id, _ = uuid.Parse(idStr)
		item.InboxId, _ = uuid.Parse(inboxIdStr)
		item.Kind = domain.ObjectKind(kindStr)
		if localId, parseErr := uuid.Parse(refStr); parseErr == nil {
			item.Ref = domain.ObjectRef{LocalId: localId}
		} else {
			item.Ref = domain.ObjectRef{RemoteURL: refStr}
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return err, &items
	}
	return nil, &items
}

// ClearInbox removes every item from the inbox.
func (db *DB) ClearInbox(inboxId uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteInboxItems, inboxId.String())
		return err
	})
}
