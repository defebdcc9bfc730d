package db

import (
	"database/sql"

	"github.com/mammut-social/mammut/domain"
)

const (
	sqlInsertNode = `INSERT INTO nodes(host, receiving_username, receiving_password, sending_username, sending_password, is_local)
					VALUES (?, ?, ?, ?, ?, ?)
					ON CONFLICT(host) DO UPDATE SET
						receiving_username = excluded.receiving_username,
						receiving_password = excluded.receiving_password,
						sending_username = excluded.sending_username,
						sending_password = excluded.sending_password,
						is_local = excluded.is_local`
	sqlSelectNodeByHost = `SELECT host, receiving_username, receiving_password, sending_username, sending_password, is_local FROM nodes WHERE host = ?`
	sqlSelectAllNodes   = `SELECT host, receiving_username, receiving_password, sending_username, sending_password, is_local FROM nodes`
	sqlDeleteNode       = `DELETE FROM nodes WHERE host = ?`
)

// SaveNode inserts or replaces the registry entry for node.Host.
func (db *DB) SaveNode(node *domain.Node) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertNode,
			node.Host,
			node.ReceivingUsername,
			node.ReceivingPassword,
			node.SendingUsername,
			node.SendingPassword,
			node.IsLocal,
		)
		return err
	})
}

// ReadNodeByHost looks up a node by exact host match.
func (db *DB) ReadNodeByHost(host string) (error, *domain.Node) {
	row := db.db.QueryRow(sqlSelectNodeByHost, host)
	var node domain.Node
	err := row.Scan(
		&node.Host,
		&node.ReceivingUsername,
		&node.ReceivingPassword,
		&node.SendingUsername,
		&node.SendingPassword,
		&node.IsLocal,
	)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	return nil, &node
}

func (db *DB) ReadAllNodes() (error, *[]domain.Node) {
	rows, err := db.db.Query(sqlSelectAllNodes)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var node domain.Node
		if err := rows.Scan(&node.Host, &node.ReceivingUsername, &node.ReceivingPassword, &node.SendingUsername, &node.SendingPassword, &node.IsLocal); err != nil {
			return err, &nodes
		}
		nodes = append(nodes, node)
	}
	if err = rows.Err(); err != nil {
		return err, &nodes
	}
	return nil, &nodes
}

func (db *DB) DeleteNode(host string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteNode, host)
		return err
	})
}
