package federation

import (
	"database/sql"
	"log"

	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
)

// NodeRegistry is the set of peer nodes this deployment trusts, keyed by
// exact host. It is constructed once at startup and passed explicitly to
// the ingestion protocol and the proxy. Lookup misses return nil, never an
// error; callers decide what an unknown node means.
type NodeRegistry struct {
	db *db.DB
}

func NewNodeRegistry(database *db.DB) *NodeRegistry {
	return &NodeRegistry{db: database}
}

// LookupByHost returns the node registered under exactly that host, or nil.
// Substring or prefix matching would let a hostile host that embeds a
// trusted one pass, so it is never used here.
func (r *NodeRegistry) LookupByHost(host string) *domain.Node {
	err, node := r.db.ReadNodeByHost(host)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		log.Printf("Registry: lookup for %s failed: %v", host, err)
		return nil
	}
	return node
}

// CredentialsFor returns the sending credential this node presents to the
// peer at host. ok is false when no usable credential is configured.
func (r *NodeRegistry) CredentialsFor(host string) (username, password string, ok bool) {
	node := r.LookupByHost(host)
	if node == nil || node.IsLocal || node.SendingUsername == "" {
		return "", "", false
	}
	return node.SendingUsername, node.SendingPassword, true
}

// IsLocal reports whether host is this deployment's own declared host.
func (r *NodeRegistry) IsLocal(host string) bool {
	node := r.LookupByHost(host)
	return node != nil && node.IsLocal
}

// LocalNode returns the single node with the is_local flag, or nil when the
// deployment is misconfigured.
func (r *NodeRegistry) LocalNode() *domain.Node {
	err, nodes := r.db.ReadAllNodes()
	if err != nil || nodes == nil {
		return nil
	}
	for i := range *nodes {
		if (*nodes)[i].IsLocal {
			return &(*nodes)[i]
		}
	}
	return nil
}

// Peers returns every registered non-local node.
func (r *NodeRegistry) Peers() []domain.Node {
	err, nodes := r.db.ReadAllNodes()
	if err != nil || nodes == nil {
		return nil
	}
	var peers []domain.Node
	for _, node := range *nodes {
		if !node.IsLocal {
			peers = append(peers, node)
		}
	}
	return peers
}

// AuthenticatePeer matches an HTTP Basic credential against the receiving
// entries of every registered peer. Returns the matching node or nil.
func (r *NodeRegistry) AuthenticatePeer(username, password string) *domain.Node {
	err, nodes := r.db.ReadAllNodes()
	if err != nil || nodes == nil {
		return nil
	}
	for i, node := range *nodes {
		if node.IsLocal {
			continue
		}
		if node.ReceivingUsername == username && node.ReceivingPassword == password {
			return &(*nodes)[i]
		}
	}
	return nil
}

// NodeContext is the resolved identity of the calling node for one request,
// threaded through the handler instead of re-queried ad hoc.
type NodeContext struct {
	Node *domain.Node
}

// IsLocal reports whether the request originated from this node itself.
func (nc NodeContext) IsLocal() bool {
	return nc.Node != nil && nc.Node.IsLocal
}

// Authorized reports whether the request came from the local node or an
// authenticated peer.
func (nc NodeContext) Authorized() bool {
	return nc.Node != nil
}

// Resolve classifies a request by host and optional Basic credential:
// the local node (request host matches the is_local entry, no credential
// needed), an authenticated peer, or unauthorized.
func (r *NodeRegistry) Resolve(host, username, password string) NodeContext {
	if r.IsLocal(host) {
		return NodeContext{Node: r.LookupByHost(host)}
	}
	if username != "" {
		return NodeContext{Node: r.AuthenticatePeer(username, password)}
	}
	return NodeContext{}
}
