package federation

import (
	"testing"

	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
)

func setupRegistry(t *testing.T) (*NodeRegistry, *db.DB) {
	database := setupTestDB(t)
	registry := NewNodeRegistry(database)

	local := &domain.Node{Host: "node1.example.com", IsLocal: true}
	peer := &domain.Node{
		Host:              "node2.example.com",
		ReceivingUsername: "node2user",
		ReceivingPassword: "node2pass",
		SendingUsername:   "node1user",
		SendingPassword:   "node1pass",
	}
	if err := database.SaveNode(local); err != nil {
		t.Fatalf("SaveNode failed: %v", err)
	}
	if err := database.SaveNode(peer); err != nil {
		t.Fatalf("SaveNode failed: %v", err)
	}
	return registry, database
}

func TestLookupByHostExactMatch(t *testing.T) {
	registry, _ := setupRegistry(t)

	if registry.LookupByHost("node2.example.com") == nil {
		t.Error("Expected registered peer to be found")
	}

	// A host embedding a trusted one must never match
	tests := []string{
		"node2.example.com.evil.net",
		"evil-node2.example.com",
		"node2",
		"NODE2.EXAMPLE.COM.attacker.io",
	}
	for _, host := range tests {
		if registry.LookupByHost(host) != nil {
			t.Errorf("Host '%s' must not match a registered node", host)
		}
	}
}

func TestCredentialsFor(t *testing.T) {
	registry, _ := setupRegistry(t)

	username, password, ok := registry.CredentialsFor("node2.example.com")
	if !ok {
		t.Fatal("Expected sending credential for registered peer")
	}
	if username != "node1user" || password != "node1pass" {
		t.Errorf("Unexpected credential %s:%s", username, password)
	}

	if _, _, ok := registry.CredentialsFor("unknown.example.com"); ok {
		t.Error("Expected no credential for unknown host")
	}

	// The local node never gets a sending credential
	if _, _, ok := registry.CredentialsFor("node1.example.com"); ok {
		t.Error("Expected no credential for the local node")
	}
}

func TestIsLocalAndLocalNode(t *testing.T) {
	registry, _ := setupRegistry(t)

	if !registry.IsLocal("node1.example.com") {
		t.Error("Expected node1 to be local")
	}
	if registry.IsLocal("node2.example.com") {
		t.Error("Expected node2 to be a peer")
	}

	local := registry.LocalNode()
	if local == nil || local.Host != "node1.example.com" {
		t.Error("Expected LocalNode to return node1")
	}
}

func TestPeers(t *testing.T) {
	registry, _ := setupRegistry(t)

	peers := registry.Peers()
	if len(peers) != 1 {
		t.Fatalf("Expected 1 peer, got %d", len(peers))
	}
	if peers[0].Host != "node2.example.com" {
		t.Errorf("Unexpected peer '%s'", peers[0].Host)
	}
}

func TestAuthenticatePeer(t *testing.T) {
	registry, _ := setupRegistry(t)

	node := registry.AuthenticatePeer("node2user", "node2pass")
	if node == nil || node.Host != "node2.example.com" {
		t.Error("Expected matching receiving credential to authenticate node2")
	}

	if registry.AuthenticatePeer("node2user", "wrong") != nil {
		t.Error("Expected wrong password to be rejected")
	}
	if registry.AuthenticatePeer("ghost", "node2pass") != nil {
		t.Error("Expected unknown username to be rejected")
	}
}

func TestResolveNodeContext(t *testing.T) {
	registry, _ := setupRegistry(t)

	// Request hitting the local host needs no credential
	local := registry.Resolve("node1.example.com", "", "")
	if !local.IsLocal() || !local.Authorized() {
		t.Error("Expected local node context")
	}

	// Peer with valid receiving credential
	peer := registry.Resolve("node1.example.com.public", "node2user", "node2pass")
	if peer.IsLocal() {
		t.Error("Peer must not be local")
	}
	if !peer.Authorized() {
		t.Error("Expected authenticated peer to be authorized")
	}

	// No credential and not the local host
	anon := registry.Resolve("somewhere.else", "", "")
	if anon.Authorized() {
		t.Error("Expected anonymous request to be unauthorized")
	}

	// Wrong credential
	bad := registry.Resolve("somewhere.else", "node2user", "wrong")
	if bad.Authorized() {
		t.Error("Expected bad credential to be unauthorized")
	}
}
