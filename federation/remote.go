package federation

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mammut-social/mammut/util"
)

// GatherRemoteAuthors collects the author listing of every registered peer.
// Each peer is an independent federation edge: an unreachable or misbehaving
// node is logged and skipped, never failing the aggregate.
func GatherRemoteAuthors(registry *NodeRegistry) []WireAuthor {
	client := &http.Client{Timeout: 10 * time.Second}

	var all []WireAuthor
	for _, peer := range registry.Peers() {
		authors, err := fetchAuthors(client, registry, peer.Host)
		if err != nil {
			log.Printf("Federation: skipping peer %s: %v", peer.Host, err)
			continue
		}
		all = append(all, authors...)
	}
	return all
}

func fetchAuthors(client *http.Client, registry *NodeRegistry, host string) ([]WireAuthor, error) {
	username, password, ok := registry.CredentialsFor(host)
	if !ok {
		return nil, ErrNoCredential
	}

	req, err := http.NewRequest("GET", fmt.Sprintf("http://%s/authors", host), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", util.GetNameAndVersion())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("peer returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var listing struct {
		Type  string       `json:"type"`
		Items []WireAuthor `json:"items"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, ErrBadUpstream
	}
	return listing.Items, nil
}
