package federation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mammut-social/mammut/util"
)

// Proxy relays local-frontend requests to peer nodes, attaching the sending
// credential the registry holds for the target host. A host without a
// configured credential is rejected locally before any network traffic.
type Proxy struct {
	registry *NodeRegistry
	client   *http.Client
}

func NewProxy(registry *NodeRegistry) *Proxy {
	return &Proxy{
		registry: registry,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Do performs method on rawURL and returns the peer's status code and JSON
// body verbatim. Returns ErrNoCredential without calling out when the
// registry has no sending entry for the host, and ErrBadUpstream when the
// peer's body is not valid JSON.
func (p *Proxy) Do(rawURL, method string, body []byte) (int, json.RawMessage, error) {
	host, err := HostOf(rawURL)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	username, password, ok := p.registry.CredentialsFor(host)
	if !ok {
		return 0, nil, ErrNoCredential
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", util.GetNameAndVersion())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("Proxy: request to %s failed: %v", rawURL, err)
		return 0, nil, fmt.Errorf("%w: %v", ErrBadUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrBadUpstream, err)
	}
	if !json.Valid(respBody) {
		return 0, nil, ErrBadUpstream
	}

	return resp.StatusCode, respBody, nil
}
