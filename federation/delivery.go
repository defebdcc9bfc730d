package federation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mammut-social/mammut/db"
	"github.com/mammut-social/mammut/domain"
	"github.com/mammut-social/mammut/util"
)

// Deliverer fans a locally created object out to follower inboxes. Local
// followers are ingested directly; remote followers get a synchronous HTTP
// POST with the sending credential for their host. One unreachable
// recipient never aborts delivery to the rest.
type Deliverer struct {
	db       *db.DB
	registry *NodeRegistry
	ingestor *Ingestor
	client   *http.Client
}

func NewDeliverer(database *db.DB, registry *NodeRegistry) *Deliverer {
	return &Deliverer{
		db:       database,
		registry: registry,
		ingestor: NewIngestor(database),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// DeliverPost sends the post's canonical representation to every follower
// of its author. Only PUBLIC posts leave the author's node; everything else
// stays readable through the owner's own endpoints alone. Per-recipient
// failures are logged and skipped; the number of successful deliveries is
// returned.
func (d *Deliverer) DeliverPost(post *domain.Post, author *domain.Author) int {
	if post.Visibility != domain.VisibilityPublic {
		return 0
	}

	err, count := d.db.CountCommentsByPost(post.Id)
	if err != nil {
		count = 0
	}
	body, err := json.Marshal(PostWire(post, author, count))
	if err != nil {
		log.Printf("Delivery: failed to marshal post %s: %v", post.Id, err)
		return 0
	}

	err, followers := d.db.ReadFollowers(author.Id, 1, 10000)
	if err != nil || followers == nil {
		log.Printf("Delivery: failed to read followers of %s: %v", author.Id, err)
		return 0
	}

	delivered := 0
	for i := range *followers {
		follower := &(*followers)[i]
		if err := d.deliverTo(follower, body); err != nil {
			log.Printf("Delivery: post %s to %s failed: %v", post.Id, follower.Id, err)
			continue
		}
		delivered++
	}
	return delivered
}

// deliverTo routes one delivery: straight into a local inbox, or over HTTP
// to the recipient's origin node.
func (d *Deliverer) deliverTo(recipient *domain.Author, body []byte) error {
	if recipient.IsLocal() {
		return d.ingestor.Ingest(recipient, body)
	}
	return d.deliverRemote(recipient, body)
}

func (d *Deliverer) deliverRemote(recipient *domain.Author, body []byte) error {
	host, err := HostOf(recipient.Host)
	if err != nil {
		return err
	}
	username, password, ok := d.registry.CredentialsFor(host)
	if !ok {
		return ErrNoCredential
	}

	inboxURL := fmt.Sprintf("%sauthors/%s/inbox", recipient.Host, recipient.Id)
	req, err := http.NewRequest("POST", inboxURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(username, password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", util.GetNameAndVersion())

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote server returned status: %d", resp.StatusCode)
	}
	return nil
}
