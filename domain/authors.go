package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Author is a profile known to this node. Local authors carry a bcrypt
// password hash and can log in; remote shadow authors are cached copies of
// profiles hosted elsewhere and have an empty hash. The Id is assigned by
// the origin node and is never regenerated locally.
type Author struct {
	Id           uuid.UUID
	Host         string
	DisplayName  string
	Github       string
	ProfileImage string
	PasswordHash string
	CreatedAt    time.Time
}

// IsLocal reports whether the author can authenticate against this node.
func (a *Author) IsLocal() bool {
	return a.PasswordHash != ""
}

// URL returns the canonical self URL, {host}authors/{uuid}.
func (a *Author) URL() string {
	return fmt.Sprintf("%sauthors/%s", a.Host, a.Id)
}

func (a *Author) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tDisplayName: %s \n\tHost: %s", a.Id, a.DisplayName, a.Host)
}
