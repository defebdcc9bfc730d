package domain

// Node represents one federation peer. Exactly one Node per deployment has
// IsLocal set; Host uniquely identifies a node and is matched exactly,
// never by prefix or substring.
type Node struct {
	Host              string
	ReceivingUsername string
	ReceivingPassword string
	SendingUsername   string
	SendingPassword   string
	IsLocal           bool
}
