// Package todo routes todo operations between the remote demo service and the
// per-owner local fallback collections.
package todo

import "github.com/manav03panchal/tidytodo/internal/config"

// Origin is where a todo lives, inferred from its id.
type Origin int

const (
	// OriginRemote ids were issued by the demo service.
	OriginRemote Origin = iota
	// OriginLocal ids were generated by this client.
	OriginLocal
)

// String returns the origin name.
func (o Origin) String() string {
	if o == OriginLocal {
		return "local"
	}
	return "remote"
}

// Classifier holds the id thresholds used for routing. Every routing
// decision goes through it.
type Classifier struct {
	DemoOwnerID        int64
	MockOwnerThreshold int64
	LocalIDThreshold   int64
}

// NewClassifier creates a classifier from the routing configuration.
func NewClassifier(cfg config.RoutingConfig) Classifier {
	return Classifier{
		DemoOwnerID:        cfg.DemoOwnerID,
		MockOwnerThreshold: cfg.MockOwnerThreshold,
		LocalIDThreshold:   cfg.LocalIDThreshold,
	}
}

// ClassifyTodoID reports whether a todo id is local-origin or remote-origin.
func (c Classifier) ClassifyTodoID(id int64) Origin {
	if id > c.LocalIDThreshold {
		return OriginLocal
	}
	return OriginRemote
}

// IsDemoOwner reports whether owner is the account that exists remotely.
func (c Classifier) IsDemoOwner(owner int64) bool {
	return owner == c.DemoOwnerID
}

// IsMockOwner reports whether owner is a locally registered account.
func (c Classifier) IsMockOwner(owner int64) bool {
	return owner > c.MockOwnerThreshold
}

// StoresLocally reports whether creates for owner go to the local collection.
func (c Classifier) StoresLocally(owner int64) bool {
	return c.IsDemoOwner(owner) || c.IsMockOwner(owner)
}
