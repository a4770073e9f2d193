// Package snapshot provides named, persistent copies of floorplan documents.
//
// A snapshot freezes a document together with the options it was resolved
// with, so a layout can be reproduced later even if the source file changed.
// Two backends exist:
//   - file: JSON files under the user config directory, for CLI usage
//   - mongo: a MongoDB collection, for the server
//
// # Usage
//
// Create a store and save a snapshot:
//
//	store, err := snapshot.NewFileStore("")  // ~/.config/floorplan/snapshots/
//	if err != nil {
//	    return err
//	}
//	snap := snapshot.New("before-remodel", doc, "m")
//	if err := store.Save(ctx, snap); err != nil {
//	    return err
//	}
//
// Retrieve it later by ID:
//
//	snap, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if snap == nil {
//	    // not found
//	}
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
)

// ErrNotFound is returned by operations that require an existing snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a frozen document plus the context needed to re-resolve it.
type Snapshot struct {
	ID         string         `json:"id" bson:"_id"`
	Name       string         `json:"name" bson:"name"`
	SystemUnit string         `json:"system_unit,omitempty" bson:"system_unit,omitempty"`
	Document   *plan.Document `json:"document" bson:"document"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

// Info is the listing view of a snapshot, without the document payload.
type Info struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Info returns the listing view of s.
func (s *Snapshot) Info() Info {
	return Info{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
}

// New creates a snapshot of doc with a fresh random ID.
func New(name string, doc *plan.Document, systemUnit string) *Snapshot {
	return &Snapshot{
		ID:         uuid.NewString(),
		Name:       name,
		SystemUnit: systemUnit,
		Document:   doc,
		CreatedAt:  time.Now().UTC(),
	}
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a snapshot by ID.
	// Returns nil, nil if the snapshot doesn't exist.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Save stores a snapshot, replacing any existing snapshot with the same ID.
	Save(ctx context.Context, snap *Snapshot) error

	// List returns listing info for all snapshots, newest first.
	List(ctx context.Context) ([]Info, error)

	// Delete removes a snapshot. Deleting a missing snapshot returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
