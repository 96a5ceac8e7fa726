// Package inventory provides the read-mostly catalog index. A sync builds a
// complete new snapshot and publishes it with a single atomic pointer swap;
// readers in flight keep the snapshot they started with.
package inventory

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/buildsphere-ai/buildsphere/libs/matching-engine/internal/matching"
)

// ErrEmptyCatalog indicates a read against an index that has never synced.
var ErrEmptyCatalog = errors.New("inventory catalog is empty")

// Snapshot is an immutable view of the catalog at one sync point.
type Snapshot struct {
	Items    []matching.InventoryItem
	Version  uint64
	SyncedAt time.Time
}

// Lookup returns the item with the given id from this snapshot.
func (s *Snapshot) Lookup(id string) (matching.InventoryItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return matching.InventoryItem{}, false
}

// Index holds the current catalog snapshot. Single writer, many readers; the
// pointer swap is the only synchronization point.
type Index struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	idx := &Index{}
	idx.current.Store(&Snapshot{})
	return idx
}

// Replace validates the items and atomically publishes them as the new
// snapshot, replacing the previous catalog wholesale.
func (idx *Index) Replace(items []matching.InventoryItem) (*Snapshot, error) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("invalid inventory item: %w", err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate inventory item id %s", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	snapshot := &Snapshot{
		Items:    append([]matching.InventoryItem(nil), items...),
		Version:  idx.version.Add(1),
		SyncedAt: time.Now(),
	}
	idx.current.Store(snapshot)
	return snapshot, nil
}

// Snapshot returns the current catalog snapshot.
func (idx *Index) Snapshot() *Snapshot {
	return idx.current.Load()
}

// Len returns the item count of the current snapshot.
func (idx *Index) Len() int {
	return len(idx.current.Load().Items)
}
