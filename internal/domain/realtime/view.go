package realtime

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Item is one record of a view with the version it was read at.
type Item struct {
	ID      string
	Version int64
	Record  map[string]any
}

// FetchFunc reads the authoritative state of the whole collection.
type FetchFunc func(ctx context.Context) ([]Item, error)

type viewEntry struct {
	version int64
	record  map[string]any
	deleted bool
}

// View is the client side copy of a collection kept up to date by change events. A Go consumer of
// the /ws gateway keeps one View per subscription: it loads the collection through the HTTP API, then
// applies every Event received for the subscription. A record is only replaced by a version at least
// as recent as the one it holds, deleted records keep a tombstone so that a late upsert cannot bring
// them back.
type View struct {
	fetch FetchFunc
	now   func() time.Time

	mutex   sync.RWMutex
	entries map[string]viewEntry
}

func NewView(fetch FetchFunc) *View {
	return &View{
		fetch:   fetch,
		now:     time.Now,
		entries: make(map[string]viewEntry),
	}
}

// Load replaces the content of the view by a fresh read.
func (v *View) Load(ctx context.Context) error {
	return v.refetch(ctx)
}

// Apply merges e into the view. Events carrying the record patch it in place, the others make the
// view refetch.
func (v *View) Apply(ctx context.Context, e Event) error {
	if e.RecordID == "" || (e.Op == OpUpsert && e.Record == nil) {
		return v.refetch(ctx)
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.merge(e.RecordID, viewEntry{
		version: e.Version,
		record:  e.Record,
		deleted: e.Op == OpDelete,
	})
	return nil
}

func (v *View) refetch(ctx context.Context) error {
	start := v.now().UnixNano()
	items, err := v.fetch(ctx)
	if err != nil {
		return err
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	fetched := make(map[string]struct{}, len(items))
	for _, item := range items {
		fetched[item.ID] = struct{}{}
		v.merge(item.ID, viewEntry{version: item.Version, record: item.Record})
	}

	// Records absent from the read were deleted before it started.
	for id, entry := range v.entries {
		if _, ok := fetched[id]; !ok && !entry.deleted && entry.version <= start {
			v.entries[id] = viewEntry{version: start, deleted: true}
		}
	}

	return nil
}

func (v *View) merge(id string, entry viewEntry) {
	if current, ok := v.entries[id]; ok && current.version > entry.version {
		return
	}

	v.entries[id] = entry
}

func (v *View) Get(id string) (map[string]any, bool) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	entry, ok := v.entries[id]
	if !ok || entry.deleted {
		return nil, false
	}

	return entry.record, true
}

// IDs returns the ids of live records in ascending order.
func (v *View) IDs() []string {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	ids := []string{}
	for _, id := range maps.Keys(v.entries) {
		if !v.entries[id].deleted {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)
	return ids
}

func (v *View) Len() int {
	return len(v.IDs())
}
