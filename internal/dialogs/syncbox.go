package dialogs

import (
	"context"
	"sync"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/types"
)

// SyncAPI is the slice of the API client the sync box needs.
type SyncAPI interface {
	ListUserGroups(ctx context.Context) ([]types.UserGroup, error)
	SyncedWith(ctx context.Context, oncallID string) ([]types.OncallSync, error)
	AddSync(ctx context.Context, oncallID, userGroupID string) (*types.OncallSync, error)
	RemoveSync(ctx context.Context, oncallSyncID int) error
}

// SyncBox manages the user-group syncs of one oncall. The visible sync
// list is always server truth: every mutation is followed by a re-fetch
// of synced_with, never a local patch.
type SyncBox struct {
	api      SyncAPI
	store    *store.Store
	notifier notify.Notifier
	oncall   types.Oncall

	mu       sync.Mutex
	state    State
	gen      uint64
	groups   []types.UserGroup
	syncs    []types.OncallSync
	selected string
}

func NewSyncBox(api SyncAPI, st *store.Store, n notify.Notifier, oncall types.Oncall) *SyncBox {
	return &SyncBox{api: api, store: st, notifier: n, oncall: oncall}
}

// Open fetches the user-group candidate list and the oncall's current
// syncs concurrently, settling both before the box becomes Ready. A
// failed fetch is notified once and contributes an empty list.
func (b *SyncBox) Open(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Closed {
		b.mu.Unlock()
		return ErrBusy
	}
	b.gen++
	gen := b.gen
	b.state = Opening
	b.groups = nil
	b.syncs = nil
	b.selected = ""
	b.mu.Unlock()

	b.store.SetFlag(store.OncallCardLoading, true)
	defer b.store.SetFlag(store.OncallCardLoading, false)

	var (
		groups []types.UserGroup
		syncs  []types.OncallSync
		wg     sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		got, err := b.api.ListUserGroups(ctx)
		if err != nil {
			b.notifier.Errorf("fetching user groups: %v", err)
			return
		}
		groups = got
	}()
	go func() {
		defer wg.Done()
		got, err := b.api.SyncedWith(ctx, b.oncall.ID)
		if err != nil {
			b.notifier.Errorf("fetching oncall syncs: %v", err)
			return
		}
		syncs = got
	}()
	wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return nil
	}
	b.groups = groups
	b.syncs = syncs
	b.state = Ready
	return nil
}

func (b *SyncBox) Select(userGroupID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Ready {
		return ErrNotOpen
	}
	b.selected = userGroupID
	return nil
}

// Add syncs the oncall with the selected user group, then re-fetches the
// sync list regardless of the mutation's outcome.
func (b *SyncBox) Add(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Ready {
		b.mu.Unlock()
		b.notifier.Errorf("syncing %s: operation already in progress", b.oncall.Name)
		return ErrBusy
	}
	if b.selected == "" {
		b.mu.Unlock()
		b.notifier.Errorf("syncing %s: no user group selected", b.oncall.Name)
		return ErrNoSelection
	}
	gen := b.gen
	selected := b.selected
	b.state = Mutating
	b.mu.Unlock()

	b.store.SetFlag(store.OncallCardAdding, true)
	defer b.store.SetFlag(store.OncallCardAdding, false)

	_, err := b.api.AddSync(ctx, b.oncall.ID, selected)
	if err != nil {
		b.notifier.Errorf("adding oncall sync: %v", err)
	}

	b.refetch(ctx, gen)
	return err
}

// Remove deletes one sync row, then re-fetches the sync list regardless
// of the mutation's outcome.
func (b *SyncBox) Remove(ctx context.Context, oncallSyncID int) error {
	b.mu.Lock()
	if b.state != Ready {
		b.mu.Unlock()
		b.notifier.Errorf("unsyncing %s: operation already in progress", b.oncall.Name)
		return ErrBusy
	}
	gen := b.gen
	b.state = Mutating
	b.mu.Unlock()

	b.store.SetFlag(store.OncallCardDeleting, true)
	defer b.store.SetFlag(store.OncallCardDeleting, false)

	err := b.api.RemoveSync(ctx, oncallSyncID)
	if err != nil {
		b.notifier.Errorf("removing oncall sync: %v", err)
	}

	b.refetch(ctx, gen)
	return err
}

// refetch replaces the visible sync list with server truth. Stale results
// (the box was closed or reopened meanwhile) are dropped.
func (b *SyncBox) refetch(ctx context.Context, gen uint64) {
	syncs, err := b.api.SyncedWith(ctx, b.oncall.ID)
	if err != nil {
		b.notifier.Errorf("fetching oncall syncs: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	if err == nil {
		b.syncs = syncs
	}
	b.state = Ready
}

func (b *SyncBox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.state = Closed
	b.selected = ""
}

func (b *SyncBox) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *SyncBox) Groups() []types.UserGroup {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.UserGroup, len(b.groups))
	copy(out, b.groups)
	return out
}

func (b *SyncBox) Syncs() []types.OncallSync {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.OncallSync, len(b.syncs))
	copy(out, b.syncs)
	return out
}

// Disabled spans this box's own loading, adding and deleting flags.
func (b *SyncBox) Disabled() bool {
	return b.store.AnyFlag(store.OncallCardLoading, store.OncallCardAdding, store.OncallCardDeleting)
}
