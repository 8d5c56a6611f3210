package dialogs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/types"
)

type stubSyncAPI struct {
	mu sync.Mutex

	groups    []types.UserGroup
	groupsErr error

	// syncedWith returns the current server truth; tests mutate it to
	// simulate the backend applying a mutation.
	syncedWith      []types.OncallSync
	syncedWithErr   error
	syncedWithCalls int

	addErr      error
	addCalls    int
	removeErr   error
	removeCalls int
	removedID   int

	blockRemove chan struct{}
	started     chan struct{}
	startedOnce sync.Once
}

func (s *stubSyncAPI) ListUserGroups(ctx context.Context) ([]types.UserGroup, error) {
	return s.groups, s.groupsErr
}

func (s *stubSyncAPI) SyncedWith(ctx context.Context, oncallID string) ([]types.OncallSync, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncedWithCalls++
	if s.syncedWithErr != nil {
		return nil, s.syncedWithErr
	}
	out := make([]types.OncallSync, len(s.syncedWith))
	copy(out, s.syncedWith)
	return out, nil
}

func (s *stubSyncAPI) AddSync(ctx context.Context, oncallID, userGroupID string) (*types.OncallSync, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	if s.addErr != nil {
		return nil, s.addErr
	}
	// server applies the mutation; the echo carries only identifiers
	s.syncedWith = append(s.syncedWith, types.OncallSync{
		ID: 100 + s.addCalls, OncallID: oncallID, OncallName: "primary",
		UserGroupID: userGroupID, UserGroupName: "group-" + userGroupID, UserGroupHandle: userGroupID,
	})
	return &types.OncallSync{ID: 100 + s.addCalls, OncallID: oncallID, UserGroupID: userGroupID}, nil
}

func (s *stubSyncAPI) RemoveSync(ctx context.Context, oncallSyncID int) error {
	if s.blockRemove != nil {
		s.startedOnce.Do(func() { close(s.started) })
		<-s.blockRemove
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls++
	s.removedID = oncallSyncID
	if s.removeErr != nil {
		return s.removeErr
	}
	kept := s.syncedWith[:0]
	for _, row := range s.syncedWith {
		if row.ID != oncallSyncID {
			kept = append(kept, row)
		}
	}
	s.syncedWith = kept
	return nil
}

func newSyncBox(api *stubSyncAPI) (*SyncBox, *store.Store, *notify.Recorder) {
	st := store.New()
	rec := &notify.Recorder{}
	b := NewSyncBox(api, st, rec, types.Oncall{ID: "O1", Name: "primary"})
	return b, st, rec
}

func TestSyncBoxOpen(t *testing.T) {
	api := &stubSyncAPI{
		groups:     []types.UserGroup{{ID: "G1", Name: "eng", Handle: "eng"}},
		syncedWith: []types.OncallSync{{ID: 1, OncallID: "O1", UserGroupID: "G1"}},
	}
	b, st, rec := newSyncBox(api)

	if err := b.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.State() != Ready {
		t.Fatalf("expected Ready, got %v", b.State())
	}
	if len(b.Groups()) != 1 || len(b.Syncs()) != 1 {
		t.Fatalf("unexpected data: groups=%+v syncs=%+v", b.Groups(), b.Syncs())
	}
	if rec.Count() != 0 {
		t.Fatalf("expected no notifications, got %v", rec.Messages())
	}
	if st.AnyFlag(store.OncallCardLoading) {
		t.Fatal("loading flag must clear after open settles")
	}
}

func TestSyncBoxOpenPartialFailure(t *testing.T) {
	api := &stubSyncAPI{
		groupsErr:  errors.New("slack down"),
		syncedWith: []types.OncallSync{{ID: 1, OncallID: "O1", UserGroupID: "G1"}},
	}
	b, _, rec := newSyncBox(api)

	if err := b.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.State() != Ready {
		t.Fatalf("expected Ready despite one failed fetch, got %v", b.State())
	}
	if len(b.Groups()) != 0 || len(b.Syncs()) != 1 {
		t.Fatalf("unexpected data: groups=%+v syncs=%+v", b.Groups(), b.Syncs())
	}
	if rec.Count() != 1 {
		t.Fatalf("expected exactly one notification, got %v", rec.Messages())
	}
}

func TestSyncBoxAddRepopulatesFromServer(t *testing.T) {
	api := &stubSyncAPI{groups: []types.UserGroup{{ID: "G2", Name: "sre", Handle: "sre"}}}
	b, _, rec := newSyncBox(api)
	b.Open(context.Background())

	if err := b.Select("G2"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := b.Add(context.Background()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// open fetched once, the mutation re-fetched once
	if api.syncedWithCalls != 2 {
		t.Fatalf("expected a re-fetch after the mutation, got %d synced_with calls", api.syncedWithCalls)
	}
	syncs := b.Syncs()
	if len(syncs) != 1 {
		t.Fatalf("unexpected syncs: %+v", syncs)
	}
	// the visible row carries server-enriched fields the add echo lacks,
	// proving it came from the re-fetch rather than a local append
	if syncs[0].UserGroupName != "group-G2" || syncs[0].OncallName != "primary" {
		t.Fatalf("sync list was patched locally instead of re-fetched: %+v", syncs[0])
	}
	if rec.Count() != 0 {
		t.Fatalf("expected no notifications, got %v", rec.Messages())
	}
}

func TestSyncBoxAddNoSelection(t *testing.T) {
	api := &stubSyncAPI{}
	b, _, rec := newSyncBox(api)
	b.Open(context.Background())

	err := b.Add(context.Background())
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if api.addCalls != 0 {
		t.Fatalf("validation failure must not reach the network, got %d", api.addCalls)
	}
	if rec.Count() != 1 {
		t.Fatalf("expected one notification, got %v", rec.Messages())
	}
}

func TestSyncBoxFailedAddStillRefetches(t *testing.T) {
	api := &stubSyncAPI{
		groups: []types.UserGroup{{ID: "G2"}},
		addErr: errors.New("duplicate sync"),
	}
	b, st, rec := newSyncBox(api)
	b.Open(context.Background())
	b.Select("G2")

	if err := b.Add(context.Background()); err == nil {
		t.Fatal("expected the mutation error to propagate")
	}
	if api.syncedWithCalls != 2 {
		t.Fatalf("a failed mutation must still re-fetch, got %d calls", api.syncedWithCalls)
	}
	if b.State() != Ready {
		t.Fatalf("expected Ready after the failure, got %v", b.State())
	}
	if st.AnyFlag(store.OncallCardAdding) {
		t.Fatal("adding flag must clear after a failure")
	}
	if rec.Count() != 1 {
		t.Fatalf("expected one notification, got %v", rec.Messages())
	}
}

func TestSyncBoxRemove(t *testing.T) {
	api := &stubSyncAPI{
		syncedWith: []types.OncallSync{
			{ID: 1, OncallID: "O1", UserGroupID: "G1"},
			{ID: 2, OncallID: "O1", UserGroupID: "G2"},
		},
	}
	b, _, _ := newSyncBox(api)
	b.Open(context.Background())

	if err := b.Remove(context.Background(), 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if api.removedID != 1 {
		t.Fatalf("expected sync 1 removed, got %d", api.removedID)
	}
	syncs := b.Syncs()
	if len(syncs) != 1 || syncs[0].ID != 2 {
		t.Fatalf("unexpected syncs after remove: %+v", syncs)
	}
}

func TestSyncBoxDisabledWhileRemovalInFlight(t *testing.T) {
	api := &stubSyncAPI{
		syncedWith:  []types.OncallSync{{ID: 1, OncallID: "O1", UserGroupID: "G1"}},
		removeErr:   errors.New("backend rejected"),
		blockRemove: make(chan struct{}),
		started:     make(chan struct{}),
	}
	b, _, _ := newSyncBox(api)
	b.Open(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Remove(context.Background(), 1)
	}()

	<-api.started
	if !b.Disabled() {
		t.Fatal("controls must be disabled while the removal is in flight")
	}
	if err := b.Remove(context.Background(), 1); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for a concurrent removal, got %v", err)
	}

	close(api.blockRemove)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("removal did not finish")
	}

	// re-enabled even though the removal failed
	if b.Disabled() {
		t.Fatal("controls must re-enable once the removal settles")
	}
	if b.State() != Ready {
		t.Fatalf("expected Ready, got %v", b.State())
	}
}
