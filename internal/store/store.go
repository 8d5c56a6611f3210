package store

import (
	"context"
	"sync"

	"github.com/oncallboard/oncallboard/internal/types"
)

// Flag identifies one busy bit in the shared state. Writers must pair
// every Set(f, true) with a deferred Set(f, false) so dependent disable
// state never sticks after a failure.
type Flag int

const (
	OncallCardLoading Flag = iota
	OncallCardAdding
	OncallCardDeleting
	NotificationsLoading
	NotificationsAdding
	NotificationsDeleting
	UserMapBusy
)

var flagNames = map[Flag]string{
	OncallCardLoading:     "oncall_card_loading",
	OncallCardAdding:      "oncall_card_adding",
	OncallCardDeleting:    "oncall_card_deleting",
	NotificationsLoading:  "notifications_loading",
	NotificationsAdding:   "notifications_adding",
	NotificationsDeleting: "notifications_deleting",
	UserMapBusy:           "user_map_busy",
}

func (f Flag) String() string {
	if n, ok := flagNames[f]; ok {
		return n
	}
	return "unknown"
}

// MappingLister is the slice of the API client the store needs to rebuild
// the mapping table.
type MappingLister interface {
	ListUserMappings(ctx context.Context) ([]types.UserMapping, error)
}

// Store holds cross-component UI state for the lifetime of the process:
// the user-mapping table, the users-loaded flag and the per-dialog busy
// flags. It is shared by injection, not as a package-level singleton.
type Store struct {
	mu           sync.RWMutex
	userMappings map[string]types.UserMapping // slack_user_id -> mapping
	usersLoaded  bool
	flags        map[Flag]bool

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func New() *Store {
	return &Store{
		userMappings: make(map[string]types.UserMapping),
		flags:        make(map[Flag]bool),
		subs:         make(map[int]func()),
	}
}

// Subscribe registers a callback invoked after every write. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish() {
	s.subMu.Lock()
	callbacks := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (s *Store) SetFlag(f Flag, v bool) {
	s.mu.Lock()
	s.flags[f] = v
	s.mu.Unlock()
	s.publish()
}

func (s *Store) Flag(f Flag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[f]
}

// AnyFlag reports whether any of the given flags is set. Dialogs use it
// to compute their combined disable state.
func (s *Store) AnyFlag(flags ...Flag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range flags {
		if s.flags[f] {
			return true
		}
	}
	return false
}

func (s *Store) SetUsersLoaded(v bool) {
	s.mu.Lock()
	s.usersLoaded = v
	s.mu.Unlock()
	s.publish()
}

func (s *Store) UsersLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersLoaded
}

// ReplaceUserMappings rebuilds the mapping table wholesale. The table is
// never patched incrementally; server truth replaces it after every
// refresh.
func (s *Store) ReplaceUserMappings(mappings []types.UserMapping) {
	table := make(map[string]types.UserMapping, len(mappings))
	for _, m := range mappings {
		table[m.SlackUserID] = m
	}

	s.mu.Lock()
	s.userMappings = table
	s.mu.Unlock()
	s.publish()
}

func (s *Store) MappingFor(slackUserID string) (types.UserMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.userMappings[slackUserID]
	return m, ok
}

func (s *Store) MappingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.userMappings)
}

// RefreshUserMappings re-fetches the mapping table and replaces it. On
// failure the previous table is left intact and the error is returned to
// the caller for notification.
func (s *Store) RefreshUserMappings(ctx context.Context, lister MappingLister) error {
	mappings, err := lister.ListUserMappings(ctx)
	if err != nil {
		return err
	}
	s.ReplaceUserMappings(mappings)
	return nil
}
