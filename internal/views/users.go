package views

import (
	"context"
	"sync"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/types"
)

// UsersAPI is the slice of the API client the users view needs.
type UsersAPI interface {
	ListSlackUsers(ctx context.Context) ([]types.SlackUser, error)
	ListUserMappings(ctx context.Context) ([]types.UserMapping, error)
}

// UserCard is one renderable row: a Slack user plus whether a mapping for
// them exists in the last successfully fetched mapping table.
type UserCard struct {
	User   types.SlackUser
	Synced bool
}

// UsersView fetches Slack users and the mapping table on load, joins them
// client-side by slack_user_id, and publishes the table to the shared
// store so other components see the same truth.
type UsersView struct {
	api      UsersAPI
	store    *store.Store
	notifier notify.Notifier

	mu    sync.Mutex
	state ViewState
	cards []UserCard
}

func NewUsersView(api UsersAPI, st *store.Store, n notify.Notifier) *UsersView {
	return &UsersView{api: api, store: st, notifier: n, state: Loading}
}

// Load fans out both fetches concurrently and waits for all of them to
// settle before transitioning to Loaded. A failed fetch surfaces one
// notification and contributes an empty collection; the view still loads
// with whatever arrived.
func (v *UsersView) Load(ctx context.Context) {
	v.mu.Lock()
	v.state = Loading
	v.mu.Unlock()
	v.store.SetUsersLoaded(false)

	var (
		users    []types.SlackUser
		mappings []types.UserMapping
		wg       sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		got, err := v.api.ListSlackUsers(ctx)
		if err != nil {
			v.notifier.Errorf("fetching slack users: %v", err)
			return
		}
		users = got
	}()
	go func() {
		defer wg.Done()
		got, err := v.api.ListUserMappings(ctx)
		if err != nil {
			v.notifier.Errorf("fetching user mappings: %v", err)
			return
		}
		mappings = got
	}()
	wg.Wait()

	v.store.ReplaceUserMappings(mappings)

	cards := make([]UserCard, 0, len(users))
	for _, u := range users {
		_, synced := v.store.MappingFor(u.ID)
		cards = append(cards, UserCard{User: u, Synced: synced})
	}

	v.mu.Lock()
	v.cards = cards
	v.state = Loaded
	v.mu.Unlock()
	v.store.SetUsersLoaded(true)
}

func (v *UsersView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Cards returns the rows in fetch order; no client-side sort.
func (v *UsersView) Cards() []UserCard {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]UserCard, len(v.cards))
	copy(out, v.cards)
	return out
}
