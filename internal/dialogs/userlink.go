package dialogs

import (
	"context"
	"sync"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/types"
)

// LinkAPI is the slice of the API client the linking dialog needs.
type LinkAPI interface {
	GetSlackUserMapping(ctx context.Context, slackUserID string) (*types.UserMapping, error)
	ListOpsgenieUsers(ctx context.Context) ([]types.OpsgenieUser, error)
	AddUserMap(ctx context.Context, slackID, opsgenieID string) (*types.UserMapping, error)
	RemoveUserMap(ctx context.Context, userMappingID int) error
	ListUserMappings(ctx context.Context) ([]types.UserMapping, error)
}

// UserLinkDialog maps one Slack user to one Opsgenie user. On open it
// fetches the existing mapping and the candidate list concurrently; a
// successful add or remove closes the dialog and rebuilds the shared
// mapping table so list coloring stays consistent.
type UserLinkDialog struct {
	api      LinkAPI
	store    *store.Store
	notifier notify.Notifier
	user     types.SlackUser

	mu         sync.Mutex
	state      State
	gen        uint64
	mapping    *types.UserMapping
	candidates []types.OpsgenieUser
	selected   string
}

func NewUserLinkDialog(api LinkAPI, st *store.Store, n notify.Notifier, user types.SlackUser) *UserLinkDialog {
	return &UserLinkDialog{api: api, store: st, notifier: n, user: user}
}

// Open fetches the current mapping and the Opsgenie candidate list
// concurrently. A resolved-but-nil mapping means "unmapped" and is not an
// error; a rejected fetch is notified once. Results are dropped if the
// dialog was closed or reopened while the fetches were in flight.
func (d *UserLinkDialog) Open(ctx context.Context) error {
	d.mu.Lock()
	if d.state != Closed {
		d.mu.Unlock()
		return ErrBusy
	}
	d.gen++
	gen := d.gen
	d.state = Opening
	d.mapping = nil
	d.candidates = nil
	d.selected = ""
	d.mu.Unlock()

	d.store.SetFlag(store.UserMapBusy, true)
	defer d.store.SetFlag(store.UserMapBusy, false)

	var (
		mapping    *types.UserMapping
		candidates []types.OpsgenieUser
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		got, err := d.api.GetSlackUserMapping(ctx, d.user.ID)
		if err != nil {
			d.notifier.Errorf("fetching user mapping: %v", err)
			return
		}
		mapping = got
	}()
	go func() {
		defer wg.Done()
		got, err := d.api.ListOpsgenieUsers(ctx)
		if err != nil {
			d.notifier.Errorf("fetching opsgenie users: %v", err)
			return
		}
		candidates = got
	}()
	wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return nil
	}
	d.mapping = mapping
	d.candidates = candidates
	d.state = Ready
	return nil
}

// Select picks a candidate by Opsgenie user id.
func (d *UserLinkDialog) Select(opsgenieUserID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return ErrNotOpen
	}
	d.selected = opsgenieUserID
	return nil
}

// Submit creates the mapping for the selected candidate. Validation
// failures are local: no network call happens and exactly one
// notification is emitted.
func (d *UserLinkDialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	if d.state != Ready {
		d.mu.Unlock()
		d.notifier.Errorf("linking %s: operation already in progress", d.user.DisplayName())
		return ErrBusy
	}
	if d.mapping != nil {
		d.mu.Unlock()
		d.notifier.Errorf("linking %s: already linked, remove the existing mapping first", d.user.DisplayName())
		return ErrAlreadyLinked
	}
	if d.selected == "" {
		d.mu.Unlock()
		d.notifier.Errorf("linking %s: no opsgenie user selected", d.user.DisplayName())
		return ErrNoSelection
	}
	gen := d.gen
	selected := d.selected
	d.state = Mutating
	d.mu.Unlock()

	d.store.SetFlag(store.UserMapBusy, true)
	defer d.store.SetFlag(store.UserMapBusy, false)

	if _, err := d.api.AddUserMap(ctx, d.user.ID, selected); err != nil {
		d.notifier.Errorf("adding user mapping: %v", err)
		d.mu.Lock()
		if gen == d.gen {
			d.state = Ready
		}
		d.mu.Unlock()
		return err
	}

	d.mu.Lock()
	if gen == d.gen {
		d.state = Closed
	}
	d.mu.Unlock()

	if err := d.store.RefreshUserMappings(ctx, d.api); err != nil {
		d.notifier.Errorf("refreshing user mappings: %v", err)
	}
	return nil
}

// Remove deletes the existing mapping. Without a known mapping id the
// removal is rejected locally rather than failing silently.
func (d *UserLinkDialog) Remove(ctx context.Context) error {
	d.mu.Lock()
	if d.state != Ready {
		d.mu.Unlock()
		d.notifier.Errorf("unlinking %s: operation already in progress", d.user.DisplayName())
		return ErrBusy
	}
	if d.mapping == nil || d.mapping.ID == 0 {
		d.mu.Unlock()
		d.notifier.Errorf("unlinking %s: no mapping on record, refresh and retry", d.user.DisplayName())
		return ErrNoMapping
	}
	gen := d.gen
	mappingID := d.mapping.ID
	d.state = Mutating
	d.mu.Unlock()

	d.store.SetFlag(store.UserMapBusy, true)
	defer d.store.SetFlag(store.UserMapBusy, false)

	if err := d.api.RemoveUserMap(ctx, mappingID); err != nil {
		d.notifier.Errorf("removing user mapping: %v", err)
		d.mu.Lock()
		if gen == d.gen {
			d.state = Ready
		}
		d.mu.Unlock()
		return err
	}

	d.mu.Lock()
	if gen == d.gen {
		d.state = Closed
	}
	d.mu.Unlock()

	if err := d.store.RefreshUserMappings(ctx, d.api); err != nil {
		d.notifier.Errorf("refreshing user mappings: %v", err)
	}
	return nil
}

// Close abandons the dialog. In-flight results are dropped via the
// generation token, which also covers the unmounted-while-fetching case.
func (d *UserLinkDialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.state = Closed
	d.selected = ""
}

func (d *UserLinkDialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// HasMapping reports whether an existing mapping was found on open; it
// decides whether the dialog offers Remove instead of Submit.
func (d *UserLinkDialog) HasMapping() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mapping != nil
}

func (d *UserLinkDialog) Mapping() *types.UserMapping {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mapping == nil {
		return nil
	}
	m := *d.mapping
	return &m
}

func (d *UserLinkDialog) Candidates() []types.OpsgenieUser {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.OpsgenieUser, len(d.candidates))
	copy(out, d.candidates)
	return out
}

// Busy reports whether interactive controls should be disabled.
func (d *UserLinkDialog) Busy() bool {
	d.mu.Lock()
	state := d.state
	d.mu.Unlock()
	return state == Opening || state == Mutating || d.store.Flag(store.UserMapBusy)
}
