package dialogs

import (
	"context"
	"sync"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/types"
)

// NotificationAPI is the slice of the API client the notification box
// needs.
type NotificationAPI interface {
	ListSlackChannels(ctx context.Context) ([]types.SlackChannel, error)
	NotificationsForOncall(ctx context.Context, oncallID string) ([]types.Notification, error)
	AddNotification(ctx context.Context, oncallID, slackChannelID string) (*types.Notification, error)
	RemoveNotification(ctx context.Context, notificationID int) (*types.Notification, error)
}

// NotificationBox manages the channel notifications of one oncall. Same
// shape as SyncBox: mutate, then re-fetch server truth unconditionally.
type NotificationBox struct {
	api      NotificationAPI
	store    *store.Store
	notifier notify.Notifier
	oncall   types.Oncall

	mu            sync.Mutex
	state         State
	gen           uint64
	channels      []types.SlackChannel
	notifications []types.Notification
	selected      string
}

func NewNotificationBox(api NotificationAPI, st *store.Store, n notify.Notifier, oncall types.Oncall) *NotificationBox {
	return &NotificationBox{api: api, store: st, notifier: n, oncall: oncall}
}

func (b *NotificationBox) Open(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Closed {
		b.mu.Unlock()
		return ErrBusy
	}
	b.gen++
	gen := b.gen
	b.state = Opening
	b.channels = nil
	b.notifications = nil
	b.selected = ""
	b.mu.Unlock()

	b.store.SetFlag(store.NotificationsLoading, true)
	defer b.store.SetFlag(store.NotificationsLoading, false)

	var (
		channels      []types.SlackChannel
		notifications []types.Notification
		wg            sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		got, err := b.api.ListSlackChannels(ctx)
		if err != nil {
			b.notifier.Errorf("fetching slack channels: %v", err)
			return
		}
		channels = got
	}()
	go func() {
		defer wg.Done()
		got, err := b.api.NotificationsForOncall(ctx, b.oncall.ID)
		if err != nil {
			b.notifier.Errorf("fetching notifications: %v", err)
			return
		}
		notifications = got
	}()
	wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return nil
	}
	b.channels = channels
	b.notifications = notifications
	b.state = Ready
	return nil
}

func (b *NotificationBox) Select(slackChannelID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Ready {
		return ErrNotOpen
	}
	b.selected = slackChannelID
	return nil
}

func (b *NotificationBox) Add(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Ready {
		b.mu.Unlock()
		b.notifier.Errorf("notifying for %s: operation already in progress", b.oncall.Name)
		return ErrBusy
	}
	if b.selected == "" {
		b.mu.Unlock()
		b.notifier.Errorf("notifying for %s: no slack channel selected", b.oncall.Name)
		return ErrNoSelection
	}
	gen := b.gen
	selected := b.selected
	b.state = Mutating
	b.mu.Unlock()

	b.store.SetFlag(store.NotificationsAdding, true)
	defer b.store.SetFlag(store.NotificationsAdding, false)

	_, err := b.api.AddNotification(ctx, b.oncall.ID, selected)
	if err != nil {
		b.notifier.Errorf("adding notification: %v", err)
	}

	b.refetch(ctx, gen)
	return err
}

func (b *NotificationBox) Remove(ctx context.Context, notificationID int) error {
	b.mu.Lock()
	if b.state != Ready {
		b.mu.Unlock()
		b.notifier.Errorf("removing notification for %s: operation already in progress", b.oncall.Name)
		return ErrBusy
	}
	gen := b.gen
	b.state = Mutating
	b.mu.Unlock()

	b.store.SetFlag(store.NotificationsDeleting, true)
	defer b.store.SetFlag(store.NotificationsDeleting, false)

	_, err := b.api.RemoveNotification(ctx, notificationID)
	if err != nil {
		b.notifier.Errorf("removing notification: %v", err)
	}

	b.refetch(ctx, gen)
	return err
}

func (b *NotificationBox) refetch(ctx context.Context, gen uint64) {
	notifications, err := b.api.NotificationsForOncall(ctx, b.oncall.ID)
	if err != nil {
		b.notifier.Errorf("fetching notifications: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	if err == nil {
		b.notifications = notifications
	}
	b.state = Ready
}

func (b *NotificationBox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.state = Closed
	b.selected = ""
}

func (b *NotificationBox) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *NotificationBox) Channels() []types.SlackChannel {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.SlackChannel, len(b.channels))
	copy(out, b.channels)
	return out
}

func (b *NotificationBox) Notifications() []types.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Notification, len(b.notifications))
	copy(out, b.notifications)
	return out
}

// Disabled spans this box's flags and the sibling sync box's flags: in
// the combined dialog either box's outstanding work disables both.
func (b *NotificationBox) Disabled() bool {
	return b.store.AnyFlag(
		store.OncallCardLoading, store.OncallCardAdding, store.OncallCardDeleting,
		store.NotificationsLoading, store.NotificationsAdding, store.NotificationsDeleting,
	)
}
