package dialogs

import (
	"context"
	"sync"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/types"
)

// OncallAPI is everything the combined settings dialog touches.
type OncallAPI interface {
	SyncAPI
	NotificationAPI
}

// OncallDialog is the combined settings view for one oncall: the
// user-group sync box and the channel notification box side by side.
// Closing is refused while any mutation in either box is outstanding.
type OncallDialog struct {
	syncs         *SyncBox
	notifications *NotificationBox
	store         *store.Store
	notifier      notify.Notifier
	oncall        types.Oncall

	mu   sync.Mutex
	open bool
}

func NewOncallDialog(api OncallAPI, st *store.Store, n notify.Notifier, oncall types.Oncall) *OncallDialog {
	return &OncallDialog{
		syncs:         NewSyncBox(api, st, n, oncall),
		notifications: NewNotificationBox(api, st, n, oncall),
		store:         st,
		notifier:      n,
		oncall:        oncall,
	}
}

// Open mounts both boxes; their fetch fan-outs run concurrently.
func (d *OncallDialog) Open(ctx context.Context) error {
	d.mu.Lock()
	if d.open {
		d.mu.Unlock()
		return ErrBusy
	}
	d.open = true
	d.mu.Unlock()

	var (
		syncErr, notifErr error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		syncErr = d.syncs.Open(ctx)
	}()
	go func() {
		defer wg.Done()
		notifErr = d.notifications.Open(ctx)
	}()
	wg.Wait()

	if syncErr != nil {
		return syncErr
	}
	return notifErr
}

// Busy spans every flag either box writes.
func (d *OncallDialog) Busy() bool {
	return d.store.AnyFlag(
		store.OncallCardLoading, store.OncallCardAdding, store.OncallCardDeleting,
		store.NotificationsLoading, store.NotificationsAdding, store.NotificationsDeleting,
	)
}

// Close tears both boxes down. Refused while any sync or notification
// work is outstanding anywhere in the dialog.
func (d *OncallDialog) Close() error {
	if d.Busy() {
		d.notifier.Errorf("closing %s settings: operation still in progress", d.oncall.Name)
		return ErrBusy
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrNotOpen
	}
	d.syncs.Close()
	d.notifications.Close()
	d.open = false
	return nil
}

func (d *OncallDialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *OncallDialog) Syncs() *SyncBox { return d.syncs }

func (d *OncallDialog) Notifications() *NotificationBox { return d.notifications }
