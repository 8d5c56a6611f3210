package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/oncallboard/oncallboard/internal/api"
	"github.com/oncallboard/oncallboard/internal/dialogs"
	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/shell"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/types"
	"github.com/oncallboard/oncallboard/internal/views"
)

type app struct {
	client   *api.Client
	store    *store.Store
	notifier notify.Notifier
	shell    *shell.Shell
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	origin := os.Getenv("API_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000/api"
		log.Println("API_ORIGIN not set, defaulting to " + origin)
	}

	st := store.New()
	notifier := notify.LogNotifier{}
	client := api.New(origin)

	a := &app{
		client:   client,
		store:    st,
		notifier: notifier,
		shell:    shell.New(client, st, notifier),
	}

	a.repl(context.Background())
}

func (a *app) repl(ctx context.Context) {
	fmt.Println("oncallboard - type 'help' for commands")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "users":
			a.showUsers(ctx)
		case "oncalls":
			a.showOncalls(ctx)
		case "link":
			if len(fields) != 3 {
				fmt.Println("usage: link <slack_user_id> <opsgenie_user_id>")
				continue
			}
			a.link(ctx, fields[1], fields[2])
		case "unlink":
			if len(fields) != 2 {
				fmt.Println("usage: unlink <slack_user_id>")
				continue
			}
			a.unlink(ctx, fields[1])
		case "syncs":
			if len(fields) != 2 {
				fmt.Println("usage: syncs <oncall_id>")
				continue
			}
			a.showOncallSettings(ctx, fields[1])
		case "sync":
			if len(fields) != 3 {
				fmt.Println("usage: sync <oncall_id> <user_group_id>")
				continue
			}
			a.addSync(ctx, fields[1], fields[2])
		case "unsync":
			if len(fields) != 3 {
				fmt.Println("usage: unsync <oncall_id> <sync_id>")
				continue
			}
			a.removeSync(ctx, fields[1], fields[2])
		case "notify":
			if len(fields) != 3 {
				fmt.Println("usage: notify <oncall_id> <slack_channel_id>")
				continue
			}
			a.addNotification(ctx, fields[1], fields[2])
		case "unnotify":
			if len(fields) != 3 {
				fmt.Println("usage: unnotify <oncall_id> <notification_id>")
				continue
			}
			a.removeNotification(ctx, fields[1], fields[2])
		case "help":
			printHelp()
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q, type 'help'\n", fields[0])
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  users                                  list slack users and link status
  oncalls                                list oncall rotations
  link <slack_user_id> <opsgenie_id>     map a slack user to an opsgenie user
  unlink <slack_user_id>                 remove a slack user's mapping
  syncs <oncall_id>                      show group syncs and channel notifications
  sync <oncall_id> <user_group_id>       sync an oncall with a user group
  unsync <oncall_id> <sync_id>           remove a group sync
  notify <oncall_id> <slack_channel_id>  route an oncall's alerts to a channel
  unnotify <oncall_id> <notification_id> remove a channel notification
  quit`)
}

func (a *app) showUsers(ctx context.Context) {
	v, err := a.shell.Navigate(ctx, "/users")
	if err != nil {
		fmt.Println(err)
		return
	}
	uv := v.(*views.UsersView)
	for _, card := range uv.Cards() {
		status := "unsynced"
		if card.Synced {
			status = "synced"
		}
		fmt.Printf("%-12s %-30s %s\n", card.User.ID, card.User.DisplayName(), status)
	}
}

func (a *app) showOncalls(ctx context.Context) {
	v, err := a.shell.Navigate(ctx, "/oncalls")
	if err != nil {
		fmt.Println(err)
		return
	}
	ov := v.(*views.OncallsView)
	for _, card := range ov.Cards() {
		fmt.Printf("%-40s %s\n", card.Oncall.ID, card.Oncall.Name)
	}
}

func (a *app) link(ctx context.Context, slackID, opsgenieID string) {
	d := dialogs.NewUserLinkDialog(a.client, a.store, a.notifier, types.SlackUser{ID: slackID})
	if err := d.Open(ctx); err != nil {
		fmt.Println(err)
		return
	}
	if d.HasMapping() {
		fmt.Println("user is already linked, unlink first")
		d.Close()
		return
	}
	if err := d.Select(opsgenieID); err != nil {
		fmt.Println(err)
		return
	}
	if err := d.Submit(ctx); err != nil {
		return
	}
	fmt.Println("linked")
}

func (a *app) unlink(ctx context.Context, slackID string) {
	d := dialogs.NewUserLinkDialog(a.client, a.store, a.notifier, types.SlackUser{ID: slackID})
	if err := d.Open(ctx); err != nil {
		fmt.Println(err)
		return
	}
	if err := d.Remove(ctx); err != nil {
		return
	}
	fmt.Println("unlinked")
}

// openOncallDialog mounts the combined settings dialog for one oncall.
func (a *app) openOncallDialog(ctx context.Context, oncallID string) *dialogs.OncallDialog {
	d := dialogs.NewOncallDialog(a.client, a.store, a.notifier, types.Oncall{ID: oncallID})
	if err := d.Open(ctx); err != nil {
		fmt.Println(err)
		return nil
	}
	return d
}

func (a *app) showOncallSettings(ctx context.Context, oncallID string) {
	d := a.openOncallDialog(ctx, oncallID)
	if d == nil {
		return
	}
	defer d.Close()

	fmt.Println("user group syncs:")
	for _, s := range d.Syncs().Syncs() {
		fmt.Printf("  [%d] %s (@%s)\n", s.ID, s.UserGroupName, s.UserGroupHandle)
	}
	fmt.Println("channel notifications:")
	for _, n := range d.Notifications().Notifications() {
		fmt.Printf("  [%d] #%s\n", n.ID, n.SlackChannelName)
	}
}

func (a *app) addSync(ctx context.Context, oncallID, userGroupID string) {
	d := a.openOncallDialog(ctx, oncallID)
	if d == nil {
		return
	}
	defer d.Close()

	if err := d.Syncs().Select(userGroupID); err != nil {
		fmt.Println(err)
		return
	}
	if err := d.Syncs().Add(ctx); err != nil {
		return
	}
	fmt.Printf("synced, %d group(s) now synced\n", len(d.Syncs().Syncs()))
}

func (a *app) removeSync(ctx context.Context, oncallID, syncID string) {
	id, err := strconv.Atoi(syncID)
	if err != nil {
		fmt.Println("sync id must be a number")
		return
	}

	d := a.openOncallDialog(ctx, oncallID)
	if d == nil {
		return
	}
	defer d.Close()

	if err := d.Syncs().Remove(ctx, id); err != nil {
		return
	}
	fmt.Printf("removed, %d group(s) still synced\n", len(d.Syncs().Syncs()))
}

func (a *app) addNotification(ctx context.Context, oncallID, channelID string) {
	d := a.openOncallDialog(ctx, oncallID)
	if d == nil {
		return
	}
	defer d.Close()

	if err := d.Notifications().Select(channelID); err != nil {
		fmt.Println(err)
		return
	}
	if err := d.Notifications().Add(ctx); err != nil {
		return
	}
	fmt.Printf("notifying, %d channel(s) configured\n", len(d.Notifications().Notifications()))
}

func (a *app) removeNotification(ctx context.Context, oncallID, notificationID string) {
	id, err := strconv.Atoi(notificationID)
	if err != nil {
		fmt.Println("notification id must be a number")
		return
	}

	d := a.openOncallDialog(ctx, oncallID)
	if d == nil {
		return
	}
	defer d.Close()

	if err := d.Notifications().Remove(ctx, id); err != nil {
		return
	}
	fmt.Printf("removed, %d channel(s) still configured\n", len(d.Notifications().Notifications()))
}
