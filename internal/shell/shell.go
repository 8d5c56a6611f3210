package shell

import (
	"context"
	"fmt"

	"github.com/oncallboard/oncallboard/internal/api"
	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/store"
	"github.com/oncallboard/oncallboard/internal/views"
)

// View is anything the shell can mount.
type View interface {
	Load(ctx context.Context)
	State() views.ViewState
}

// Shell maps paths to view constructors, the application's top-level
// navigation. Each Navigate mounts a fresh view; mounting triggers its
// fetches.
type Shell struct {
	routes map[string]func() View
}

func New(client *api.Client, st *store.Store, n notify.Notifier) *Shell {
	return &Shell{
		routes: map[string]func() View{
			"/users":   func() View { return views.NewUsersView(client, st, n) },
			"/oncalls": func() View { return views.NewOncallsView(client, n) },
		},
	}
}

func (s *Shell) Navigate(ctx context.Context, path string) (View, error) {
	construct, ok := s.routes[path]
	if !ok {
		return nil, fmt.Errorf("shell: no route for %q", path)
	}
	v := construct()
	v.Load(ctx)
	return v, nil
}

func (s *Shell) Routes() []string {
	paths := make([]string, 0, len(s.routes))
	for p := range s.routes {
		paths = append(paths, p)
	}
	return paths
}
