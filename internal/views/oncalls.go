package views

import (
	"context"
	"sync"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/types"
)

type OncallsAPI interface {
	ListOncalls(ctx context.Context) ([]types.Oncall, error)
}

type OncallCard struct {
	Oncall types.Oncall
}

// OncallsView lists the on-call rotations. Opening a card hands the
// oncall to a dialogs.OncallDialog.
type OncallsView struct {
	api      OncallsAPI
	notifier notify.Notifier

	mu    sync.Mutex
	state ViewState
	cards []OncallCard
}

func NewOncallsView(api OncallsAPI, n notify.Notifier) *OncallsView {
	return &OncallsView{api: api, notifier: n, state: Loading}
}

func (v *OncallsView) Load(ctx context.Context) {
	v.mu.Lock()
	v.state = Loading
	v.mu.Unlock()

	var cards []OncallCard
	oncalls, err := v.api.ListOncalls(ctx)
	if err != nil {
		v.notifier.Errorf("fetching oncalls: %v", err)
	} else {
		cards = make([]OncallCard, 0, len(oncalls))
		for _, oc := range oncalls {
			cards = append(cards, OncallCard{Oncall: oc})
		}
	}

	v.mu.Lock()
	v.cards = cards
	v.state = Loaded
	v.mu.Unlock()
}

func (v *OncallsView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *OncallsView) Cards() []OncallCard {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]OncallCard, len(v.cards))
	copy(out, v.cards)
	return out
}
