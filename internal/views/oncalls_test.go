package views

import (
	"context"
	"errors"
	"testing"

	"github.com/oncallboard/oncallboard/internal/notify"
	"github.com/oncallboard/oncallboard/internal/types"
)

type stubOncallsAPI struct {
	oncalls []types.Oncall
	err     error
}

func (s *stubOncallsAPI) ListOncalls(ctx context.Context) ([]types.Oncall, error) {
	return s.oncalls, s.err
}

func TestOncallsViewLoad(t *testing.T) {
	api := &stubOncallsAPI{oncalls: []types.Oncall{
		{ID: "O1", Name: "primary"},
		{ID: "O2", Name: "secondary"},
	}}
	rec := &notify.Recorder{}

	v := NewOncallsView(api, rec)
	if v.State() != Loading {
		t.Fatalf("expected Loading before load, got %v", v.State())
	}

	v.Load(context.Background())
	if v.State() != Loaded {
		t.Fatalf("expected Loaded, got %v", v.State())
	}
	cards := v.Cards()
	if len(cards) != 2 || cards[0].Oncall.Name != "primary" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
	if rec.Count() != 0 {
		t.Fatalf("expected no notifications, got %v", rec.Messages())
	}
}

func TestOncallsViewFetchFailure(t *testing.T) {
	api := &stubOncallsAPI{err: errors.New("opsgenie down")}
	rec := &notify.Recorder{}

	v := NewOncallsView(api, rec)
	v.Load(context.Background())

	if v.State() != Loaded {
		t.Fatalf("a failed fetch must still reach Loaded, got %v", v.State())
	}
	if len(v.Cards()) != 0 {
		t.Fatalf("expected an empty list, got %+v", v.Cards())
	}
	if rec.Count() != 1 {
		t.Fatalf("expected exactly one notification, got %v", rec.Messages())
	}
}
