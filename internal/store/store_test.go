package store

import (
	"context"
	"errors"
	"testing"

	"github.com/oncallboard/oncallboard/internal/types"
)

type stubMappingLister struct {
	mappings []types.UserMapping
	err      error
	calls    int
}

func (s *stubMappingLister) ListUserMappings(ctx context.Context) ([]types.UserMapping, error) {
	s.calls++
	return s.mappings, s.err
}

func TestReplaceUserMappingsIsWholesale(t *testing.T) {
	s := New()
	s.ReplaceUserMappings([]types.UserMapping{
		{ID: 1, SlackUserID: "U1", OpsgenieUserID: "og-1"},
		{ID: 2, SlackUserID: "U2", OpsgenieUserID: "og-2"},
	})

	s.ReplaceUserMappings([]types.UserMapping{
		{ID: 3, SlackUserID: "U3", OpsgenieUserID: "og-3"},
	})

	if _, ok := s.MappingFor("U1"); ok {
		t.Fatal("old mapping survived a wholesale replace")
	}
	m, ok := s.MappingFor("U3")
	if !ok || m.OpsgenieUserID != "og-3" {
		t.Fatalf("expected new mapping, got %+v ok=%v", m, ok)
	}
	if s.MappingCount() != 1 {
		t.Fatalf("expected 1 mapping, got %d", s.MappingCount())
	}
}

func TestFlags(t *testing.T) {
	s := New()
	if s.AnyFlag(OncallCardLoading, NotificationsAdding) {
		t.Fatal("no flag should be set initially")
	}

	s.SetFlag(NotificationsAdding, true)
	if !s.Flag(NotificationsAdding) {
		t.Fatal("flag not set")
	}
	if !s.AnyFlag(OncallCardLoading, NotificationsAdding) {
		t.Fatal("AnyFlag missed a set flag")
	}

	s.SetFlag(NotificationsAdding, false)
	if s.AnyFlag(OncallCardLoading, NotificationsAdding) {
		t.Fatal("flag should be cleared")
	}
}

func TestSubscribe(t *testing.T) {
	s := New()
	var fired int
	unsubscribe := s.Subscribe(func() { fired++ })

	s.SetUsersLoaded(true)
	s.SetFlag(UserMapBusy, true)
	s.ReplaceUserMappings(nil)
	if fired != 3 {
		t.Fatalf("expected 3 notifications, got %d", fired)
	}

	unsubscribe()
	s.SetUsersLoaded(false)
	if fired != 3 {
		t.Fatalf("expected no notification after unsubscribe, got %d", fired)
	}
}

func TestRefreshUserMappings(t *testing.T) {
	s := New()
	lister := &stubMappingLister{mappings: []types.UserMapping{{ID: 1, SlackUserID: "U1", OpsgenieUserID: "og-1"}}}

	if err := s.RefreshUserMappings(context.Background(), lister); err != nil {
		t.Fatalf("RefreshUserMappings: %v", err)
	}
	if lister.calls != 1 {
		t.Fatalf("expected 1 list call, got %d", lister.calls)
	}
	if _, ok := s.MappingFor("U1"); !ok {
		t.Fatal("mapping table not rebuilt")
	}
}

func TestRefreshUserMappingsFailureKeepsTable(t *testing.T) {
	s := New()
	s.ReplaceUserMappings([]types.UserMapping{{ID: 1, SlackUserID: "U1", OpsgenieUserID: "og-1"}})

	lister := &stubMappingLister{err: errors.New("backend down")}
	if err := s.RefreshUserMappings(context.Background(), lister); err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := s.MappingFor("U1"); !ok {
		t.Fatal("failed refresh must leave the previous table intact")
	}
}
