package host

import (
	"context"
	"errors"
	"testing"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/model"
)

func newRegistry(t *testing.T, hosts ...model.Host) (*Registry, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(hosts...)
	r, err := NewRegistry(store, nil)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r, store
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name      string
		hostName  string
		address   string
		wantField string
	}{
		{"empty name", "", "1.2.3.4", "name"},
		{"blank name", "   ", "1.2.3.4", "name"},
		{"empty address", "x", "", "address"},
		{"blank address", "x", " \t", "address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newRegistry(t)

			_, err := r.Add(tt.hostName, tt.address)

			var vErr *errs.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, vErr.Field)
			}
			if r.Len() != 0 || store.Saves != 0 {
				t.Error("invalid host must not be stored")
			}
		})
	}
}

func TestAdd_ThenList(t *testing.T) {
	r, store := newRegistry(t)

	h, err := r.Add("x", "1.2.3.4")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list := r.List()
	matches := 0
	for _, got := range list {
		if got.Equal(h) {
			matches++
		}
	}
	if len(list) != 1 || matches != 1 {
		t.Errorf("expected exactly one matching entry, got %+v", list)
	}
	if store.Saves != 1 {
		t.Errorf("expected 1 save, got %d", store.Saves)
	}

	persisted, _ := store.Load()
	if len(persisted) != 1 || !persisted[0].Equal(h) {
		t.Errorf("host list not persisted: %+v", persisted)
	}
}

func TestAdd_TrimsAndPreservesOrder(t *testing.T) {
	r, _ := newRegistry(t, model.Host{Name: "a", Address: "1.1.1.1"})

	if _, err := r.Add(" b ", " 2.2.2.2 "); err != nil {
		t.Fatal(err)
	}

	list := r.List()
	if len(list) != 2 || list[1] != (model.Host{Name: "b", Address: "2.2.2.2"}) {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestAdd_SaveFailureLeavesListUnchanged(t *testing.T) {
	r, store := newRegistry(t)
	store.Err = errors.New("disk full")

	if _, err := r.Add("x", "1.2.3.4"); err == nil {
		t.Fatal("expected save error")
	}
	if r.Len() != 0 {
		t.Errorf("list changed despite failed save: %+v", r.List())
	}
}

func TestRemove(t *testing.T) {
	a := model.Host{Name: "a", Address: "1.1.1.1"}
	b := model.Host{Name: "b", Address: "2.2.2.2"}
	r, store := newRegistry(t, a, b, a)

	removed, err := r.Remove(a)
	if err != nil || !removed {
		t.Fatalf("Remove failed: removed=%v err=%v", removed, err)
	}

	list := r.List()
	if len(list) != 2 || !list[0].Equal(b) || !list[1].Equal(a) {
		t.Errorf("expected only the first match removed, got %+v", list)
	}
	if store.Saves != 1 {
		t.Errorf("expected 1 save, got %d", store.Saves)
	}
}

func TestRemove_NoOp(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		r, store := newRegistry(t)
		removed, err := r.Remove(model.Host{Name: "x", Address: "1.2.3.4"})
		if err != nil || removed {
			t.Errorf("expected no-op, got removed=%v err=%v", removed, err)
		}
		if store.Saves != 0 {
			t.Error("no-op remove must not persist")
		}
	})

	t.Run("structural mismatch", func(t *testing.T) {
		r, _ := newRegistry(t, model.Host{Name: "x", Address: "1.2.3.4"})
		removed, err := r.Remove(model.Host{Name: "x", Address: "1.2.3.5"})
		if err != nil || removed {
			t.Errorf("expected no-op, got removed=%v err=%v", removed, err)
		}
		if r.Len() != 1 {
			t.Error("list should be unchanged")
		}
	})
}

func TestChoose(t *testing.T) {
	a := model.Host{Name: "a", Address: "1.1.1.1"}
	b := model.Host{Name: "b", Address: "2.2.2.2"}

	t.Run("selection", func(t *testing.T) {
		store := NewMemoryStore(a, b)
		r, _ := NewRegistry(store, ChooserFunc(func(_ context.Context, hosts []model.Host) (model.Host, bool, error) {
			return hosts[1], true, nil
		}))
		h, ok, err := r.Choose(context.Background())
		if err != nil || !ok || !h.Equal(b) {
			t.Errorf("unexpected choice %+v ok=%v err=%v", h, ok, err)
		}
	})

	t.Run("cancel is not an error", func(t *testing.T) {
		store := NewMemoryStore(a)
		r, _ := NewRegistry(store, ChooserFunc(func(context.Context, []model.Host) (model.Host, bool, error) {
			return model.Host{}, false, nil
		}))
		_, ok, err := r.Choose(context.Background())
		if err != nil || ok {
			t.Errorf("expected abandoned choice, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("empty registry", func(t *testing.T) {
		called := false
		r, _ := NewRegistry(NewMemoryStore(), ChooserFunc(func(context.Context, []model.Host) (model.Host, bool, error) {
			called = true
			return model.Host{}, true, nil
		}))
		_, ok, err := r.Choose(context.Background())
		if ok || err != nil || called {
			t.Errorf("expected no choice without hosts, ok=%v err=%v called=%v", ok, err, called)
		}
	})
}

func TestList_IsSnapshot(t *testing.T) {
	r, _ := newRegistry(t, model.Host{Name: "a", Address: "1.1.1.1"})
	list := r.List()
	list[0].Name = "mutated"

	if h, ok := r.FindByName("a"); !ok || h.Address != "1.1.1.1" {
		t.Error("mutating the snapshot changed the registry")
	}
}
