// Package host manages the ordered list of named remote devices.
package host

import (
	"context"
	"fmt"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
)

// Store persists the whole host list on every change.
type Store interface {
	Load() ([]model.Host, error)
	Save(hosts []model.Host) error
}

// Chooser presents hosts for single selection. ok is false when the user
// cancels, which callers treat as an abandoned operation rather than a failure.
type Chooser interface {
	Choose(ctx context.Context, hosts []model.Host) (h model.Host, ok bool, err error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(ctx context.Context, hosts []model.Host) (model.Host, bool, error)

// Choose calls f.
func (f ChooserFunc) Choose(ctx context.Context, hosts []model.Host) (model.Host, bool, error) {
	return f(ctx, hosts)
}

// Registry is the in-memory host list backed by a Store. It is not safe
// for concurrent mutation; commands mutate it one at a time.
type Registry struct {
	store   Store
	chooser Chooser
	hosts   []model.Host
}

// NewRegistry loads the host list from store.
func NewRegistry(store Store, chooser Chooser) (*Registry, error) {
	hosts, err := store.Load()
	if err != nil {
		return nil, &errs.ConfigurationError{Message: "load host list", Err: err}
	}
	return &Registry{store: store, chooser: chooser, hosts: hosts}, nil
}

// Add validates and appends a host, then persists the list.
func (r *Registry) Add(name, address string) (model.Host, error) {
	h := model.NewHost(name, address)
	if err := h.Validate(); err != nil {
		return model.Host{}, err
	}

	next := append(r.List(), h)
	if err := r.store.Save(next); err != nil {
		return model.Host{}, fmt.Errorf("save host list: %w", err)
	}
	r.hosts = next

	logging.Info("host added", logging.Host(h.String()), logging.Count(len(r.hosts)))
	return h, nil
}

// Remove deletes the first host equal to h and persists the list.
// Removing a host that is not registered is a no-op. It reports whether a
// host was removed.
func (r *Registry) Remove(h model.Host) (bool, error) {
	idx := r.indexOf(h)
	if idx < 0 {
		logging.Debug("host not registered, nothing to remove", logging.Host(h.String()))
		return false, nil
	}

	next := make([]model.Host, 0, len(r.hosts)-1)
	next = append(next, r.hosts[:idx]...)
	next = append(next, r.hosts[idx+1:]...)
	if err := r.store.Save(next); err != nil {
		return false, fmt.Errorf("save host list: %w", err)
	}
	r.hosts = next

	logging.Info("host removed", logging.Host(h.String()), logging.Count(len(r.hosts)))
	return true, nil
}

// Choose asks the chooser to pick one host. It returns ok=false when the
// list is empty or the user cancels.
func (r *Registry) Choose(ctx context.Context) (model.Host, bool, error) {
	if len(r.hosts) == 0 || r.chooser == nil {
		return model.Host{}, false, nil
	}
	return r.chooser.Choose(ctx, r.List())
}

// List returns a snapshot of the registered hosts.
func (r *Registry) List() []model.Host {
	return append([]model.Host(nil), r.hosts...)
}

// Len returns the number of registered hosts.
func (r *Registry) Len() int {
	return len(r.hosts)
}

// FindByName returns the first host with the given name.
func (r *Registry) FindByName(name string) (model.Host, bool) {
	for _, h := range r.hosts {
		if h.Name == name {
			return h, true
		}
	}
	return model.Host{}, false
}

func (r *Registry) indexOf(h model.Host) int {
	for i, existing := range r.hosts {
		if existing.Equal(h) {
			return i
		}
	}
	return -1
}
