package tui

import (
	"context"

	"github.com/klauern/boxsync/internal/download"
	"github.com/klauern/boxsync/internal/host"
	"github.com/klauern/boxsync/internal/model"
)

// HostItems renders hosts as picker rows.
func HostItems(hosts []model.Host) []Item {
	items := make([]Item, len(hosts))
	for i, h := range hosts {
		items[i] = Item{Title: h.Name, Detail: h.Address}
	}
	return items
}

// EntryItems renders remote entries as picker rows.
func EntryItems(entries []model.RemoteEntry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Title: e.Name, Detail: e.Path}
	}
	return items
}

// HostChooser returns a host.Chooser backed by a full-screen picker.
func HostChooser(title string) host.Chooser {
	return host.ChooserFunc(func(_ context.Context, hosts []model.Host) (model.Host, bool, error) {
		i, ok, err := runPicker(title, HostItems(hosts))
		if err != nil || !ok {
			return model.Host{}, false, err
		}
		return hosts[i], true, nil
	})
}

// EntryChooser returns a download.EntryChooser backed by a full-screen picker.
func EntryChooser(title string) download.EntryChooser {
	return download.EntryChooserFunc(func(_ context.Context, entries []model.RemoteEntry) (model.RemoteEntry, bool, error) {
		i, ok, err := runPicker(title, EntryItems(entries))
		if err != nil || !ok {
			return model.RemoteEntry{}, false, err
		}
		return entries[i], true, nil
	})
}
