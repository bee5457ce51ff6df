package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/transport"
	"github.com/klauern/boxsync/internal/transport/transporttest"
	"github.com/klauern/boxsync/internal/util"
)

func newResolver() *Resolver {
	return NewResolver(transport.NewDialer(transport.Options{}))
}

func TestSavePath(t *testing.T) {
	tests := []struct {
		remote string
		dest   string
		want   string
	}{
		{"/hello.js", "/tmp/hello.js", "/tmp/hello.js"},
		{"/HELLO.JS", "/tmp/hello", "/tmp/hello"},
		{"/project", "/tmp/project", "/tmp/project.zip"},
		{"/todo.box", "/tmp/todo.box", "/tmp/todo.box.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			util.AssertEqual(t, SavePath(tt.remote, tt.dest), tt.want)
		})
	}
}

func TestDefaultDest(t *testing.T) {
	util.AssertEqual(t, DefaultDest("/scripts/hello.js", "out"), filepath.Join("out", "hello.js"))
	util.AssertEqual(t, DefaultDest("/", "out"), filepath.Join("out", "download"))
}

func TestFetch_Script(t *testing.T) {
	device := transporttest.NewDevice(t)
	device.AddFile("/hello.js", []byte("console.log('hi')"))
	dest := filepath.Join(t.TempDir(), "hello.js")

	saved, err := newResolver().Fetch(context.Background(), device.Host("box"), "/hello.js", dest)
	util.AssertNoError(t, err)
	util.AssertEqual(t, saved, dest)

	got, err := os.ReadFile(saved)
	util.AssertNoError(t, err)
	util.AssertEqual(t, string(got), "console.log('hi')")
	if _, err := os.Stat(dest + PartSuffix); !os.IsNotExist(err) {
		t.Error("part file should be gone")
	}
}

func TestFetch_ProjectGetsZipSuffix(t *testing.T) {
	device := transporttest.NewDevice(t)
	device.AddFile("/project", []byte("PK\x03\x04"))
	dest := filepath.Join(t.TempDir(), "nested", "project")

	saved, err := newResolver().Fetch(context.Background(), device.Host("box"), "/project", dest)
	util.AssertNoError(t, err)
	util.AssertEqual(t, saved, dest+".zip")
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("nothing should be written at the bare destination")
	}
}

func TestFetch_NotFoundLeavesNothing(t *testing.T) {
	device := transporttest.NewDevice(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing.js")

	_, err := newResolver().Fetch(context.Background(), device.Host("box"), "/missing.js", dest)

	var nfErr *errs.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

func TestFetch_OverwritesExisting(t *testing.T) {
	device := transporttest.NewDevice(t)
	device.AddFile("/a.js", []byte("new"))
	dest := filepath.Join(t.TempDir(), "a.js")
	util.WriteFile(t, dest, "old")

	_, err := newResolver().Fetch(context.Background(), device.Host("box"), "/a.js", dest)
	util.AssertNoError(t, err)
	got, _ := os.ReadFile(dest)
	util.AssertEqual(t, string(got), "new")
}

func TestList(t *testing.T) {
	device := transporttest.NewDevice(t)
	device.AddDir("/", model.RemoteEntry{Name: "a.js", Path: "/a.js"})

	entries, err := newResolver().List(context.Background(), device.Host("box"), "/")
	util.AssertNoError(t, err)
	if len(entries) != 1 || entries[0].Name != "a.js" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestSelect(t *testing.T) {
	device := transporttest.NewDevice(t)
	device.AddDir("/", model.RemoteEntry{Name: "a.js", Path: "/a.js"}, model.RemoteEntry{Name: "b", Path: "/b"})
	device.AddDir("/empty")

	pickSecond := EntryChooserFunc(func(_ context.Context, entries []model.RemoteEntry) (model.RemoteEntry, bool, error) {
		return entries[1], true, nil
	})
	cancel := EntryChooserFunc(func(context.Context, []model.RemoteEntry) (model.RemoteEntry, bool, error) {
		return model.RemoteEntry{}, false, nil
	})

	r := newResolver()
	e, ok, err := r.Select(context.Background(), device.Host("box"), "/", pickSecond)
	util.AssertNoError(t, err)
	if !ok || e.Path != "/b" {
		t.Errorf("expected /b, got %+v ok=%v", e, ok)
	}

	_, ok, err = r.Select(context.Background(), device.Host("box"), "/", cancel)
	util.AssertNoError(t, err)
	if ok {
		t.Error("cancelled selection should report ok=false")
	}

	_, ok, err = r.Select(context.Background(), device.Host("box"), "/empty", pickSecond)
	util.AssertNoError(t, err)
	if ok {
		t.Error("empty listing should report ok=false")
	}
}
