package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/util"
)

func newWatcher(t *testing.T, fn SyncFunc, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(fn, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func noopSync(context.Context, string) error { return nil }

func TestWatch_RejectsNonScript(t *testing.T) {
	w := newWatcher(t, noopSync)
	file := filepath.Join(t.TempDir(), "config.json")
	util.WriteFile(t, file, "{}")

	_, err := w.Watch(file)

	var vErr *errs.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(w.Paths()) != 0 {
		t.Error("nothing should be watched")
	}
}

func TestWatch_Dedupe(t *testing.T) {
	w := newWatcher(t, noopSync)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.js")
	b := filepath.Join(dir, "b.js")
	util.WriteFile(t, a, "a")
	util.WriteFile(t, b, "b")

	added, err := w.Watch(a)
	util.AssertNoError(t, err)
	util.AssertEqual(t, added, true)

	added, err = w.Watch(a)
	util.AssertNoError(t, err)
	util.AssertEqual(t, added, false)

	_, err = w.Watch(b)
	util.AssertNoError(t, err)
	util.AssertEqual(t, len(w.Paths()), 2)
	util.AssertEqual(t, w.dirs[dir], 2)

	util.AssertEqual(t, w.Unwatch(a), true)
	util.AssertEqual(t, w.Unwatch(a), false)
	util.AssertEqual(t, w.dirs[dir], 1)
	util.AssertEqual(t, w.Unwatch(b), true)
	if _, ok := w.dirs[dir]; ok {
		t.Error("directory should be released with its last file")
	}
}

func TestRun_SyncsOnceAfterBurst(t *testing.T) {
	var calls atomic.Int32
	synced := make(chan string, 10)
	w := newWatcher(t, func(_ context.Context, p string) error {
		calls.Add(1)
		synced <- p
		return nil
	}, WithDebounce(100*time.Millisecond))

	file := filepath.Join(t.TempDir(), "hello.js")
	util.WriteFile(t, file, "v0")
	_, err := w.Watch(file)
	util.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	for i := 1; i <= 3; i++ {
		if err := os.WriteFile(file, []byte{byte('0' + i)}, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-synced:
		abs, _ := filepath.Abs(file)
		util.AssertEqual(t, got, abs)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sync")
	}

	time.Sleep(300 * time.Millisecond)
	util.AssertEqual(t, calls.Load(), int32(1))
}

func TestRun_IgnoresUnwatchedSibling(t *testing.T) {
	synced := make(chan string, 10)
	w := newWatcher(t, func(_ context.Context, p string) error {
		synced <- p
		return nil
	}, WithDebounce(10*time.Millisecond))

	dir := t.TempDir()
	watched := filepath.Join(dir, "a.js")
	util.WriteFile(t, watched, "a")
	_, err := w.Watch(watched)
	util.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	util.WriteFile(t, filepath.Join(dir, "other.js"), "x")

	select {
	case p := <-synced:
		t.Fatalf("unexpected sync of %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFire_SerializesPerFile(t *testing.T) {
	var active, peak atomic.Int32
	w := newWatcher(t, func(context.Context, string) error {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.fire(context.Background(), "/doc/a.js")
		}()
	}
	wg.Wait()

	util.AssertEqual(t, peak.Load(), int32(1))
}

func TestFire_Disabled(t *testing.T) {
	var calls atomic.Int32
	w := newWatcher(t, func(context.Context, string) error {
		calls.Add(1)
		return nil
	}, WithEnabled(func() bool { return false }))

	w.fire(context.Background(), "/doc/a.js")

	util.AssertEqual(t, calls.Load(), int32(0))
}

func TestClose(t *testing.T) {
	w, err := New(noopSync)
	util.AssertNoError(t, err)
	util.AssertNoError(t, w.Close())
	util.AssertNoError(t, w.Close())

	file := filepath.Join(t.TempDir(), "a.js")
	util.WriteFile(t, file, "a")
	if _, err := w.Watch(file); err == nil {
		t.Error("Watch after Close should fail")
	}
}
