// Package dispatch syncs the active file to every configured host.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/klauern/boxsync/internal/archive"
	"github.com/klauern/boxsync/internal/errs"
	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/target"
	"github.com/klauern/boxsync/internal/transport"
)

// DefaultConcurrency bounds simultaneous host uploads.
const DefaultConcurrency = 4

// HostSource provides the hosts to sync to. *host.Registry implements it.
type HostSource interface {
	List() []model.Host
}

// Materializer writes a package archive and returns its path.
type Materializer func(model.SyncTarget) (string, error)

// Dispatcher uploads the resolved target of a file to all hosts.
type Dispatcher struct {
	hosts       HostSource
	resolver    *target.Resolver
	dialer      transport.Dialer
	concurrency int
	override    func() (model.Host, bool)
	materialize Materializer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConcurrency sets the fan-out limit. Values below 1 keep the default.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithOverride sets the host used when the host list is empty.
func WithOverride(fn func() (model.Host, bool)) Option {
	return func(d *Dispatcher) {
		d.override = fn
	}
}

// WithMaterializer replaces archive.Materialize.
func WithMaterializer(m Materializer) Option {
	return func(d *Dispatcher) {
		d.materialize = m
	}
}

// New creates a Dispatcher.
func New(hosts HostSource, resolver *target.Resolver, dialer transport.Dialer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		hosts:       hosts,
		resolver:    resolver,
		dialer:      dialer,
		concurrency: DefaultConcurrency,
		materialize: archive.Materialize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Targets returns the hosts a run would sync to.
func (d *Dispatcher) Targets() []model.Host {
	hosts := d.hosts.List()
	if len(hosts) == 0 && d.override != nil {
		if h, ok := d.override(); ok {
			hosts = []model.Host{h}
		}
	}
	return hosts
}

// Run syncs activeFile to every host. It fails only when there is no host;
// per-host failures are reported in the results, which follow host order.
func (d *Dispatcher) Run(ctx context.Context, activeFile string) (Results, error) {
	hosts := d.Targets()
	if len(hosts) == 0 {
		return nil, errs.NoHostsConfigured()
	}

	runID := uuid.NewString()
	logger := logging.WithContext(ctx).With(logging.RunID(runID))
	ctx = logging.NewContext(ctx, logger)
	logger.Info("sync started", logging.Path(activeFile), logging.Count(len(hosts)))

	archives := &archiveCache{materialize: d.materialize}
	results := make(Results, len(hosts))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, h := range hosts {
		g.Go(func() error {
			results[i] = d.syncHost(ctx, h, activeFile, archives)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("sync finished",
		logging.Count(len(results.Succeeded())),
		slog.Int("failed", len(results.Failed())),
	)
	return results, nil
}

func (d *Dispatcher) syncHost(ctx context.Context, h model.Host, activeFile string, archives *archiveCache) HostResult {
	start := time.Now()
	logger := logging.WithContext(ctx).With(logging.Host(h.String()))

	t := d.resolver.Resolve(activeFile)
	res := HostResult{Host: h, Target: t}
	fail := func(err error) HostResult {
		res.Action = ActionFailed
		res.Err = err
		res.Duration = time.Since(start)
		logger.Warn("sync failed", logging.Target(t.Display()), logging.Err(err))
		return res
	}

	if t.IsPackage() {
		if _, err := archives.get(t); err != nil {
			return fail(err)
		}
	}

	client, err := d.dialer.Dial(ctx, h)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Debug("close failed", logging.Err(err))
		}
	}()

	if err := client.Upload(ctx, t.UploadPath()); err != nil {
		return fail(err)
	}

	res.Action = ActionUploaded
	res.Duration = time.Since(start)
	logger.Info("uploaded", logging.Target(t.Display()), logging.Path(t.UploadPath()))
	return res
}

// archiveCache materializes each package archive once per run.
type archiveCache struct {
	materialize Materializer

	mu      sync.Mutex
	entries map[string]*archiveEntry
}

type archiveEntry struct {
	once sync.Once
	path string
	err  error
}

func (c *archiveCache) get(t model.SyncTarget) (string, error) {
	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]*archiveEntry)
	}
	e, ok := c.entries[t.ArchivePath]
	if !ok {
		e = &archiveEntry{}
		c.entries[t.ArchivePath] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.path, e.err = c.materialize(t)
	})
	return e.path, e.err
}
