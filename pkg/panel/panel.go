// Package panel assembles the engine: storage, thread store, state store,
// receiver, provider and the sync loop, wired from configuration. A host
// embeds one Panel per editor window and toggles it with Show and Hide.
package panel

import (
	"github.com/annolab/margin/config"
	"github.com/annolab/margin/logging"
	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/provider"
	"github.com/annolab/margin/pkg/receiver"
	"github.com/annolab/margin/pkg/state"
	"github.com/annolab/margin/pkg/storage"
	"github.com/annolab/margin/pkg/syncer"
	"github.com/annolab/margin/pkg/threadstore"
	"github.com/annolab/margin/pkg/users"
	"github.com/sirupsen/logrus"
)

// Panel owns one engine instance and its sync loop.
type Panel struct {
	cfg      *config.Config
	backend  storage.Backend
	threads  *threadstore.Store
	state    *state.Store
	receiver *receiver.Receiver
	provider *provider.Provider
	poller   *syncer.Poller
	watcher  *syncer.StoreWatcher
	logger   *logrus.Entry
}

// Option tweaks panel construction.
type Option func(*options)

type options struct {
	lookup  users.Lookup
	backend storage.Backend
}

// WithLookup overrides the user-lookup collaborator (default: GitHub from
// config).
func WithLookup(l users.Lookup) Option {
	return func(o *options) { o.lookup = l }
}

// WithBackend overrides the storage backend (default: from config settings).
func WithBackend(b storage.Backend) Option {
	return func(o *options) { o.backend = b }
}

// New builds a panel from configuration.
func New(cfg *config.Config, opts ...Option) (*Panel, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.NewLogger("panel")

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = openBackend(cfg.Settings)
		if err != nil {
			return nil, err
		}
	}

	threads, err := threadstore.Open(backend, cfg.Settings.StorePath)
	if err != nil {
		backend.Close()
		return nil, err
	}

	sort, ok := models.ParseSortKey(cfg.Settings.DefaultSort)
	if !ok {
		sort = models.SortLatest
	}
	st := state.New(sort)

	lookup := o.lookup
	if lookup == nil {
		lookup = users.NewGitHub(cfg.GitHub.API, cfg.GitHub.Token)
	}

	rcv := receiver.New(threads, st, lookup)

	p := &Panel{
		cfg:      cfg,
		backend:  backend,
		threads:  threads,
		state:    st,
		receiver: rcv,
		provider: provider.New(st),
		poller:   syncer.NewPoller(rcv, cfg.Settings.PollInterval()),
		logger:   logger,
	}

	if cfg.Settings.WatchEnabled() {
		w, err := syncer.NewStoreWatcher(threads, rcv, cfg.Settings.StorePath, cfg.Settings.WatchDebounce())
		if err != nil {
			// The watcher is an accelerator on top of polling, so a
			// watch failure degrades to poll-only instead of aborting.
			logger.WithError(err).Warn("Store watcher unavailable, relying on polling")
		} else {
			p.watcher = w
		}
	}

	return p, nil
}

func openBackend(settings config.SettingsConfig) (storage.Backend, error) {
	switch settings.Backend {
	case config.BackendSQLite:
		return storage.OpenSQLite(settings.DatabasePath)
	default:
		return storage.NewFile(), nil
	}
}

// Receiver exposes the write path for host intents.
func (p *Panel) Receiver() *receiver.Receiver {
	return p.receiver
}

// Provider exposes the read path for host rendering.
func (p *Panel) Provider() *provider.Provider {
	return p.provider
}

// Threads exposes the thread store for administrative access.
func (p *Panel) Threads() *threadstore.Store {
	return p.threads
}

// Show starts the sync loop. Called when the side panel becomes visible.
func (p *Panel) Show() {
	p.poller.Start()
	if p.watcher != nil {
		p.watcher.Start()
	}
	p.logger.Debug("Panel shown")
}

// Hide stops the polling loop. The store watcher keeps running so external
// edits are not lost while the panel is hidden; it is cheap when idle.
func (p *Panel) Hide() {
	p.poller.Stop()
	p.logger.Debug("Panel hidden")
}

// Close tears the panel down: sync loop, watcher, store and backend.
func (p *Panel) Close() error {
	p.poller.Stop()
	if p.watcher != nil {
		if err := p.watcher.Close(); err != nil {
			p.logger.WithError(err).Warn("Failed to close store watcher")
		}
	}
	p.threads.Close()
	return p.backend.Close()
}
