package cmd

import (
	"github.com/annolab/margin/cli"
	"github.com/annolab/margin/config"
	"github.com/annolab/margin/pkg/storage"
	"github.com/annolab/margin/pkg/threadstore"
	"github.com/spf13/cobra"
)

// openStore opens the thread store described by the command's configuration.
// The returned cleanup closes the store and its backend.
func openStore(cmd *cobra.Command) (*threadstore.Store, func(), error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	var backend storage.Backend
	switch cfg.Settings.Backend {
	case config.BackendSQLite:
		backend, err = storage.OpenSQLite(cfg.Settings.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
	default:
		backend = storage.NewFile()
	}

	store, err := threadstore.Open(backend, cfg.Settings.StorePath)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	cleanup := func() {
		store.Close()
		backend.Close()
	}
	return store, cleanup, nil
}
