package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/runger/datagrid/internal/config"
	"github.com/runger/datagrid/internal/grid"
	"github.com/runger/datagrid/internal/listclient"
	"github.com/runger/datagrid/internal/location"
	"github.com/runger/datagrid/internal/querystate"
	"github.com/runger/datagrid/internal/table"
)

// httpClient replaces the list client's transport in tests.
var httpClient *http.Client

// session is one wired grid: client, location, synchronizer, table model
// and the Bubble Tea model over them.
type session struct {
	client *listclient.Client
	loc    *location.Store
	sync   *querystate.Synchronizer
	table  *table.Model
	model  grid.Model
}

func newClient(cfg *config.Config, logger *slog.Logger) (*listclient.Client, error) {
	return listclient.New(listclient.Options{
		BaseURL:         cfg.Endpoint.BaseURL,
		Collection:      cfg.Endpoint.Collection,
		TotalHeader:     cfg.Endpoint.TotalHeader,
		Timeout:         cfg.Endpoint.Timeout(),
		CacheSize:       cfg.Endpoint.CacheSize,
		RevalidateAfter: cfg.Endpoint.RevalidateAfter(),
		Logger:          logger,
		HTTPClient:      httpClient,
	})
}

func newTable(cfg *config.Config) (*table.Model, error) {
	specs, err := cfg.ColumnSpecs()
	if err != nil {
		return nil, err
	}
	tm, err := table.New(specs)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	tm.SetPatternSearch(cfg.Grid.RegexSearch)
	return tm, nil
}

// newSession wires a grid for cfg, starting at the given location.
func newSession(cfg *config.Config, rawLocation string, logger *slog.Logger) (*session, error) {
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	loc, err := location.New(rawLocation)
	if err != nil {
		return nil, err
	}

	sync, err := querystate.New(loc, listclient.Query{
		PageIndex: listclient.DefaultPageIndex,
		PageSize:  cfg.Grid.PageSize,
	})
	if err != nil {
		return nil, err
	}

	tm, err := newTable(cfg)
	if err != nil {
		sync.Close()
		return nil, err
	}

	model := grid.New(client, sync, loc, tm, grid.Options{
		PageSizeOptions: cfg.Grid.PageSizeOptions,
		RowHeight:       cfg.Grid.RowHeight,
		Debounce:        cfg.Grid.Debounce(),
		Logger:          logger,
		IDField:         cfg.Grid.IDField,
	})

	return &session{client: client, loc: loc, sync: sync, table: tm, model: model}, nil
}

// Close detaches the synchronizer from the location.
func (s *session) Close() {
	s.sync.Close()
}
