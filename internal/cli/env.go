package cli

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/suipic/client-go/internal/config"
	"github.com/suipic/client-go/internal/domain/catalog"
	"github.com/suipic/client-go/internal/domain/search"
	"github.com/suipic/client-go/internal/domain/session"
	"github.com/suipic/client-go/internal/domain/settings"
	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
	"github.com/suipic/client-go/internal/version"
)

// appEnv wires the config, the session store and the services for one
// command invocation. The caller must defer Close.
type appEnv struct {
	cfg      config.Config
	session  *session.Store
	client   *api.Client
	cache    *querycache.Cache
	catalog  *catalog.Service
	search   *search.Pipeline
	settings *settings.Service
}

// newEnv builds the environment from the global flags.
func newEnv(opts *RootOptions) (*appEnv, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}

	persister, err := session.OpenSQLitePersister(cfg.SessionDBPath())
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	store := session.NewStore(persister, nil)
	if err := store.LoadFromStorage(); err != nil {
		store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client := api.NewClient(
		api.WithBaseURL(cfg.APIURL),
		api.WithUserAgent(fmt.Sprintf("%s/%s", version.Name, version.Version)),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		api.WithTokenSource(store.TokenSource()),
	)

	cache := querycache.New()
	return &appEnv{
		cfg:     cfg,
		session: store,
		client:  client,
		cache:   cache,
		catalog: catalog.NewService(client, cache),
		search: search.NewPipeline(client, cache,
			search.WithDebounceWindow(cfg.DebounceWindow),
			search.WithPageSize(cfg.PageSize),
		),
		settings: settings.NewService(client, cache),
	}, nil
}

// requireAuth fails fast when no user is signed in.
func (e *appEnv) requireAuth() error {
	if !e.session.Authenticated() {
		return fmt.Errorf("not signed in, run 'suipic login' first")
	}
	return nil
}

func (e *appEnv) Close() {
	e.search.Close()
	if err := e.session.Close(); err != nil {
		log.Debug().Err(err).Msg("Session store close failed")
	}
}
