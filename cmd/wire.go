package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bnema/revisionai/internal/adapters/openai"
	sessionsrender "github.com/bnema/revisionai/internal/adapters/render/sessions"
	memoryrepo "github.com/bnema/revisionai/internal/adapters/repo/memory"
	tomlrepo "github.com/bnema/revisionai/internal/adapters/repo/toml"
	chainstore "github.com/bnema/revisionai/internal/adapters/secrets/chain"
	"github.com/bnema/revisionai/internal/application"
	"github.com/bnema/revisionai/internal/config"
	"github.com/bnema/revisionai/internal/domain"
	"github.com/bnema/revisionai/internal/observability"
	"github.com/bnema/revisionai/internal/ports"
	"github.com/bnema/revisionai/internal/relay"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

type app struct {
	config       config.Config
	logger       *slog.Logger
	service      *application.Service
	secretStore  ports.SecretStore
	listRenderer func([]application.SessionSummary, sessionsrender.RenderOptions) (string, error)
	showRenderer func(domain.Session, sessionsrender.RenderOptions) (string, error)
	httpClient   *http.Client
	now          func() time.Time
	isTerminal   func(io.Writer) bool
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	cfg, err := config.Load(v, homeDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	repo, err := wireSessionRepository(v, cfg)
	if err != nil {
		return nil, err
	}

	secretStore, err := chainstore.NewDefault(cfg.SecretEnvVars(), cfg.Secrets.PassPrefix, cfg.Secrets.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		config:       cfg,
		logger:       logger,
		service:      application.NewService(repo, ports.SystemClock{}, ports.UUIDGenerator{}),
		secretStore:  secretStore,
		listRenderer: sessionsrender.RenderList,
		showRenderer: sessionsrender.RenderTranscript,
		httpClient:   &http.Client{},
		now:          time.Now,
		isTerminal:   isTerminal,
	}, nil
}

func wireSessionRepository(v *viper.Viper, cfg config.Config) (ports.SessionRepository, error) {
	if cfg.Sessions.Backend == config.BackendMemory {
		return memoryrepo.NewSessionRepository(), nil
	}

	repo, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}
	return repo, nil
}

// newRelay builds the chat handler served by `rai serve`.
func (a *app) newRelay() *relay.Relay {
	upstream := openai.NewClient(a.config.Upstream.Endpoint, a.httpClient)

	return relay.New(upstream, a.secretStore, a.logger, relay.Config{
		Model:          a.config.Upstream.Model,
		SystemPrompt:   a.config.Upstream.SystemPrompt,
		AllowedOptions: a.config.Relay.AllowedOptions,
		MaxBodyBytes:   a.config.Relay.MaxBodyBytes,
		Timeout:        a.config.Upstream.Timeout,
		CredentialRef:  a.config.Upstream.SecretRef,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
