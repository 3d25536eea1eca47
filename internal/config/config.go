package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/bnema/revisionai/internal/relay"
	"github.com/spf13/viper"
)

const (
	KeyServerListen          = "server.listen"
	KeyUpstreamEndpoint      = "upstream.endpoint"
	KeyUpstreamModel         = "upstream.model"
	KeyUpstreamSystemPrompt  = "upstream.system_prompt"
	KeyUpstreamTimeout       = "upstream.timeout"
	KeyUpstreamCredentialEnv = "upstream.credential_env"
	KeyUpstreamSecretRef     = "upstream.secret_ref"
	KeyRelayAllowedOptions   = "relay.allowed_options"
	KeyRelayMaxBodyBytes     = "relay.max_body_bytes"
	KeySessionsBackend       = "sessions.backend"
	KeySessionsPath          = "sessions.path"
	KeySecretsDir            = "secrets.dir"
	KeySecretsPassPrefix     = "secrets.pass_prefix"
	KeyClientRelayURL        = "client.relay_url"
	KeyLogLevel              = "log.level"
	KeyLogFormat             = "log.format"

	EnvPrefix = "RAI"

	BackendTOML   = "toml"
	BackendMemory = "memory"

	configDir  = ".revisionai"
	configFile = "config.toml"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Relay    RelayConfig
	Sessions SessionsConfig
	Secrets  SecretsConfig
	Client   ClientConfig
	Log      LogConfig
}

type ServerConfig struct {
	Listen string
}

type UpstreamConfig struct {
	Endpoint      string
	Model         string
	SystemPrompt  string
	Timeout       time.Duration
	CredentialEnv string
	SecretRef     string
}

type RelayConfig struct {
	AllowedOptions []string
	MaxBodyBytes   int64
}

type SessionsConfig struct {
	Backend string
	Path    string
}

type SecretsConfig struct {
	Dir        string
	PassPrefix string
}

type ClientConfig struct {
	RelayURL string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load populates v from ~/.revisionai/config.toml and RAI_* environment
// variables on top of the built-in defaults. A missing config file is not
// an error.
func Load(v *viper.Viper, home string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	if home == "" {
		return Config{}, errors.New("home directory is empty")
	}

	setDefaults(v, home)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		v.SetConfigFile(filepath.Join(home, configDir, configFile))
	}
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Config{
		Server: ServerConfig{
			Listen: v.GetString(KeyServerListen),
		},
		Upstream: UpstreamConfig{
			Endpoint:      v.GetString(KeyUpstreamEndpoint),
			Model:         v.GetString(KeyUpstreamModel),
			SystemPrompt:  v.GetString(KeyUpstreamSystemPrompt),
			Timeout:       v.GetDuration(KeyUpstreamTimeout),
			CredentialEnv: v.GetString(KeyUpstreamCredentialEnv),
			SecretRef:     v.GetString(KeyUpstreamSecretRef),
		},
		Relay: RelayConfig{
			AllowedOptions: stringList(v, KeyRelayAllowedOptions),
			MaxBodyBytes:   v.GetInt64(KeyRelayMaxBodyBytes),
		},
		Sessions: SessionsConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString(KeySessionsBackend))),
			Path:    expandHome(v.GetString(KeySessionsPath), home),
		},
		Secrets: SecretsConfig{
			Dir:        expandHome(v.GetString(KeySecretsDir), home),
			PassPrefix: v.GetString(KeySecretsPassPrefix),
		},
		Client: ClientConfig{
			RelayURL: v.GetString(KeyClientRelayURL),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	// The session repository reads its path from the same viper instance.
	v.Set(KeySessionsPath, cfg.Sessions.Path)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault(KeyServerListen, "127.0.0.1:8787")
	v.SetDefault(KeyUpstreamEndpoint, "https://api.openai.com/v1/responses")
	v.SetDefault(KeyUpstreamModel, relay.DefaultModel)
	v.SetDefault(KeyUpstreamSystemPrompt, relay.DefaultSystemPrompt)
	v.SetDefault(KeyUpstreamTimeout, time.Duration(0))
	v.SetDefault(KeyUpstreamCredentialEnv, "OPENAI_API")
	v.SetDefault(KeyUpstreamSecretRef, relay.DefaultCredentialRef)
	v.SetDefault(KeyRelayAllowedOptions, relay.DefaultAllowedOptions)
	v.SetDefault(KeyRelayMaxBodyBytes, int64(relay.DefaultMaxBodyBytes))
	v.SetDefault(KeySessionsBackend, BackendTOML)
	v.SetDefault(KeySessionsPath, filepath.Join(home, configDir, "sessions.toml"))
	v.SetDefault(KeySecretsDir, filepath.Join(home, configDir, "secrets"))
	v.SetDefault(KeySecretsPassPrefix, "revisionai")
	v.SetDefault(KeyClientRelayURL, "http://127.0.0.1:8787/api/chat")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
}

func (c Config) validate() error {
	switch c.Sessions.Backend {
	case BackendTOML, BackendMemory:
	default:
		return fmt.Errorf("unsupported sessions backend %q", c.Sessions.Backend)
	}
	if c.Server.Listen == "" {
		return errors.New("server listen address is empty")
	}
	if c.Upstream.SecretRef == "" {
		return errors.New("upstream secret ref is empty")
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative: %s", c.Upstream.Timeout)
	}
	if c.Relay.MaxBodyBytes <= 0 {
		return fmt.Errorf("relay max body bytes must be positive: %d", c.Relay.MaxBodyBytes)
	}
	return nil
}

// SecretEnvVars maps the upstream secret ref onto its environment variable
// for the read-only env secret store.
func (c Config) SecretEnvVars() map[string]string {
	if c.Upstream.CredentialEnv == "" {
		return map[string]string{}
	}
	return map[string]string{c.Upstream.SecretRef: c.Upstream.CredentialEnv}
}

// stringList reads a list that may come from the config file as an array
// or from the environment as a comma or space separated string.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	items := strings.FieldsFunc(raw, isListSeparator)
	if items == nil {
		items = []string{}
	}
	return items
}

func isListSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

func isMissingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
