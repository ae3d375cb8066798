package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	OTel  OTelConfig
	Jira  JiraConfig
	AI    AIConfig
	Redis RedisConfig
	Env   string
	Port  string
	Debug bool
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type JiraConfig struct {
	URL        string
	Email      string
	APIToken   string
	ServerType string // "cloud" or "server"
	Timeout    time.Duration
}

type AIConfig struct {
	Provider string // "chat" or "cli"
	Chat     ChatConfig
	CLI      CLIConfig
}

type ChatConfig struct {
	Vendor        string // "openai" or "anthropic"
	ModelFamily   string // prefix filter applied to the vendor's model ids
	APIKey        string
	BaseURL       string // Optional: for OpenAI-compatible endpoints
	MaxTokens     int
	Justification string
}

type CLIConfig struct {
	Command             string
	Args                []string
	APIKey              string
	APIKeyEnv           string // env var the credential is injected through
	Model               string
	PromptMode          string // "arg" or "stdin"
	Timeout             time.Duration
	ProbeTimeout        time.Duration
	LenientVersionCheck bool
	WorkDir             string
}

type RedisConfig struct {
	URL      string
	IssueTTL time.Duration
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	ServerTypeCloud  = "cloud"
	ServerTypeServer = "server"

	PromptModeArg   = "arg"
	PromptModeStdin = "stdin"

	DefaultCLIModel   = "gemini-2.5-flash"
	MinCLITimeout     = 30 * time.Second
	MaxCLITimeout     = 300 * time.Second
	DefaultCLITimeout = 120 * time.Second
	DefaultProbe      = 10 * time.Second
)

// Load reads configuration from, in order of precedence: process environment,
// the service's .env file (.env.<service>, falling back to .env), the YAML
// settings file and built-in defaults.
//
// Load is cheap and side-effect free so callers can invoke it at the start of
// every operation and pick up edited settings without a restart.
func Load(serviceType ServiceType) (Config, error) {
	dotenv, err := godotenv.Read(fmt.Sprintf(".env.%s", serviceType))
	if err != nil {
		dotenv, _ = godotenv.Read(".env")
	}

	path := settingsPath(dotenv)
	file, err := readSettingsFile(path)
	if err != nil {
		return Config{}, err
	}

	src := source{dotenv: dotenv, file: file}

	cfg := Config{
		Env:   src.get("TESTGEN_ENV", "development"),
		Port:  src.get("PORT", "8080"),
		Debug: src.getBool("TESTGEN_DEBUG", false),
		OTel: OTelConfig{
			Endpoint:       src.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        src.get("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    src.get("OTEL_SERVICE_NAME", "jira-test-generator"),
			ServiceVersion: src.get("OTEL_SERVICE_VERSION", "dev"),
		},
		Jira: JiraConfig{
			URL:        strings.TrimSuffix(src.get("JIRA_URL", ""), "/"),
			Email:      src.get("JIRA_EMAIL", ""),
			APIToken:   src.get("JIRA_API_TOKEN", ""),
			ServerType: normalizeServerType(src.get("JIRA_SERVER_TYPE", ServerTypeCloud)),
			Timeout:    src.getSeconds("JIRA_TIMEOUT_SECONDS", 10*time.Second),
		},
		AI: AIConfig{
			Provider: strings.ToLower(strings.TrimSpace(src.get("AI_PROVIDER", "chat"))),
			Chat: ChatConfig{
				Vendor:        strings.ToLower(src.get("CHAT_VENDOR", "openai")),
				ModelFamily:   src.get("CHAT_MODEL_FAMILY", "gpt-4o"),
				APIKey:        src.get("CHAT_API_KEY", ""),
				BaseURL:       src.get("CHAT_BASE_URL", ""),
				MaxTokens:     src.getInt("CHAT_MAX_TOKENS", 4096),
				Justification: src.get("CHAT_JUSTIFICATION", "Generate QA test cases for a Jira issue"),
			},
			CLI: CLIConfig{
				Command:             src.get("CLI_COMMAND", "gemini"),
				Args:                strings.Fields(src.get("CLI_ARGS", "")),
				APIKey:              src.get("CLI_API_KEY", ""),
				APIKeyEnv:           src.get("CLI_API_KEY_ENV", "GEMINI_API_KEY"),
				Model:               src.get("CLI_MODEL", DefaultCLIModel),
				PromptMode:          strings.ToLower(src.get("CLI_PROMPT_MODE", PromptModeArg)),
				Timeout:             clamp(src.getSeconds("CLI_TIMEOUT_SECONDS", DefaultCLITimeout), MinCLITimeout, MaxCLITimeout),
				ProbeTimeout:        src.getSeconds("CLI_PROBE_TIMEOUT_SECONDS", DefaultProbe),
				LenientVersionCheck: src.getBool("CLI_LENIENT_VERSION_CHECK", true),
				WorkDir:             src.get("CLI_WORKDIR", ""),
			},
		},
		Redis: RedisConfig{
			URL:      src.get("REDIS_URL", ""),
			IssueTTL: src.getSeconds("REDIS_ISSUE_TTL_SECONDS", 5*time.Minute),
		},
	}

	if cfg.Jira.ServerType == "" {
		return Config{}, fmt.Errorf("JIRA_SERVER_TYPE must be %q or %q", ServerTypeCloud, ServerTypeServer)
	}

	if cfg.AI.CLI.PromptMode != PromptModeArg && cfg.AI.CLI.PromptMode != PromptModeStdin {
		return Config{}, fmt.Errorf("CLI_PROMPT_MODE must be %q or %q", PromptModeArg, PromptModeStdin)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c JiraConfig) Enabled() bool {
	return c.URL != ""
}

func (c JiraConfig) IsServer() bool {
	return c.ServerType == ServerTypeServer
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c CLIConfig) UsesStdin() bool {
	return c.PromptMode == PromptModeStdin
}

// normalizeServerType accepts the short names and the "Jira Cloud"/"Jira Server"
// labels used by older settings files. Unknown values yield "".
func normalizeServerType(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cloud", "jira cloud":
		return ServerTypeCloud
	case "server", "jira server", "datacenter", "data center":
		return ServerTypeServer
	default:
		return ""
	}
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func settingsPath(dotenv map[string]string) string {
	if v, ok := os.LookupEnv("TESTGEN_SETTINGS"); ok {
		return v
	}
	if v, ok := dotenv["TESTGEN_SETTINGS"]; ok {
		return v
	}
	return ".testgen.yaml"
}

// readSettingsFile loads flat KEY: value pairs from a YAML file. A missing
// file is not an error.
func readSettingsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	settings := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		settings[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return settings, nil
}

type source struct {
	dotenv map[string]string
	file   map[string]string
}

func (s source) get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := s.dotenv[key]; ok {
		return value
	}
	if value, ok := s.file[key]; ok {
		return value
	}
	return fallback
}

func (s source) getInt(key string, fallback int) int {
	if i, err := strconv.Atoi(s.get(key, "")); err == nil {
		return i
	}
	return fallback
}

func (s source) getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(s.get(key, "")); err == nil {
		return b
	}
	return fallback
}

func (s source) getSeconds(key string, fallback time.Duration) time.Duration {
	if i, err := strconv.Atoi(s.get(key, "")); err == nil && i > 0 {
		return time.Duration(i) * time.Second
	}
	return fallback
}
