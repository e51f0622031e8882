package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultPublicDir        = "public"
	defaultSiteName         = "疯文斋"
	defaultSiteDescription  = "构建数字花园，在无序的世界里寻找秩序。关注商业、心智、技术与财富的复利效应。"
	defaultSiteURL          = "https://fengwz.me"
	defaultSiteImage        = "https://fengwz.me/default-og-image.jpg"
	defaultTwitterHandle    = "@sullivan617"
	defaultCMSTimeout       = 5 * time.Second
	defaultCMSPerPage       = 100
	defaultContentDir       = "content"
	defaultFormsLocale      = "zh_CN"
	defaultFormsVersion     = "5.9.3"
	defaultAIModel          = "gemini-flash-latest"
	defaultAISpeechModel    = "gemini-2.5-flash-preview-tts"
	defaultCommentsPath     = "data/comments.db"
	defaultPageCacheTTL     = 5 * time.Minute
	defaultLanguageFallback = "en"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	CMS      CMSConfig
	Forms    FormsConfig
	AI       AIConfig
	Comments CommentsConfig
	Content  ContentConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	PublicDir    string
	DevMode      bool
}

// SiteConfig holds the identity used for page titles, feeds and social cards.
type SiteConfig struct {
	Name          string
	Description   string
	BaseURL       string
	DefaultImage  string
	TwitterHandle string
	Language      string
}

// CMSConfig points at the headless WordPress installation.
type CMSConfig struct {
	BaseURL    string
	Timeout    time.Duration
	PerPage    int
	ContentDir string
}

// FormsConfig identifies the Contact Form 7 forms used for relayed submissions.
type FormsConfig struct {
	ContactFormID    string
	NewsletterFormID string
	Locale           string
	Version          string
}

// AIConfig carries the Gemini credentials. An empty APIKey disables generation.
type AIConfig struct {
	APIKey      string
	Model       string
	SpeechModel string
}

// CommentsConfig locates the durable comment store.
type CommentsConfig struct {
	Path string
}

// ContentConfig controls how often the orchestrator reloads and how long pages are cached.
type ContentConfig struct {
	RefreshInterval time.Duration
	PageCacheTTL    time.Duration
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables and explicit overrides, in that order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	port := stringWithDefault(lookup, "GARDEN_PORT", "")
	if port == "" {
		// Cloud Run and most PaaS hosts inject PORT.
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, "GARDEN_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "GARDEN_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "GARDEN_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			PublicDir:    stringWithDefault(lookup, "GARDEN_PUBLIC_DIR", defaultPublicDir),
			DevMode:      boolWithDefault(lookup, "GARDEN_DEV", false),
		},
		Site: SiteConfig{
			Name:          stringWithDefault(lookup, "GARDEN_SITE_NAME", defaultSiteName),
			Description:   stringWithDefault(lookup, "GARDEN_SITE_DESCRIPTION", defaultSiteDescription),
			BaseURL:       strings.TrimRight(stringWithDefault(lookup, "GARDEN_SITE_URL", defaultSiteURL), "/"),
			DefaultImage:  stringWithDefault(lookup, "GARDEN_SITE_IMAGE", defaultSiteImage),
			TwitterHandle: stringWithDefault(lookup, "GARDEN_SITE_TWITTER", defaultTwitterHandle),
			Language:      strings.ToLower(stringWithDefault(lookup, "GARDEN_SITE_LANGUAGE", defaultLanguageFallback)),
		},
		CMS: CMSConfig{
			BaseURL:    strings.TrimRight(stringWithDefault(lookup, "GARDEN_CMS_URL", ""), "/"),
			Timeout:    durationWithDefault(lookup, "GARDEN_CMS_TIMEOUT", defaultCMSTimeout),
			PerPage:    intWithDefault(lookup, "GARDEN_CMS_PER_PAGE", defaultCMSPerPage),
			ContentDir: stringWithDefault(lookup, "GARDEN_CONTENT_DIR", defaultContentDir),
		},
		Forms: FormsConfig{
			ContactFormID:    stringWithDefault(lookup, "GARDEN_FORMS_CONTACT_ID", ""),
			NewsletterFormID: stringWithDefault(lookup, "GARDEN_FORMS_NEWSLETTER_ID", ""),
			Locale:           stringWithDefault(lookup, "GARDEN_FORMS_LOCALE", defaultFormsLocale),
			Version:          stringWithDefault(lookup, "GARDEN_FORMS_VERSION", defaultFormsVersion),
		},
		AI: AIConfig{
			APIKey:      stringWithDefault(lookup, "GARDEN_GEMINI_API_KEY", ""),
			Model:       stringWithDefault(lookup, "GARDEN_GEMINI_MODEL", defaultAIModel),
			SpeechModel: stringWithDefault(lookup, "GARDEN_GEMINI_SPEECH_MODEL", defaultAISpeechModel),
		},
		Comments: CommentsConfig{
			Path: stringWithDefault(lookup, "GARDEN_COMMENTS_PATH", defaultCommentsPath),
		},
		Content: ContentConfig{
			RefreshInterval: durationWithDefault(lookup, "GARDEN_CONTENT_REFRESH", 0),
			PageCacheTTL:    durationWithDefault(lookup, "GARDEN_PAGE_CACHE_TTL", defaultPageCacheTTL),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	} else if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if cfg.Server.IdleTimeout <= 0 {
		missing = append(missing, "Server.IdleTimeout")
	}
	if !isHTTPURL(cfg.Site.BaseURL) {
		missing = append(missing, "Site.BaseURL")
	}
	if cfg.CMS.BaseURL != "" && !isHTTPURL(cfg.CMS.BaseURL) {
		missing = append(missing, "CMS.BaseURL")
	}
	if cfg.CMS.Timeout <= 0 {
		missing = append(missing, "CMS.Timeout")
	}
	// WordPress caps per_page at 100.
	if cfg.CMS.PerPage <= 0 || cfg.CMS.PerPage > 100 {
		missing = append(missing, "CMS.PerPage")
	}
	if cfg.Content.RefreshInterval < 0 {
		missing = append(missing, "Content.RefreshInterval")
	}
	if cfg.Content.PageCacheTTL <= 0 {
		missing = append(missing, "Content.PageCacheTTL")
	}
	if strings.TrimSpace(cfg.Comments.Path) == "" {
		missing = append(missing, "Comments.Path")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
