package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != defaultReadTimeout {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.CMS.BaseURL != "" {
		t.Errorf("expected CMS to be unset by default, got %q", cfg.CMS.BaseURL)
	}
	if cfg.CMS.PerPage != 100 {
		t.Errorf("unexpected per page: %d", cfg.CMS.PerPage)
	}
	if cfg.CMS.Timeout != 5*time.Second {
		t.Errorf("unexpected cms timeout: %s", cfg.CMS.Timeout)
	}
	if cfg.AI.APIKey != "" {
		t.Errorf("expected no AI key by default")
	}
	if cfg.AI.Model != defaultAIModel {
		t.Errorf("unexpected AI model: %s", cfg.AI.Model)
	}
	if cfg.Content.RefreshInterval != 0 {
		t.Errorf("expected refresher disabled by default, got %s", cfg.Content.RefreshInterval)
	}
	if cfg.Site.BaseURL != defaultSiteURL {
		t.Errorf("unexpected site url: %s", cfg.Site.BaseURL)
	}
	if got := cfg.Server.Addr(); got != ":8080" {
		t.Errorf("unexpected addr: %s", got)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"GARDEN_PORT":                "9090",
		"GARDEN_SERVER_READ_TIMEOUT": "20s",
		"GARDEN_SITE_URL":            "https://garden.example.com/",
		"GARDEN_CMS_URL":             "https://api.example.com/",
		"GARDEN_CMS_TIMEOUT":         "2s",
		"GARDEN_CMS_PER_PAGE":        "50",
		"GARDEN_FORMS_CONTACT_ID":    "34",
		"GARDEN_FORMS_NEWSLETTER_ID": "40",
		"GARDEN_GEMINI_API_KEY":      "key-123",
		"GARDEN_CONTENT_REFRESH":     "10m",
		"GARDEN_DEV":                 "yes",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port override, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("expected read timeout override, got %s", cfg.Server.ReadTimeout)
	}
	if !cfg.Server.DevMode {
		t.Errorf("expected dev mode enabled")
	}
	if cfg.Site.BaseURL != "https://garden.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Site.BaseURL)
	}
	if cfg.CMS.BaseURL != "https://api.example.com" {
		t.Errorf("expected cms url trimmed, got %s", cfg.CMS.BaseURL)
	}
	if cfg.CMS.PerPage != 50 {
		t.Errorf("expected per page 50, got %d", cfg.CMS.PerPage)
	}
	if cfg.Forms.ContactFormID != "34" || cfg.Forms.NewsletterFormID != "40" {
		t.Errorf("unexpected form ids: %+v", cfg.Forms)
	}
	if cfg.AI.APIKey != "key-123" {
		t.Errorf("expected api key override")
	}
	if cfg.Content.RefreshInterval != 10*time.Minute {
		t.Errorf("unexpected refresh interval: %s", cfg.Content.RefreshInterval)
	}
}

func TestLoadFallsBackToPlatformPort(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"PORT": "7070"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected PORT to be honoured, got %s", cfg.Server.Port)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nGARDEN_CMS_URL=\"https://cms.local\"\nexport GARDEN_FORMS_CONTACT_ID=12\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{"GARDEN_FORMS_CONTACT_ID": "99"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CMS.BaseURL != "https://cms.local" {
		t.Errorf("expected cms url from .env, got %q", cfg.CMS.BaseURL)
	}
	if cfg.Forms.ContactFormID != "99" {
		t.Errorf("expected explicit map to win over .env, got %q", cfg.Forms.ContactFormID)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(WithEnvFile(filepath.Join(t.TempDir(), "absent.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}

func TestLoadValidationError(t *testing.T) {
	env := map[string]string{
		"GARDEN_PORT":         "not-a-port",
		"GARDEN_CMS_URL":      "ftp://nope",
		"GARDEN_CMS_PER_PAGE": "500",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := vErr.Fields()
	want := map[string]bool{"Server.Port": false, "CMS.BaseURL": false, "CMS.PerPage": false}
	for _, f := range fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected %s in validation fields %v", name, fields)
		}
	}
}
