package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.API.URL != "http://localhost:8080/api" {
		t.Errorf("api.url = %q", cfg.API.URL)
	}
	if cfg.Builder.Namespace != "devops" {
		t.Errorf("builder.namespace = %q", cfg.Builder.Namespace)
	}
	if cfg.APITimeout() != 30*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout())
	}
	if cfg.APIDownloadTimeout() != 300*time.Second {
		t.Errorf("APIDownloadTimeout = %v", cfg.APIDownloadTimeout())
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty url", func(c *Config) { c.API.URL = "" }, "api.url"},
		{"bad scheme", func(c *Config) { c.API.URL = "ftp://x" }, "api.url"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "api.timeout"},
		{"negative poll", func(c *Config) { c.Builder.PollInterval = "-2s" }, "builder.pollInterval"},
		{"empty namespace", func(c *Config) { c.Builder.Namespace = " " }, "builder.namespace"},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want mention of %s", tc.name, err, tc.want)
		}
	}
}

func TestSetByKeyAndGetByKey(t *testing.T) {
	cfg := Default()
	if err := cfg.SetByKey("api.url", "https://platform.example.com/api/"); err != nil {
		t.Fatalf("SetByKey: %v", err)
	}
	v, err := cfg.GetByKey("api.url")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if v != "https://platform.example.com/api" {
		t.Errorf("api.url = %v (trailing slash must be trimmed)", v)
	}

	if err := cfg.SetByKey("tui.colors", "false"); err != nil {
		t.Fatalf("SetByKey tui.colors: %v", err)
	}
	if cfg.TUI.Colors {
		t.Error("tui.colors still true")
	}
	if err := cfg.SetByKey("tui.colors", "maybe"); err == nil {
		t.Error("non-bool tui.colors accepted")
	}
	if err := cfg.SetByKey("nope.nope", "x"); err == nil {
		t.Error("unknown key accepted")
	}
	if err := cfg.SetByKey("builder.pollinterval", "bogus"); err == nil {
		t.Error("invalid poll interval accepted")
	}
}

func TestMergeEnvOverrides(t *testing.T) {
	t.Setenv("DPCLI_API_URL", "https://env.example.com/api/")
	t.Setenv("DPCLI_TOKEN", "tok123")
	cfg := Default()
	cfg.MergeEnvOverrides()
	if cfg.API.URL != "https://env.example.com/api" {
		t.Errorf("api.url = %q", cfg.API.URL)
	}
	if cfg.API.Token != "tok123" {
		t.Errorf("api.token = %q", cfg.API.Token)
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := Default()
	cfg.API.Timeout = "garbage"
	cfg.Builder.PollInterval = ""
	if cfg.APITimeout() != 30*time.Second {
		t.Errorf("APITimeout fallback = %v", cfg.APITimeout())
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Errorf("PollInterval fallback = %v", cfg.PollInterval())
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.API.Token = "secret"
	out, err := cfg.ToYAML()
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	if !strings.Contains(out, "url: http://localhost:8080/api") {
		t.Errorf("yaml missing url:\n%s", out)
	}
	if !strings.Contains(out, "namespace: devops") {
		t.Errorf("yaml missing namespace:\n%s", out)
	}
}
