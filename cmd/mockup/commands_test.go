package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("MOCKUP_SCHEME", "direct")
	t.Setenv("INCLUDE_EXTRA_MOCKUPS", "false")

	opts := &cliOptions{}
	root := newRootCmd(opts)
	generate, _, err := root.Find([]string{"generate"})
	if err != nil {
		t.Fatalf("find generate: %v", err)
	}
	args := []string{"--scheme", "Mirror", "--extras", "--attempts", "3", "--interval", "1s", "--variants", "1,2"}
	if err := generate.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(generate, opts)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Scheme != "mirror" {
		t.Fatalf("expected mirror scheme, got %q", cfg.Scheme)
	}
	if !cfg.IncludeExtras {
		t.Fatalf("expected extras enabled")
	}
	if cfg.MaxPollAttempts != 3 || cfg.PollInterval != time.Second {
		t.Fatalf("unexpected polling config: %d %s", cfg.MaxPollAttempts, cfg.PollInterval)
	}
	if len(cfg.VariantIDs) != 2 || cfg.VariantIDs[1] != 2 {
		t.Fatalf("unexpected variants: %v", cfg.VariantIDs)
	}
}

func TestLoadConfigKeepsEnvironmentWhenFlagsUnset(t *testing.T) {
	t.Setenv("CANVAS_WRITE_BACK", "true")

	opts := &cliOptions{}
	root := newRootCmd(opts)
	generate, _, err := root.Find([]string{"generate"})
	if err != nil {
		t.Fatalf("find generate: %v", err)
	}
	if err := generate.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(generate, opts)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.WriteBack {
		t.Fatalf("expected write-back from environment")
	}
}

func TestPreviewPath(t *testing.T) {
	if got := previewPath(&cliOptions{}, "designs/shirt.png"); got != "designs/shirt_preview.png" {
		t.Fatalf("unexpected default preview path %q", got)
	}
	if got := previewPath(&cliOptions{preview: "out.png"}, "shirt.png"); got != "out.png" {
		t.Fatalf("unexpected explicit preview path %q", got)
	}
}

func TestCLILoggerLevel(t *testing.T) {
	if got := cliLogger(&cliOptions{}).GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("default level = %s, want info", got)
	}
	opts := &cliOptions{}
	root := newRootCmd(opts)
	if err := root.PersistentFlags().Parse([]string{"--verbose"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if got := cliLogger(opts).GetLevel(); got != zerolog.DebugLevel {
		t.Fatalf("verbose level = %s, want debug", got)
	}
}
