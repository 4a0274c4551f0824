package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/assets"
	"github.com/alnah/go-docstyle/internal/config"
	"github.com/alnah/go-docstyle/internal/imagefetch"
)

// loadSettings reads the config file named by --config or DOCSTYLE_CONFIG
// and applies the DOCSTYLE_* overrides. Without a name, defaults are used.
func loadSettings(common commonFlags, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, envCfg, nil
}

// mergeLayoutFlags copies set layout flags into cfg.
func mergeLayoutFlags(f layoutFlags, cfg *config.Config) {
	if f.style != "" {
		cfg.Layout.Style = f.style
	}
	if f.margin != "" {
		cfg.Layout.Margin = f.margin
	}
	if f.font != "" {
		cfg.Layout.FontFamily = f.font
	}
}

// mergeContentFlags copies set content flags into cfg. Boolean flags can
// only enable a feature the config left off.
func mergeContentFlags(f contentFlags, cfg *config.Config) {
	if f.toc {
		cfg.TOC.Enabled = true
	}
	if f.tocTitle != "" {
		cfg.TOC.Title = f.tocTitle
		cfg.TOC.Enabled = true
	}
	if f.harvard {
		cfg.Citations.Harvard = true
	}
	if f.fetch {
		cfg.Images.Fetch = true
	}
}

// mergeAssetFlags copies set asset flags into cfg.
func mergeAssetFlags(f assetFlags, cfg *config.Config) {
	if f.css != "" {
		cfg.Assets.CSS = f.css
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
}

// mergeTimeout validates a --timeout value and copies it into cfg.
func mergeTimeout(timeout string, cfg *config.Config) error {
	if timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("%w: --timeout %q must be a positive duration", ErrUsage, timeout)
	}
	cfg.PDF.Timeout = timeout
	return nil
}

// resolveCSS loads the configured CSS add-on.
func resolveCSS(cfg *config.Config) (string, error) {
	resolver, err := assets.NewResolver(cfg.Assets.BasePath)
	if err != nil {
		return "", fmt.Errorf("asset path: %w", err)
	}
	return assets.ResolveCSS(resolver, cfg.Assets.CSS)
}

// converterOptions builds the docstyle options for cfg.
func converterOptions(cfg *config.Config, css string, log *zap.Logger) []docstyle.Option {
	fetcher := imagefetch.NewHTTPFetcher(
		imagefetch.WithLogger(log),
		imagefetch.WithTimeout(cfg.ImageTimeout()),
		imagefetch.WithConcurrency(cfg.Images.Concurrency),
		imagefetch.WithMaxBytes(cfg.Images.MaxBytes),
	)

	opts := []docstyle.Option{
		docstyle.WithLogger(log),
		docstyle.WithEngine(docstyle.Engine(cfg.PDF.Engine)),
		docstyle.WithExtraCSS(css),
		docstyle.WithImageFetcher(fetcher),
	}
	if d := cfg.PDFTimeout(); d > 0 {
		opts = append(opts, docstyle.WithTimeout(d))
	}
	return opts
}

// baseInput returns the per-document input fields shared by every file.
func baseInput(cfg *config.Config, strict bool) docstyle.Input {
	return docstyle.Input{
		Layout:      cfg.Layout.Style,
		Margin:      cfg.Layout.Margin,
		FontFamily:  cfg.Layout.FontFamily,
		Format:      cfg.Output.Format,
		TOC:         cfg.TOC.Enabled,
		TOCTitle:    cfg.TOC.Title,
		Harvard:     cfg.Citations.Harvard,
		FetchImages: cfg.Images.Fetch,
		Strict:      strict,
	}
}
