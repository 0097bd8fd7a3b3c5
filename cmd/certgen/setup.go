package main

import (
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/font/opentype"
	"golang.org/x/text/language"

	certgen "github.com/alnah/go-certgen"
	"github.com/alnah/go-certgen/internal/config"
	"github.com/alnah/go-certgen/internal/fileutil"
	"github.com/alnah/go-certgen/internal/hints"
)

// Sentinel errors for run setup.
var (
	ErrNoNames   = errors.New("no names found in table")
	ErrOutputDir = errors.New("output directory is not usable")
)

// resolveConfig builds the run configuration.
// Priority: CLI flags > environment > config file > defaults.
func resolveConfig(flags *generateFlags, envCfg *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(configName)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *generateFlags, cfg *config.Config) {
	changed := flags.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if changed("template") {
		cfg.Template = flags.template
	}

	if changed("table") {
		cfg.Input.Table = flags.input.table
	}
	if changed("sheet") {
		cfg.Input.Sheet = flags.input.sheet
	}
	if changed("column") {
		cfg.Input.Column = flags.input.column
	}

	if changed("font") {
		cfg.Font.Path = flags.font.path
	}
	if changed("font-size") {
		cfg.Font.Size = flags.font.size
	}
	if changed("color") {
		cfg.Font.Color = flags.font.color
	}
	if changed("locale") {
		cfg.Font.Locale = flags.font.locale
	}

	if changed("box-width") {
		cfg.Layout.BoxWidth = flags.layout.boxWidth
	}
	if changed("box-height") {
		cfg.Layout.BoxHeight = flags.layout.boxHeight
	}
	if changed("offset-x") {
		cfg.Layout.OffsetX = flags.layout.offsetX
	}
	if changed("offset-y") {
		cfg.Layout.OffsetY = flags.layout.offsetY
	}
	if changed("strict-fit") {
		cfg.Layout.StrictFit = flags.layout.strictFit
	}

	if changed("output-dir") {
		cfg.Output.Dir = flags.output.dir
	}
	if changed("merged") {
		cfg.Output.Merged = flags.output.merged
	}
	if changed("error-log") {
		cfg.ErrorLog = flags.output.errorLog
	}
	if changed("keep-singles") {
		cfg.Output.KeepSingles = flags.output.keepSingles
	}

	if changed("workers") {
		cfg.Workers = flags.run.workers
	}
	if changed("max-retries") {
		cfg.Retry.MaxRetries = flags.run.maxRetries
	}
	if changed("timeout") {
		cfg.Retry.TaskTimeout = flags.run.timeout
	}
}

// runInputs holds everything loaded before the first certificate is rendered.
// It is not modified once built.
type runInputs struct {
	cfg      *config.Config
	template image.Image
	font     *opentype.Font
	locale   language.Tag
	rows     int
	names    certgen.PreparedNames
	layout   certgen.Layout
	timeout  time.Duration
	merged   string
}

// buildLayout converts config values into a renderer layout.
func buildLayout(cfg *config.Config) certgen.Layout {
	return certgen.Layout{
		FontSize:  cfg.Font.Size,
		BoxWidth:  cfg.Layout.BoxWidth,
		BoxHeight: cfg.Layout.BoxHeight,
		OffsetX:   cfg.Layout.OffsetX,
		OffsetY:   cfg.Layout.OffsetY,
		Color:     cfg.Font.Color,
		StrictFit: cfg.Layout.StrictFit,
	}
}

// parseLocale parses the title-casing locale; empty means neutral.
func parseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("%w: font.locale %q: %v", config.ErrInvalidValue, s, err)
	}
	return tag, nil
}

// loadInputs loads and validates the template, font and name table and
// makes sure the output directory can be written. Any error is fatal.
func loadInputs(cfg *config.Config) (*runInputs, error) {
	in := &runInputs{
		cfg:    cfg,
		layout: buildLayout(cfg),
		merged: cfg.Output.Merged,
	}
	if in.merged == "" {
		in.merged = certgen.DefaultMergedPath(cfg.Output.Dir)
	}

	if err := in.layout.Validate(); err != nil {
		return nil, err
	}

	var err error
	if in.timeout, err = cfg.TaskTimeout(); err != nil {
		return nil, err
	}
	if in.locale, err = parseLocale(cfg.Font.Locale); err != nil {
		return nil, err
	}

	in.template, err = certgen.LoadTemplate(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForTemplateLoad())
	}

	in.font, err = certgen.LoadFont(cfg.Font.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w%s", cfg.Font.Path, err, hints.ForFontLoad())
	}

	tbl, err := certgen.ReadTable(cfg.Input.Table, cfg.Input.Sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w%s", cfg.Input.Table, err, hints.ForTable())
	}
	raw, err := tbl.Column(cfg.Input.Column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w%s", cfg.Input.Table, err, hints.ForColumnNotFound(tbl.Header))
	}

	cleaner := certgen.NewNameCleaner(in.locale)
	in.rows = len(raw)
	in.names = certgen.PrepareNames(raw, cleaner.Clean)
	if len(in.names.Names) == 0 {
		return nil, fmt.Errorf("%w: %s (%d rows)", ErrNoNames, cfg.Input.Table, len(raw))
	}

	return in, nil
}

// prepareOutputDir creates the output directory and checks it is writable.
func prepareOutputDir(dir string) (created bool, err error) {
	created, err = fileutil.EnsureWritableDir(dir)
	if err != nil {
		return created, fmt.Errorf("%w: %v%s", ErrOutputDir, err, hints.ForOutputDirectory())
	}
	return created, nil
}
