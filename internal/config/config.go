// Package config holds runtime configuration: defaults, loading from an
// optional imgcrush.yaml, IMGCRUSH_* environment variables and bound CLI
// flags, and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"imgcrush/pkg/imgutil"
)

// ColorMode controls colored log output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Validation errors returned by [Config.Validate].
var (
	ErrInvalidQuality = errors.New("quality must be between 1 and 100")
	ErrInvalidWorkers = errors.New("workers must be at least 1")
	ErrUnknownFormat  = errors.New("unknown image format")
	ErrInvalidColor   = errors.New("color must be auto, always or never")
)

// Config holds all runtime settings.
type Config struct {
	Quality   int       `mapstructure:"quality"`   // JPEG only. Default: 85.
	Workers   int       `mapstructure:"workers"`   // Default: 4.
	Recursive bool      `mapstructure:"recursive"` // Descend into subdirectories.
	Formats   []string  `mapstructure:"formats"`   // Extension filter, e.g. ["jpg", "png"]. Empty means all.
	DryRun    bool      `mapstructure:"dry_run"`
	Verbose   bool      `mapstructure:"verbose"`
	LogFile   string    `mapstructure:"log_file"` // Default: "compression.log". Empty disables the file sink.
	Color     ColorMode `mapstructure:"color"`
	Progress  bool      `mapstructure:"progress"` // Live progress view. Default: true.

	Backup BackupConfig `mapstructure:"backup"`
	Tools  ToolPaths    `mapstructure:"tools"`
	Report ReportConfig `mapstructure:"report"`
}

// BackupConfig controls the safety-net mirror written before any file is replaced.
type BackupConfig struct {
	Enabled        bool   `mapstructure:"enabled"`           // Default: true.
	Dir            string `mapstructure:"dir"`               // Default: ".image_backup".
	ForceSkipCheck bool   `mapstructure:"force_skip_check"` // Bypass the backup gate entirely.
}

// ToolPaths names the binary used for each compression capability.
type ToolPaths struct {
	Mozjpeg   string `mapstructure:"mozjpeg"`
	Pngquant  string `mapstructure:"pngquant"`
	Optipng   string `mapstructure:"optipng"`
	Zopflipng string `mapstructure:"zopflipng"`
	Cwebp     string `mapstructure:"cwebp"`
	Gifsicle  string `mapstructure:"gifsicle"`
}

// ReportConfig controls the persisted JSON stats record and summary detail.
type ReportConfig struct {
	Dir           string `mapstructure:"dir"`            // Default: ".".
	Disabled      bool   `mapstructure:"disabled"`       // Do not write the JSON record.
	SkipBreakdown bool   `mapstructure:"skip_breakdown"` // Print skipped counts per cause.
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Quality:  85,
		Workers:  4,
		LogFile:  "compression.log",
		Color:    ColorAuto,
		Progress: true,
		Backup: BackupConfig{
			Enabled: true,
			Dir:     ".image_backup",
		},
		Tools: ToolPaths{
			Mozjpeg:   "cjpeg",
			Pngquant:  "pngquant",
			Optipng:   "optipng",
			Zopflipng: "zopflipng",
			Cwebp:     "cwebp",
			Gifsicle:  "gifsicle",
		},
		Report: ReportConfig{
			Dir: ".",
		},
	}
}

// SetDefaults registers DefaultConfig on v so that file, env and flag values
// are layered over it.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("quality", d.Quality)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("recursive", d.Recursive)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("color", string(d.Color))
	v.SetDefault("progress", d.Progress)

	v.SetDefault("backup.enabled", d.Backup.Enabled)
	v.SetDefault("backup.dir", d.Backup.Dir)
	v.SetDefault("backup.force_skip_check", d.Backup.ForceSkipCheck)

	v.SetDefault("tools.mozjpeg", d.Tools.Mozjpeg)
	v.SetDefault("tools.pngquant", d.Tools.Pngquant)
	v.SetDefault("tools.optipng", d.Tools.Optipng)
	v.SetDefault("tools.zopflipng", d.Tools.Zopflipng)
	v.SetDefault("tools.cwebp", d.Tools.Cwebp)
	v.SetDefault("tools.gifsicle", d.Tools.Gifsicle)

	v.SetDefault("report.dir", d.Report.Dir)
	v.SetDefault("report.disabled", d.Report.Disabled)
	v.SetDefault("report.skip_breakdown", d.Report.SkipBreakdown)
}

// Load reads configuration into a Config. configPath names an explicit file;
// when empty, imgcrush.yaml in the current directory is used if present.
// Flags must already be bound to v by the caller.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("imgcrush")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("imgcrush")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that must be correct before any file is touched.
func (c *Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("%w (got %d)", ErrInvalidQuality, c.Quality)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidWorkers, c.Workers)
	}
	for _, f := range c.Formats {
		if imgutil.KindFromExt(f) == imgutil.KindUnknown {
			return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidColor, c.Color)
	}
	return nil
}

// FormatKinds resolves the Formats filter. A nil map means no filtering.
func (c *Config) FormatKinds() map[imgutil.Kind]bool {
	if len(c.Formats) == 0 {
		return nil
	}
	kinds := make(map[imgutil.Kind]bool, len(c.Formats))
	for _, f := range c.Formats {
		kinds[imgutil.KindFromExt(f)] = true
	}
	return kinds
}
