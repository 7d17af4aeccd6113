package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"profleet/internal/catalog"
	"profleet/internal/fleet"
	"profleet/internal/procscan"
)

const (
	envPrefix    = "PROFLEET"
	envHome      = "PROFLEET_HOME"
	settingsName = "settings.yaml"
	homeDirName  = ".profleet"
)

// Settings is the persisted settings record.
type Settings struct {
	RootPath  string          `mapstructure:"root_path"`
	BatchSize string          `mapstructure:"batch_size"`
	Target    TargetConfig    `mapstructure:"target"`
	Launch    LaunchConfig    `mapstructure:"launch"`
	Terminate TerminateConfig `mapstructure:"terminate"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
}

// TargetConfig identifies the managed application and its profile layout.
type TargetConfig struct {
	NameToken     string `mapstructure:"name_token"`
	Executable    string `mapstructure:"executable"`
	VendorSegment string `mapstructure:"vendor_segment"`
	ProfilePrefix string `mapstructure:"profile_prefix"`
	MarkerDir     string `mapstructure:"marker_dir"`
	HiddenFlag    string `mapstructure:"hidden_flag"`
}

type LaunchConfig struct {
	SettleDelay   time.Duration `mapstructure:"settle_delay"`
	FollowupDelay time.Duration `mapstructure:"followup_delay"`
	SpawnTimeout  time.Duration `mapstructure:"spawn_timeout"`
}

type TerminateConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Backoff  time.Duration `mapstructure:"backoff"`
}

type DaemonConfig struct {
	// MetricsAddr enables the Prometheus endpoint when non-empty.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Root returns the trimmed root path. Empty means unconfigured.
func (s Settings) Root() string {
	return strings.TrimSpace(s.RootPath)
}

// BatchSizeValue parses BatchSize, falling back to 1.
func (s Settings) BatchSizeValue() int {
	return ParseBatchSize(s.BatchSize)
}

// ParseBatchSize parses a positive batch size. Anything else yields 1.
func ParseBatchSize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// ProcessTarget returns the process target with defaults for empty fields.
func (s Settings) ProcessTarget() procscan.Target {
	t := procscan.DefaultTarget()
	if v := strings.TrimSpace(s.Target.NameToken); v != "" {
		t.NameToken = v
	}
	if v := strings.TrimSpace(s.Target.Executable); v != "" {
		t.Executable = v
	}
	if v := strings.TrimSpace(s.Target.VendorSegment); v != "" {
		t.VendorSegment = v
	}
	return t
}

// Layout returns the profile directory layout.
func (s Settings) Layout() catalog.Layout {
	l := catalog.DefaultLayout()
	if v := strings.TrimSpace(s.Target.ProfilePrefix); v != "" {
		l.Prefix = v
	}
	if v := strings.TrimSpace(s.Target.MarkerDir); v != "" {
		l.MarkerDir = v
	}
	return l
}

// Timing returns the launch and terminate timing. Non-positive values
// fall back to the defaults.
func (s Settings) Timing() fleet.Timing {
	t := fleet.DefaultTiming()
	if s.Launch.SettleDelay > 0 {
		t.SettleDelay = s.Launch.SettleDelay
	}
	if s.Launch.FollowupDelay > 0 {
		t.FollowupDelay = s.Launch.FollowupDelay
	}
	if s.Launch.SpawnTimeout > 0 {
		t.SpawnTimeout = s.Launch.SpawnTimeout
	}
	if s.Terminate.Attempts > 0 {
		t.TerminateAttempts = s.Terminate.Attempts
	}
	if s.Terminate.Backoff > 0 {
		t.TerminateBackoff = s.Terminate.Backoff
	}
	return t
}

// FleetOptions fills the settings-driven parts of fleet.Options. OS seams
// are left for the caller.
func (s Settings) FleetOptions(logger *log.Logger) fleet.Options {
	return fleet.Options{
		Target:     s.ProcessTarget(),
		Layout:     s.Layout(),
		Timing:     s.Timing(),
		Logger:     logger,
		HiddenFlag: strings.TrimSpace(s.Target.HiddenFlag),
	}
}

// Home returns the profleet state directory.
func Home() string {
	if v := strings.TrimSpace(os.Getenv(envHome)); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), homeDirName)
	}
	return filepath.Join(home, homeDirName)
}

// DefaultPath returns the settings file used when no path is given.
func DefaultPath() string {
	return filepath.Join(Home(), settingsName)
}

// Loader reads settings from one file plus PROFLEET_* environment overrides.
type Loader struct {
	path string
}

// NewLoader returns a loader for path, or for DefaultPath when path is empty.
func NewLoader(path string) *Loader {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	return &Loader{path: path}
}

// Path returns the settings file path.
func (l *Loader) Path() string { return l.path }

// Load re-reads the settings file. A missing file yields defaults.
func (l *Loader) Load() (Settings, error) {
	v := l.newViper()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readInConfig(v); err != nil {
		return Settings{}, fmt.Errorf("load config %s: %w", l.path, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config %s: %w", l.path, err)
	}
	return s, nil
}

// Set stores one key in the settings file, creating it if needed.
// Environment overrides are not written back.
func (l *Loader) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !knownKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	v := l.newViper()
	if err := readInConfig(v); err != nil {
		return fmt.Errorf("load config %s: %w", l.path, err)
	}
	v.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := v.WriteConfigAs(l.path); err != nil {
		return fmt.Errorf("write config %s: %w", l.path, err)
	}
	return nil
}

// Keys lists the recognised setting keys.
func Keys() []string {
	out := make([]string, 0, len(defaults))
	for _, d := range defaults {
		out = append(out, d.key)
	}
	return out
}

var defaults = []struct {
	key   string
	value any
}{
	{"root_path", ""},
	{"batch_size", "1"},
	{"target.name_token", "telegram"},
	{"target.executable", procscan.DefaultExecutable()},
	{"target.vendor_segment", "/telegram desktop/"},
	{"target.profile_prefix", catalog.DefaultPrefix},
	{"target.marker_dir", catalog.DefaultMarkerDir},
	{"target.hidden_flag", "-startintray"},
	{"launch.settle_delay", "3s"},
	{"launch.followup_delay", "1s"},
	{"launch.spawn_timeout", "15s"},
	{"terminate.attempts", 3},
	{"terminate.backoff", "500ms"},
	{"daemon.metrics_addr", ""},
}

func knownKey(key string) bool {
	for _, d := range defaults {
		if d.key == key {
			return true
		}
	}
	return false
}

func (l *Loader) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetConfigType("yaml")
	for _, d := range defaults {
		v.SetDefault(d.key, d.value)
	}
	return v
}

func readInConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
