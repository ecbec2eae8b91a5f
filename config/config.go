// Package config loads fastx's session configuration: CLI flags for
// index-build tuning and cache sizing, plus an optional TOML settings
// document carrying those knobs as defaults along with Redis and tracing
// settings. This is session
// configuration only — it is not the external CLI front end's subcommand
// surface (index/stat/split/...), which is out of scope here.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	EnvVarPrefix = "FASTX"

	DefaultCheckpointInterval = duration(0) // 0 means "use gzindex.DefaultCheckpointInterval"
	DefaultCacheWindows       = 64

	MinCheckpointInterval = duration(4096)
	MaxCheckpointInterval = duration(1 << 30)
	MinCacheWindows       = 1
	MaxCacheWindows       = 100_000
)

// VERSION gets set during build.
var VERSION = "0.0.0"

// Config is the fully resolved configuration: CLI flags layered over an
// optional TOML settings document.
type Config struct {
	CLI  *CLI
	TOML *TOML
}

// TOML is the settings document a deployment can check in alongside the
// files it indexes, supplying defaults so they don't have to be repeated on
// every CLI invocation.
type TOML struct {
	Session *TOMLSession `toml:"session"`
	Redis   *TOMLRedis   `toml:"redis"`
	Tracing *TOMLTracing `toml:"tracing"`
}

type TOMLSession struct {
	LogLevel           string   `toml:"log_level"`
	CheckpointInterval duration `toml:"checkpoint_interval"`
	CacheWindows       int      `toml:"cache_windows"`
}

type TOMLRedis struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type TOMLTracing struct {
	Enabled bool   `toml:"enabled"`
	Service string `toml:"service"`
	Agent   string `toml:"agent"`
}

// CLI is the flag surface for cmd/fastx's smoke-test entry point.
type CLI struct {
	ConfigFile string `kong:"help='Path to the TOML config file',type='path',default='fastx.toml',short='c'"`
	Source     string `kong:"arg,help='Path to a FASTA or FASTQ file (optionally gzip-compressed)'"`

	CheckpointInterval duration `kong:"help='Gzip checkpoint spacing in uncompressed bytes, given as a byte count or a Go duration string; 0 uses the built-in byte-spacing default',short='i'"`
	CacheWindows       int      `kong:"help='Number of decompressed byte ranges to cache',short='w',default='0'"`
	Rebuild            bool     `kong:"help='Force an index rebuild even if the sidecar looks current',short='r'"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Quiet   bool             `kong:"help='Disable informational output',short='q'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`

	// Internal bits
	Ctx *kong.Context `kong:"-"`
}

func NewConfig() (*Config, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	cli, err := readCLIArgs()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing CLI args")
	}

	tomlConfig, err := readTOML(cli.ConfigFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	return &Config{
		CLI:  cli,
		TOML: tomlConfig,
	}, nil
}

func setTOMLDefaults(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if t.Session == nil {
		t.Session = &TOMLSession{}
	}

	if t.Redis == nil {
		t.Redis = &TOMLRedis{}
	}

	if t.Tracing == nil {
		t.Tracing = &TOMLTracing{}
	}

	if t.Session.CheckpointInterval == 0 {
		t.Session.CheckpointInterval = DefaultCheckpointInterval
	}

	if t.Session.CacheWindows == 0 {
		t.Session.CacheWindows = DefaultCacheWindows
	}

	return nil
}

func Validate(c *Config) error {
	if err := validateCLIArgs(c.CLI); err != nil {
		return errors.Wrap(err, "error validating CLI args")
	}

	if err := validateTOML(c.TOML); err != nil {
		return errors.Wrap(err, "error validating toml config")
	}

	return nil
}

func validateTOML(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if err := validateTOMLSession(t.Session); err != nil {
		return errors.Wrap(err, "session error(s)")
	}

	if err := validateTOMLRedis(t.Redis); err != nil {
		return errors.Wrap(err, "redis error(s)")
	}

	if err := validateTOMLTracing(t.Tracing); err != nil {
		return errors.Wrap(err, "tracing error(s)")
	}

	return nil
}

func validateTOMLSession(s *TOMLSession) error {
	if s == nil {
		return errors.New("session cannot be empty")
	}

	if s.CheckpointInterval != 0 && (s.CheckpointInterval < MinCheckpointInterval || s.CheckpointInterval > MaxCheckpointInterval) {
		return errors.Errorf("session.checkpoint_interval must be between %d and %d", int64(MinCheckpointInterval), int64(MaxCheckpointInterval))
	}

	if s.CacheWindows < MinCacheWindows || s.CacheWindows > MaxCacheWindows {
		return errors.Errorf("session.cache_windows must be between %d and %d", MinCacheWindows, MaxCacheWindows)
	}

	return nil
}

func validateTOMLRedis(r *TOMLRedis) error {
	if r == nil {
		return errors.New("redis cannot be empty")
	}

	if r.Enabled && r.Addr == "" {
		return errors.New("redis.addr cannot be empty when redis.enabled is true")
	}

	return nil
}

func validateTOMLTracing(t *TOMLTracing) error {
	if t == nil {
		return errors.New("tracing cannot be empty")
	}

	if t.Enabled && t.Service == "" {
		return errors.New("tracing.service cannot be empty when tracing.enabled is true")
	}

	return nil
}

func readCLIArgs() (*CLI, error) {
	cli := &CLI{}
	cli.Ctx = kong.Parse(cli,
		kong.Name("fastx"),
		kong.Description("Random-access FASTA/FASTQ session smoke test"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": VERSION,
		})

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}

	return cli, nil
}

// readTOML loads file if present, returning plain defaults if it doesn't
// exist: unlike the migration config this settings document is optional,
// not a required destination mapping.
func readTOML(file string) (*TOML, error) {
	tomlConfig := &TOML{}

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			if defErr := setTOMLDefaults(tomlConfig); defErr != nil {
				return nil, defErr
			}
			return tomlConfig, nil
		}
		return nil, errors.Wrap(err, "error reading file")
	}

	if err := toml.Unmarshal(data, tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error parsing TOML config")
	}

	if err := setTOMLDefaults(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error setting TOML defaults")
	}

	if err := validateTOML(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error validating TOML config")
	}

	return tomlConfig, nil
}

func validateCLIArgs(cli *CLI) error {
	if cli == nil {
		return errors.New("config cannot be nil")
	}

	return nil
}

// EffectiveCheckpointInterval applies CLI > TOML > built-in default
// precedence, resolving to the byte spacing gzindex expects (a zero result
// tells the caller to use gzindex.DefaultCheckpointInterval).
func (c *Config) EffectiveCheckpointInterval() int64 {
	if c.CLI.CheckpointInterval > 0 {
		return int64(c.CLI.CheckpointInterval)
	}
	return int64(c.TOML.Session.CheckpointInterval)
}

// EffectiveCacheWindows applies the same precedence for cache sizing.
func (c *Config) EffectiveCacheWindows() int {
	if c.CLI.CacheWindows > 0 {
		return c.CLI.CacheWindows
	}
	return c.TOML.Session.CacheWindows
}

// Copied from https://www.kelche.co/blog/go/toml/
type duration int64

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *duration) UnmarshalText(text []byte) error {
	// checkpoint spacing is naturally a byte count; accept a plain integer
	// before falling back to Go duration syntax ("5s", "1m").
	if n, err := strconv.ParseInt(string(text), 10, 64); err == nil {
		*d = duration(n)
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(dur)
	return nil
}
