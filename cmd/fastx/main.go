// Command fastx is a thin smoke-test wrapper around config+session: it
// opens a source file, builds or attaches to its sidecar index, and logs
// the detected format, the record count and the whole-source aggregate
// (count and size). It is not the fastx subcommand surface
// (index/stat/split/fq2fa/subseq/sample/extract) — that lives in a separate
// external tool built on top of this module.
package main

import (
	"fmt"
	"os"

	"github.com/go-redis/redis"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	ddtracer "github.com/DataDog/dd-trace-go/opentracer"

	"github.com/dselans/fastx/config"
	"github.com/dselans/fastx/session"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Println("ERROR: ", err)
		os.Exit(1)
	}

	if cfg.CLI.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if cfg.CLI.Quiet {
		logrus.SetLevel(logrus.WarnLevel)
	}

	if cfg.TOML.Tracing.Enabled {
		tracer := ddtracer.New(ddtracer.WithServiceName(cfg.TOML.Tracing.Service))
		opentracing.SetGlobalTracer(tracer)
		defer tracer.Stop()
	}

	displayConfig(cfg)

	opts := session.Options{
		CheckpointInterval: cfg.EffectiveCheckpointInterval(),
		CacheWindows:       cfg.EffectiveCacheWindows(),
		Log:                logrus.NewEntry(logrus.StandardLogger()),
	}

	if cfg.TOML.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.TOML.Redis.Addr})
		opts.Redis = session.NewRedisClient(client)
	}

	sess, err := session.Open(cfg.CLI.Source, opts)
	if err != nil {
		logrus.Errorf("unable to open source: %s", err)
		os.Exit(1)
	}
	defer sess.Close()

	logrus.Infof("format: %s", sess.Format())

	count, err := sess.Count()
	if err != nil {
		logrus.Errorf("unable to count records: %s", err)
		os.Exit(1)
	}
	logrus.Infof("record count: %d", count)

	agg, err := sess.AggregateStats()
	if err != nil {
		logrus.Warnf("aggregate stats unavailable: %s", err)
	} else {
		logrus.Infof("aggregate: count=%d size=%d", agg.Count, agg.Size)
	}
}

func displayConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	logrus.Info("fastx settings:")
	logrus.Info("  [CLI]")
	logrus.Infof("  version: %s", config.VERSION)
	logrus.Infof("  debug: %v", cfg.CLI.Debug)
	logrus.Infof("  config file: %s", cfg.CLI.ConfigFile)
	logrus.Infof("  source: %s", cfg.CLI.Source)
	logrus.Infof("  rebuild: %v", cfg.CLI.Rebuild)
	logrus.Info("")
	logrus.Info("  [SESSION]")
	logrus.Infof("  checkpoint_interval: %d", cfg.EffectiveCheckpointInterval())
	logrus.Infof("  cache_windows: %d", cfg.EffectiveCacheWindows())
	logrus.Info("")
	logrus.Info("  [REDIS]")
	logrus.Infof("  enabled: %v", cfg.TOML.Redis.Enabled)
	logrus.Infof("  addr: %s", cfg.TOML.Redis.Addr)
	logrus.Info("")
	logrus.Info("  [TRACING]")
	logrus.Infof("  enabled: %v", cfg.TOML.Tracing.Enabled)
	logrus.Infof("  service: %s", cfg.TOML.Tracing.Service)
}
