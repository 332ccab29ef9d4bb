package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentpipe"
	"github.com/hupe1980/agentpipe/config"
	"github.com/hupe1980/agentpipe/tools/datafeed"
)

type rootFlags struct {
	configPath      string
	provider        string
	logLevel        string
	simulateLatency bool
	seed            uint64
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "agentpipe",
		Short:        "Run sequential, parallel and single-agent pipelines",
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&flags.provider, "provider", "", "override the model provider (anthropic, openai, offline)")
	pf.StringVar(&flags.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	pf.BoolVar(&flags.simulateLatency, "simulate-latency", true, "sleep like a remote API in the data feed tools")
	pf.Uint64Var(&flags.seed, "seed", 0, "seed the data feed for reproducible output (0 picks a random seed)")

	cmd.AddCommand(
		newPipelineCmd(flags),
		newAggregateCmd(flags),
		newAssistantCmd(flags),
		newBenchmarkCmd(flags),
		newConfigCmd(flags),
	)

	return cmd
}

// loadConfig loads the config file and environment and applies flag
// overrides. The result is not validated.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if f.provider != "" {
		cfg.Provider = f.provider
		// a provider default follows the provider; an explicit model stays
		switch cfg.Model {
		case "", config.DefaultModel(config.ProviderAnthropic), config.DefaultModel(config.ProviderOpenAI):
			cfg.Model = config.DefaultModel(f.provider)
		}
	}

	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	return cfg, nil
}

func (f *rootFlags) newFeed() *datafeed.Feed {
	var optFns []func(o *datafeed.FeedOptions)
	if f.seed != 0 {
		optFns = append(optFns, datafeed.WithSeed(f.seed))
	}
	if !f.simulateLatency {
		optFns = append(optFns, datafeed.WithoutLatency())
	}
	return datafeed.New(optFns...)
}

// sessionOptions returns the façade options shared by all subcommands.
func (f *rootFlags) sessionOptions(cmd *cobra.Command, appName string) (func(o *agentpipe.Options), error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	// each subcommand names its own app unless configured otherwise
	if cfg.AppName == config.Default().AppName {
		cfg.AppName = appName
	}

	feed := f.newFeed()

	return func(o *agentpipe.Options) {
		o.Config = cfg
		o.LogOutput = cmd.ErrOrStderr()
		o.Feed = feed
	}, nil
}
