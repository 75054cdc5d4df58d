package main

import (
	"flag"
	"fmt"

	"github.com/Guliveer/powerbar/internal/config"
	"github.com/Guliveer/powerbar/internal/kind"
)

// options holds the parsed command line.
type options struct {
	overrides   config.CLIOverrides
	configPath  string
	writeConfig string
	showVersion bool
}

// parseFlags parses args into options. Only flags that were given on the
// command line become config overrides, so file and environment values
// survive when a flag is left at its default.
func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	defaults := config.DefaultConfig()

	kinds := defaults.Kinds
	lowPercentage := defaults.LowPercentage
	lowClass := defaults.LowClass
	listen := defaults.Listen
	refresh := defaults.Refresh.Duration

	opts := &options{}

	fs.Var(&kinds, "kinds", "Device kinds to match, comma separated (see below)")
	fs.Var(&kinds, "k", "Shorthand for --kinds")
	fs.StringVar(&lowClass, "low-class", lowClass, "CSS class returned when the battery percentage is at or below --low-percentage")
	fs.Float64Var(&lowPercentage, "low-percentage", lowPercentage, "The percentage at or below which --low-class is included in output")
	fs.Float64Var(&lowPercentage, "l", lowPercentage, "Shorthand for --low-percentage")
	fs.BoolVar(&listen, "listen", listen, "If set, run continuously")
	fs.DurationVar(&refresh, "refresh", refresh, "How frequently to refresh even if there aren't any UPower events")
	fs.DurationVar(&refresh, "r", refresh, "Shorthand for --refresh")
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (default: auto-discover)")
	fs.StringVar(&opts.overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&opts.overrides.MetricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9101")
	fs.StringVar(&opts.writeConfig, "write-config", "", "Write the effective configuration as YAML to this path and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [flags]\n\n", fs.Name())
		fs.PrintDefaults()
		fmt.Fprintf(out, "\n%s\n", kind.HelpText(helpWidth()))
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kinds", "k":
			opts.overrides.Kinds = &kinds
		case "low-class":
			opts.overrides.LowClass = &lowClass
		case "low-percentage", "l":
			opts.overrides.LowPercentage = &lowPercentage
		case "listen":
			opts.overrides.Listen = &listen
		case "refresh", "r":
			opts.overrides.Refresh = &refresh
		}
	})

	return opts, nil
}
