package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("log-file", "", "Also log to this file (rotated)")
	flagModelType = flag.String("type", "", "Model type when the scene does not set one (PART, PROP, INTERNAL)")
	flagOutput    = flag.String("o", "", "Output .mu path (defaults to <object>.mu next to the scene)")
	flagObject    = flag.String("object", "", "Name of the object to export (defaults to the active object)")
	flagWatch     = flag.Bool("watch", false, "Re-export whenever the scene file changes")
	flagDump      = flag.Bool("dump", false, "Dump the built model tree to stdout")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path given with -config.
func ConfigPath() string {
	return *flagConfig
}

func OutputPath() string {
	return *flagOutput
}

func ObjectName() string {
	return *flagObject
}

func Watch() bool {
	return *flagWatch
}

func Dump() bool {
	return *flagDump
}

func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagModelType != "" {
		cfg.Export.DefaultModelType = *flagModelType
	}
}
