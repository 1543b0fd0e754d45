package cli

import (
	"errors"
	"flag"
)

// RecalcFlags are the flags of the recalc command.
type RecalcFlags struct {
	ConfigPath string
	SessionID  string
	All        bool
	DryRun     bool
	Verbose    bool
}

// ParseRecalcFlags parses recalc flags from command line
func ParseRecalcFlags() RecalcFlags {
	var flags RecalcFlags
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	flag.StringVar(&flags.SessionID, "session", "", "Session ID to recalculate")
	flag.BoolVar(&flags.All, "all", false, "Recalculate every session")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Show the allocation without writing it")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// Validate requires exactly one of -session and -all.
func (f RecalcFlags) Validate() error {
	if (f.SessionID == "") == !f.All {
		return errors.New("exactly one of -session or -all is required")
	}
	return nil
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	ConfigPath string
	Port       int
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = from config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
