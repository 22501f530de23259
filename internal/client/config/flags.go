package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/videonotes/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the cloud sync server (default from Config)
//	-f string   path to the local database file (default from Config)
//	-i int      bridge announce interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the cloud sync server")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path to the local database file")
	announceInterval := fs.Int("i", int(cfg.AnnounceInterval.Seconds()), "bridge announce interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AnnounceInterval = time.Duration(*announceInterval) * time.Second
}
