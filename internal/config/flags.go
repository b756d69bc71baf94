package config

import (
	"flag"
	"os"

	"github.com/scott12355/MeditationApp-sub000/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   GraphQL API endpoint URL
//	-t string   token exchange endpoint URL
//	-d string   local database path
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIEndpointURL, "a", cfg.APIEndpointURL, "GraphQL API endpoint URL")
	fs.StringVar(&cfg.TokenEndpointURL, "t", cfg.TokenEndpointURL, "token exchange endpoint URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
