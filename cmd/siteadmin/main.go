package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logger := newLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(logger)
	case "config":
		err = runConfig(os.Args[2:])
	case "blog":
		err = runBlog(os.Args[2:])
	case "downloads":
		err = runDownloads(os.Args[2:])
	case "version":
		fmt.Printf("siteadmin %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes JSON lines, or human readable output when env is
// "development".
func newLogger(env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}

func printUsage() {
	fmt.Println(`siteadmin - Gumboot marketing site service and admin client

Usage:
  siteadmin <command> [arguments]

Commands:
  serve                               Run the HTTP server
  config show                         Print the site document as JSON
  config set-hero <field> <value>     Set a hero field
  config add-feature                  Append a placeholder feature
  config set-feature <i> <field> <v>  Set title or desc of feature i
  config remove-feature <i>           Remove feature i
  config add-blog                     Append a new blog entry
  config set-blog <i> <field> <v>     Set a field of blog entry i
  config remove-blog <i>              Remove blog entry i
  blog list                           List blog collection posts
  blog delete <id>                    Delete a blog collection post
  downloads list                      List app downloads
  version                             Print the version
  help                                Show this help message

The config, blog and downloads commands talk to a running server at
SITEADMIN_URL (default http://localhost:3000) and log in with ADMIN_PASSWORD.`)
}
