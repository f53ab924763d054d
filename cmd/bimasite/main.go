package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	site "github.com/bimaakbar/bimasite"
	"github.com/bimaakbar/bimasite/store"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "admin":
		err = runAdmin(os.Args[2:])
	case "version":
		fmt.Printf("bimasite %s\n", version)
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

func printUsage() {
	fmt.Println(`bimasite - personal site with blog, music, affiliate picks and a Content Studio

Usage:
  bimasite <command> [flags]

Commands:
  serve           Run the HTTP server
  admin create    Create an administrator account
  version         Print the version
  help            Show this help message

Examples:
  bimasite serve --config site.yaml --addr :8080
  bimasite admin create --email me@example.com --password 's3cret!'`)
}

// configFlags registers the flags shared by every command that opens the
// data store. Set flags override the loaded configuration.
type configFlags struct {
	path     string
	driver   string
	database string
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.path, "config", "c", "", "YAML config file")
	fs.StringVar(&f.driver, "db-driver", "", "data store driver (sqlite or postgres)")
	fs.StringVar(&f.database, "database", "", "SQLite path or Postgres URL")
}

func (f *configFlags) load() (site.SiteConfig, error) {
	cfg, err := site.LoadConfig(f.path)
	if err != nil {
		return cfg, err
	}
	if f.driver != "" {
		cfg.DBDriver = f.driver
	}
	if f.database != "" {
		cfg.DatabaseURL = f.database
	}
	return cfg, nil
}

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	var cf configFlags
	cf.register(fs)
	addr := fs.String("addr", "", "listen address")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "log format (json or console)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}

	logger := site.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := site.Open(ctx, cfg, site.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Start(ctx)
}

func runAdmin(args []string) error {
	if len(args) == 0 || args[0] != "create" {
		return fmt.Errorf("usage: bimasite admin create --email <email> [--password <password>]")
	}
	fs := pflag.NewFlagSet("admin create", pflag.ContinueOnError)
	var cf configFlags
	cf.register(fs)
	email := fs.String("email", "", "administrator email")
	password := fs.String("password", "", "administrator password (default $ADMIN_PASSWORD)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := store.Open(ctx, store.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer s.Close()

	u, err := store.NewUserRepo(s).Create(ctx, store.UserInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("created administrator %s (%s)\n", u.Email, u.ID)
	return nil
}
