// flowgate is the bearer-token gatekeeper in front of the flow editor.
//
// Usage:
//
//	flowgate [serve] [--config path]
//	flowgate admin-auth [--config path]
//	flowgate hash-password [--cost n] < password
//	flowgate version
//
// serve loads the credential set once, then serves the gate until SIGINT
// or SIGTERM. admin-auth prints the admin login descriptor the editor
// consumes, or null when no password hash is configured.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/flowgate/config"
	"github.com/jonwraymond/flowgate/credential"
	"github.com/jonwraymond/flowgate/observe"
	"github.com/jonwraymond/flowgate/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		return runServe(args, stderr)
	case "admin-auth":
		return runAdminAuth(args, stdout, stderr)
	case "hash-password":
		return runHashPassword(args, stdin, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "flowgate %s\n", version)
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: flowgate <command> [flags]

Commands:
  serve          run the gate (default)
  admin-auth     print the admin login descriptor as JSON
  hash-password  read a password on stdin and print its bcrypt hash
  version        print the version
`)
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("flowgate "+name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	return flagSet
}

func parseFlags(flagSet *pflag.FlagSet, args []string) error {
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.LoadFile(path)
}

func runServe(args []string, stderr io.Writer) error {
	var configPath string
	flagSet := newFlagSet("serve", stderr)
	flagSet.StringVarP(&configPath, "config", "c", os.Getenv("FLOWGATE_CONFIG"), "path to the YAML configuration file")
	if err := parseFlags(flagSet, args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.Observe.Version = version
	cfg.Observe.Logging.Output = stderr

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg, nil)
	if err != nil {
		return err
	}

	runErr := app.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, app.Close(closeCtx))
}

func runAdminAuth(args []string, stdout, stderr io.Writer) error {
	var configPath string
	flagSet := newFlagSet("admin-auth", stderr)
	flagSet.StringVarP(&configPath, "config", "c", os.Getenv("FLOWGATE_CONFIG"), "path to the YAML configuration file")
	if err := parseFlags(flagSet, args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := observe.NewLoggerWithWriter(cfg.Observe.Logging.Level, stderr)
	set, resolver, err := server.LoadCredentials(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer func() { _ = resolver.Close() }()

	data, err := set.AdminAuthJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", data)
	return err
}

func runHashPassword(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cost int
	flagSet := newFlagSet("hash-password", stderr)
	flagSet.IntVar(&cost, "cost", 0, "bcrypt cost (0 uses the library default)")
	if err := parseFlags(flagSet, args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password is empty")
	}

	hash, err := credential.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}
