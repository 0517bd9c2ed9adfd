// Command busctl is the terminal client for the bus reservation admin API.
// It shares the console's API client, session, cache and table layers and
// keeps its session in a 0600 file between runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/SivaTeja36/Bus-reservation/config"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	flag "github.com/spf13/pflag"
)

const usage = `Usage: busctl [--backend URL] [--verbose] <command> [flags]

Commands:
  login <email> [--password-file F]   sign in and store the session
  logout                              clear the stored session
  whoami                              show the signed-in user
  list <resource> [--json]            print tickets, buses, companies or branches
  create <resource> --from-file F|-   create a record from a JSON payload
  export <resource> [--out F.pdf]     write the list as a PDF
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("busctl", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	backend := global.String("backend", "", "upstream API base URL (default from config or BACKEND_URL)")
	verbose := global.BoolP("verbose", "v", false, "log requests and session changes")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, "busctl:", err)
		return 1
	}
	if *backend != "" {
		cfg.Backend.BaseURL = strings.TrimRight(*backend, "/")
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(stderr, true, level)

	c := newCLI(cfg, session.NewFileStore(session.FilePath()), logger)
	c.in, c.out, c.errOut = stdin, stdout, stderr

	if err := c.run(ctx, global.Args()); err != nil {
		fmt.Fprintln(stderr, "busctl:", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		return 1
	}
	return 0
}
