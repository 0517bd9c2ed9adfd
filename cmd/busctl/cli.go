package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SivaTeja36/Bus-reservation/config"
	"github.com/SivaTeja36/Bus-reservation/internal/apiclient"
	"github.com/SivaTeja36/Bus-reservation/internal/cache"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/service/auth"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

var (
	errUsage       = errors.New("invalid usage")
	errNotLoggedIn = errors.New("not logged in, run: busctl login <email>")
)

type sessionReader interface {
	CurrentUser(ctx context.Context, id string) (*domain.User, error)
}

type cli struct {
	auth      auth.AuthUseCase
	resources resources.ResourceUseCase
	sessions  sessionReader

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	readPassword func() (string, error)
}

func newCLI(cfg *config.Config, store session.Store, logger *slog.Logger) *cli {
	manager := session.NewManager(store, logger)
	client := apiclient.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), manager)
	listCache := cache.New(cache.WithStaleAfter(cfg.Cache.StaleAfter()))

	c := &cli{
		auth:      auth.NewAuthService(client, manager, auth.WithLogger(logger)),
		resources: resources.NewResourceService(client, listCache, resources.WithLogger(logger)),
		sessions:  manager,
		in:        os.Stdin,
		out:       os.Stdout,
		errOut:    os.Stderr,
	}
	c.readPassword = c.promptPassword
	return c
}

func (c *cli) run(ctx context.Context, args []string) error {
	ctx = session.WithID(ctx, session.DefaultSlot)
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "list":
		return c.list(ctx, rest)
	case "create":
		return c.create(ctx, rest)
	case "export":
		return c.export(ctx, rest)
	case "help":
		_, err := fmt.Fprint(c.out, usage)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := c.flags("login")
	passwordFile := fs.String("password-file", "", "read the password from a file instead of prompting")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: login takes exactly one email", errUsage)
	}
	email := fs.Arg(0)

	var password string
	if *passwordFile != "" {
		data, err := os.ReadFile(*passwordFile)
		if err != nil {
			return fmt.Errorf("read password file: %w", err)
		}
		password = strings.TrimRight(string(data), "\r\n")
	} else {
		p, err := c.readPassword()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = p
	}

	user, err := c.auth.Login(ctx, session.DefaultSlot, email, password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "Logged in as %s (%s)\n", user.Name, user.Role)
	return err
}

// promptPassword reads without echo from a terminal, or one line from a
// pipe.
func (c *cli) promptPassword() (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.errOut, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.errOut)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) logout(ctx context.Context) error {
	if err := c.auth.Logout(ctx, session.DefaultSlot); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.out, "Logged out")
	return err
}

func (c *cli) whoami(ctx context.Context) error {
	user, err := c.currentUser(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "%s <%s>\nRole: %s\nContact: %s\n", user.Name, user.Email, user.Role, user.Contact)
	return err
}

func (c *cli) currentUser(ctx context.Context) (*domain.User, error) {
	user, err := c.sessions.CurrentUser(ctx, session.DefaultSlot)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

// authorize resolves the resource argument and binds the signed-in user
// to ctx, refusing resources the user's role may not reach.
func (c *cli) authorize(ctx context.Context, name string) (context.Context, domain.Resource, error) {
	r, ok := domain.ParseResource(name)
	if !ok {
		return ctx, "", fmt.Errorf("%w: unknown resource %q", errUsage, name)
	}
	user, err := c.currentUser(ctx)
	if err != nil {
		return ctx, "", err
	}
	if !r.AllowedFor(user) {
		return ctx, "", fmt.Errorf("access denied: %s requires %s", r, domain.RoleSuperAdmin)
	}
	return session.WithUser(ctx, user), r, nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := c.flags("list")
	asJSON := fs.Bool("json", false, "print the raw records as JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: list takes one resource", errUsage)
	}
	ctx, r, err := c.authorize(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if !r.Listable() {
		return fmt.Errorf("%s cannot be listed", r)
	}

	if *asJSON {
		snap, err := c.resources.Snapshot(ctx, r, true)
		if err != nil {
			return err
		}
		if snap.Err != nil {
			return snap.Err
		}
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Value)
	}

	tbl, err := c.resources.Table(ctx, r)
	if err != nil {
		return err
	}
	if tbl.Len() == 0 {
		_, err = fmt.Fprintf(c.out, "No %s yet\n", r)
		return err
	}
	_, err = fmt.Fprintln(c.out, table.Text(tbl))
	return err
}

func (c *cli) create(ctx context.Context, args []string) error {
	fs := c.flags("create")
	from := fs.StringP("from-file", "f", "", "JSON payload file, or - for stdin")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 || *from == "" {
		return fmt.Errorf("%w: create takes one resource and --from-file", errUsage)
	}
	ctx, r, err := c.authorize(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	var data []byte
	if *from == "-" {
		data, err = io.ReadAll(c.in)
	} else {
		data, err = os.ReadFile(*from)
	}
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	if err := createFromJSON(ctx, c.resources, r, data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, r.CreatedMessage())
	return err
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs := c.flags("export")
	out := fs.StringP("out", "o", "", "output file (default <resource>.pdf)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: export takes one resource", errUsage)
	}
	ctx, r, err := c.authorize(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if !r.Listable() {
		return fmt.Errorf("%s cannot be exported", r)
	}
	path := *out
	if path == "" {
		path = string(r) + ".pdf"
	}

	tbl, err := c.resources.Table(ctx, r)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := table.WritePDF(&buf, r.Label(), tbl); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	_, err = fmt.Fprintf(c.out, "Wrote %d %s to %s\n", tbl.Len(), r, path)
	return err
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	return nil
}

// createFromJSON decodes data into r's create request and sends it.
// Unknown fields are rejected so typos do not turn into empty values.
func createFromJSON(ctx context.Context, svc resources.ResourceUseCase, r domain.Resource, data []byte) error {
	var err error
	switch r {
	case domain.ResourceBranches:
		var req domain.BranchRequest
		if err := decodeStrict(data, &req); err != nil {
			return err
		}
		_, err = svc.CreateBranch(ctx, req)
	case domain.ResourceCompanies:
		var req domain.CompanyRequest
		if err := decodeStrict(data, &req); err != nil {
			return err
		}
		_, err = svc.CreateCompany(ctx, req)
	case domain.ResourceBuses:
		var req domain.BusRequest
		if err := decodeStrict(data, &req); err != nil {
			return err
		}
		_, err = svc.CreateBus(ctx, req)
	case domain.ResourceTickets:
		var req domain.TicketRequest
		if err := decodeStrict(data, &req); err != nil {
			return err
		}
		_, err = svc.CreateTicket(ctx, req)
	case domain.ResourceUsers:
		var req domain.UserCreationRequest
		if err := decodeStrict(data, &req); err != nil {
			return err
		}
		_, err = svc.CreateUser(ctx, req)
	default:
		return fmt.Errorf("%w: unknown resource %q", errUsage, r)
	}
	return err
}
