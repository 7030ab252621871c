package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/tournament-admin/internal/app"
	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/screen"
)

var errUsage = errors.New("usage")

var outputAPI = sonic.Config{
	SortMapKeys: true,
	EscapeHTML:  false,
}.Froze()

const usageText = `usage: admin <command> [flags] [args]

commands:
  entities                              list managed entities and their routes
  list   [-page N -size N -sort f,dir] <entity>
  get    <entity> <id>
  form   <entity> [id]                  show form inputs for a new or stored record
  create <entity> field=value...        repeat a relation field to pick several ids
  update <entity> <id> field=value...
  patch  <entity> <id> [json|-]         merge-patch; reads stdin when json is - or absent
  delete [-yes] <entity> <id>
  open   [-yes] <path>                  run the screen behind a route such as /camp/5/edit
`

type cli struct {
	state  *app.State
	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, state *app.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return 2
	}

	c := &cli{
		state:  state,
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}

	err := c.dispatch(ctx, args[0], args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usageText)
		return 2
	default:
		fmt.Fprintln(stderr, "error:", crud.Message(err))
		return 1
	}
}

func (c *cli) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "entities":
		return c.entities()
	case "list":
		return c.list(ctx, args)
	case "get":
		return c.get(ctx, args)
	case "form":
		return c.form(ctx, args)
	case "create":
		return c.create(ctx, args)
	case "update":
		return c.update(ctx, args)
	case "patch":
		return c.patch(ctx, args)
	case "delete":
		return c.remove(ctx, args)
	case "open":
		return c.open(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usageText)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

type entitySummary struct {
	Name      string `json:"name"`
	Route     string `json:"route"`
	Resource  string `json:"resource"`
	Eagerload bool   `json:"eagerload,omitempty"`
	ListPath  string `json:"listPath"`
	NewPath   string `json:"newPath"`
}

func (c *cli) entities() error {
	entities := c.state.Entities()
	out := make([]entitySummary, 0, len(entities))
	for _, handle := range entities {
		desc := handle.Descriptor()
		out = append(out, entitySummary{
			Name:      desc.Name,
			Route:     desc.Route,
			Resource:  desc.Resource,
			Eagerload: desc.Eagerload,
			ListPath:  screen.ListPath(desc),
			NewPath:   screen.NewPath(desc),
		})
	}
	return c.print(out)
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	defaults := crud.ListQuery{Size: c.state.Config.ListPageSize, Sort: strings.Join(c.state.Config.ListSort, ",")}
	page := fs.Int("page", 0, "zero-based page")
	size := fs.Int("size", defaults.Size, "page size")
	sort := fs.String("sort", defaults.Sort, "sort as field,asc|desc; empty loads everything")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	handle, rest, err := c.entity(fs.Args())
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, rest)
	}

	listing, err := handle.List(ctx, crud.ListQuery{
		Page:      *page,
		Size:      *size,
		Sort:      strings.TrimSpace(*sort),
		Eagerload: handle.Descriptor().Eagerload,
	})
	if err != nil {
		return err
	}
	return c.print(listing)
}

func (c *cli) get(ctx context.Context, args []string) error {
	handle, id, _, err := c.entityWithID(args)
	if err != nil {
		return err
	}
	record, err := handle.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.print(record)
}

func (c *cli) form(ctx context.Context, args []string) error {
	handle, rest, err := c.entity(args)
	if err != nil {
		return err
	}
	var id int64
	if len(rest) > 0 {
		if id, err = parseID(rest[0]); err != nil {
			return err
		}
	}
	inputs, err := handle.Form(ctx, id)
	if err != nil {
		return err
	}
	return c.print(inputs)
}

func (c *cli) create(ctx context.Context, args []string) error {
	handle, rest, err := c.entity(args)
	if err != nil {
		return err
	}
	fields, err := parseFields(rest)
	if err != nil {
		return err
	}
	saved, err := handle.Save(ctx, 0, fields)
	if err != nil {
		return err
	}
	return c.print(saved)
}

func (c *cli) update(ctx context.Context, args []string) error {
	handle, id, rest, err := c.entityWithID(args)
	if err != nil {
		return err
	}
	fields, err := parseFields(rest)
	if err != nil {
		return err
	}
	saved, err := handle.Save(ctx, id, fields)
	if err != nil {
		return err
	}
	return c.print(saved)
}

func (c *cli) patch(ctx context.Context, args []string) error {
	handle, id, rest, err := c.entityWithID(args)
	if err != nil {
		return err
	}

	var raw []byte
	if len(rest) == 0 || rest[0] == "-" {
		raw, err = io.ReadAll(c.stdin)
		if err != nil {
			return fmt.Errorf("read patch from stdin: %w", err)
		}
	} else {
		raw = []byte(strings.Join(rest, " "))
	}

	saved, err := handle.Patch(ctx, id, raw)
	if err != nil {
		return err
	}
	return c.print(saved)
}

func (c *cli) remove(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	handle, id, _, err := c.entityWithID(fs.Args())
	if err != nil {
		return err
	}
	return c.confirmDelete(ctx, handle, id, *yes)
}

func (c *cli) confirmDelete(ctx context.Context, handle app.Entity, id int64, yes bool) error {
	deleted, err := handle.Delete(ctx, id, func(record any) bool {
		if yes {
			return true
		}
		return c.ask(fmt.Sprintf("delete %s %d?", handle.Descriptor().Name, id), record)
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(c.stderr, "delete cancelled")
		return nil
	}
	fmt.Fprintf(c.stderr, "deleted %s %d\n", handle.Descriptor().Name, id)
	return nil
}

func (c *cli) open(ctx context.Context, args []string) error {
	fs := newFlagSet("open")
	yes := fs.Bool("yes", false, "skip the confirmation prompt on delete routes")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: open takes exactly one path", errUsage)
	}

	route, handle, err := c.state.Route(fs.Arg(0))
	if err != nil {
		return err
	}

	switch route.Mode {
	case screen.ModeList:
		desc := handle.Descriptor()
		query := crud.ListQuery{
			Size:      c.state.Config.ListPageSize,
			Sort:      strings.Join(c.state.Config.ListSort, ","),
			Eagerload: desc.Eagerload,
		}
		listing, err := handle.List(ctx, query)
		if err != nil {
			return err
		}
		return c.print(listing)
	case screen.ModeDetail:
		record, err := handle.Get(ctx, route.ID)
		if err != nil {
			return err
		}
		return c.print(record)
	case screen.ModeCreate, screen.ModeEdit:
		inputs, err := handle.Form(ctx, route.ID)
		if err != nil {
			return err
		}
		return c.print(inputs)
	case screen.ModeDelete:
		return c.confirmDelete(ctx, handle, route.ID, *yes)
	default:
		return fmt.Errorf("unsupported route mode %q", route.Mode)
	}
}

func (c *cli) entity(args []string) (app.Entity, []string, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("%w: entity name required", errUsage)
	}
	handle, ok := c.state.Entity(args[0])
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown entity %q", errUsage, args[0])
	}
	return handle, args[1:], nil
}

func (c *cli) entityWithID(args []string) (app.Entity, int64, []string, error) {
	handle, rest, err := c.entity(args)
	if err != nil {
		return nil, 0, nil, err
	}
	if len(rest) == 0 {
		return nil, 0, nil, fmt.Errorf("%w: %s id required", errUsage, handle.Descriptor().Name)
	}
	id, err := parseID(rest[0])
	if err != nil {
		return nil, 0, nil, err
	}
	return handle, id, rest[1:], nil
}

func (c *cli) ask(question string, record any) bool {
	if record != nil {
		if err := c.print(record); err != nil {
			return false
		}
	}
	fmt.Fprintf(c.stderr, "%s [y/N] ", question)
	answer, err := c.stdin.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (c *cli) print(v any) error {
	raw, err := outputAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	raw = append(raw, '\n')
	_, err = c.stdout.Write(raw)
	return err
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, raw)
	}
	return id, nil
}

// parseFields turns name=value arguments into form values. Repeating a name
// appends, which is how several ids are picked for a many relation.
func parseFields(args []string) (url.Values, error) {
	values := url.Values{}
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected field=value, got %q", errUsage, arg)
		}
		values.Add(name, value)
	}
	return values, nil
}
