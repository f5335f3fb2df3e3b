package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/KhaledSharif/rocket/internal/client"
)

// ErrUsage is returned for a malformed command line.
var ErrUsage = errors.New("usage")

// CLI runs commands against one server.
type CLI struct {
	client *client.Client
	out    io.Writer
	color  bool
}

type command struct {
	name  string
	usage string
	help  string
	run   func(c *CLI, ctx context.Context, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"put", "put <key> <value>", "store a value, stamped with the server time", (*CLI).put},
		{"get", "get <key> [time_gt] [time_lt]", "list values in the open time range", (*CLI).get},
		{"export", "export <key> <file> [time_gt] [time_lt]", "save values as a parquet file", (*CLI).export},
		{"stats", "stats", "show server statistics", (*CLI).stats},
		{"health", "health", "check server and store health", (*CLI).health},
	}
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

// Run executes one command line.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command", ErrUsage)
	}
	cmd, ok := lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	if err := cmd.run(c, ctx, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
		}
		return err
	}
	return nil
}

func (c *CLI) put(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	if err := c.client.Put(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *CLI) get(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return ErrUsage
	}
	r, err := client.ParseRange(arg(args, 1), arg(args, 2))
	if err != nil {
		return err
	}
	msgs, err := c.client.Get(ctx, args[0], r)
	if err != nil {
		return err
	}
	return c.printJSON(msgs)
}

func (c *CLI) export(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return ErrUsage
	}
	r, err := client.ParseRange(arg(args, 2), arg(args, 3))
	if err != nil {
		return err
	}

	f, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[1], err)
	}
	if err := c.client.Export(ctx, args[0], r, f); err != nil {
		f.Close()
		os.Remove(args[1])
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", args[1], err)
	}

	fmt.Fprintf(c.out, "wrote %s\n", args[1])
	return nil
}

func (c *CLI) stats(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	sr, err := c.client.Stats(ctx)
	if err != nil {
		return err
	}
	return c.printJSON(sr)
}

func (c *CLI) health(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := c.client.Health(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

// printJSON writes v indented, and colored on a terminal.
func (c *CLI) printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = pretty.Pretty(data)
	if c.color {
		data = pretty.Color(data, nil)
	}
	_, err = c.out.Write(data)
	return err
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// splitLine splits a shell line into words. Double quotes group words.
func splitLine(line string) []string {
	var (
		words  []string
		cur    strings.Builder
		quoted bool
		inWord bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true
		case (r == ' ' || r == '\t') && !quoted:
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words
}
