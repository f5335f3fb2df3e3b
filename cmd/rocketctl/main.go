// rocketctl is the command line client for rocketd.
//
// Usage:
//
//	rocketctl [-server URL] put <key> <value>
//	rocketctl [-server URL] get <key> [time_gt] [time_lt]
//	rocketctl [-server URL] export <key> <file> [time_gt] [time_lt]
//	rocketctl [-server URL] stats
//	rocketctl [-server URL] health
//
// Without a command on a terminal, rocketctl starts an interactive shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/KhaledSharif/rocket/internal/client"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	server := flag.String("server", envOr("ROCKET_SERVER", "http://localhost:8000"), "rocketd base URL (or ROCKET_SERVER env)")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "per-request timeout")
	flag.Usage = usage
	flag.Parse()

	c := client.New(*server, client.WithTimeout(*timeout))
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	cli := &CLI{client: c, out: os.Stdout, color: tty}

	if flag.NArg() == 0 {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			usage()
			os.Exit(2)
		}
		runShell(cli)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	if err := cli.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "rocketctl %s\n\nUsage:\n  rocketctl [flags] <command> [args]\n\nCommands:\n", Version)
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-45s %s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
