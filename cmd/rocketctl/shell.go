package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
)

func isExit(in string) bool {
	switch strings.TrimSpace(in) {
	case "exit", "quit":
		return true
	}
	return false
}

// runShell starts the interactive shell.
func runShell(cli *CLI) {
	fmt.Printf("rocketctl %s connected to %s\n", Version, cli.client.BaseURL())
	fmt.Println(`Type "help" for commands, "exit" to quit.`)

	executor := func(in string) {
		in = strings.TrimSpace(in)
		if in == "" || isExit(in) {
			return
		}
		if in == "help" {
			for _, cmd := range commands {
				fmt.Printf("  %-45s %s\n", cmd.usage, cmd.help)
			}
			return
		}
		if err := cli.Run(context.Background(), splitLine(in)); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}

	p := prompt.New(
		executor,
		completer,
		prompt.OptionPrefix("rocket> "),
		prompt.OptionTitle("rocketctl"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && isExit(in)
		}),
	)
	p.Run()
}

func completer(d prompt.Document) []prompt.Suggest {
	// Only the command word is completed.
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	s := make([]prompt.Suggest, 0, len(commands)+2)
	for _, cmd := range commands {
		s = append(s, prompt.Suggest{Text: cmd.name, Description: cmd.help})
	}
	s = append(s,
		prompt.Suggest{Text: "help", Description: "list commands"},
		prompt.Suggest{Text: "exit", Description: "leave the shell"},
	)
	return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
}
