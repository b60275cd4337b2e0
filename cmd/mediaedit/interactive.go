package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// commandList collects repeated -e flags.
type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, "; ")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// sessionCommands take a -session flag, filled in from "use" when omitted.
var sessionCommands = map[string]bool{
	"draw": true, "layer": true, "transform": true, "crop": true,
	"undo": true, "redo": true, "render": true, "edit": true,
}

type interactiveCmd struct {
	r       *root
	stdin   io.Reader
	session string
}

func newInteractiveCmd(r *root) *interactiveCmd {
	return &interactiveCmd{r: r, stdin: os.Stdin}
}

// executeLine runs one command line. It reports true when the shell should
// stop.
func (i *interactiveCmd) executeLine(line string) (bool, error) {
	args := strings.Fields(strings.TrimSpace(line))
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "exit", "quit":
		return true, nil
	case "interactive":
		return false, nil
	case "use":
		if len(args) != 2 {
			return false, fmt.Errorf("use requires a session file")
		}
		i.session = args[1]
		fmt.Fprintf(i.r.stdout, "using %s\n", i.session)
		return false, nil
	}
	if i.session != "" && sessionCommands[args[0]] && !hasFlag(args[1:], "session") {
		args = append([]string{args[0], "-session", i.session}, args[1:]...)
	}
	r := newRootWithConfig(i.r.config)
	r.stdout, r.stderr = i.r.stdout, i.r.stderr
	r.notifier = i.r.notifier
	r.prefsFile, r.stickerDir = i.r.prefsFile, i.r.stickerDir
	r.exportAlerts, r.copyAlerts = i.r.exportAlerts, i.r.copyAlerts
	r.fs.Usage = func() {}
	return false, r.Run(args)
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		n := strings.TrimLeft(a, "-")
		if a != n && (n == name || strings.HasPrefix(n, name+"=")) {
			return true
		}
	}
	return false
}

func (i *interactiveCmd) Run() error {
	fmt.Fprintln(i.r.stdout, "Enter commands (type 'exit' to quit, 'use <session>' to pick a session)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.r.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.r.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

type interactiveCLI struct {
	*interactiveCmd

	fs    *flag.FlagSet
	execs commandList
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCLI, error) {
	base := newInteractiveCmd(r)
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	cli := &interactiveCLI{interactiveCmd: base, fs: fs}
	fs.Usage = usageFunc(cli)
	fs.Var(&cli.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	fs.StringVar(&cli.session, "session", "", "session file used by commands that omit -session")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cli, nil
}

func (c *interactiveCLI) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *interactiveCLI) Program() string {
	return c.r.Program() + " interactive"
}

func (c *interactiveCLI) Run() error {
	if len(c.execs) > 0 {
		for _, cmd := range c.execs {
			done, err := c.executeLine(cmd)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}
	return c.interactiveCmd.Run()
}
