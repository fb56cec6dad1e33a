// Package repl drives the interactive read-parse-execute loop: print the
// fixed prompt, read one line, hand it to the parser and then the shell,
// and render whatever comes back onto the diagnostic stream. It mirrors
// the teacher's top-level Run loop (readline, parse, execute, report)
// without the teacher's coloring, config file, or descriptor-leak
// monitor, none of which this shell's external contract calls for.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"sshell/internal/parser"
	"sshell/internal/shell"
	"sshell/internal/shellerr"
)

// Prompt is the shell's fixed prompt string (§6): no customization, no
// color, no trailing newline.
const Prompt = "sshell$ "

// REPL owns the input source (readline on a terminal, a bare reader
// otherwise) and the Shell that runs each parsed line.
type REPL struct {
	sh       *shell.Shell
	stdout   io.Writer
	stderr   io.Writer
	terminal *readline.Instance
	lines    *bufio.Reader
	echo     bool
}

// New builds a REPL reading from stdin and writing to stdout/stderr. When
// stdin is a terminal it drives readline (history, line editing, tab
// completion); otherwise it falls back to a plain buffered reader that
// echoes each line it reads, so a test harness piping a script through
// stdin sees the same transcript a human typing at a terminal would.
func New(sh *shell.Shell) (*REPL, error) {
	r := &REPL{sh: sh, stdout: os.Stdout, stderr: os.Stderr}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		instance, err := readline.NewEx(&readline.Config{
			Prompt:          Prompt,
			AutoComplete:    NewCompleter(),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return nil, fmt.Errorf("repl: new: failed to create terminal instance: %w", err)
		}
		r.terminal = instance
	} else {
		r.lines = bufio.NewReader(os.Stdin)
		r.echo = true
	}

	return r, nil
}

// Close releases the readline terminal, if one was created.
func (r *REPL) Close() {
	if r.terminal != nil {
		_ = r.terminal.Close()
	}
}

// Run reads and executes lines until EOF or the "exit" builtin sets
// sh.Terminated. EOF is treated exactly as if "exit" had been typed (§6).
func (r *REPL) Run() {
	for {
		r.pollBackground()

		line, err := r.readLine()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				r.runLine("exit")
				return
			}
			log.Fatalf("repl: fatal read error: %v", err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		r.runLine(line)
		if r.sh.Terminated {
			return
		}
	}
}

// readLine fetches one line from whichever input source is active.
func (r *REPL) readLine() (string, error) {
	if r.terminal != nil {
		return r.terminal.Readline()
	}

	fmt.Fprint(r.stdout, Prompt)
	line, err := r.lines.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimRight(line, "\n")
	if r.echo {
		fmt.Fprintln(r.stdout, line)
	}
	if err != nil {
		return line, nil
	}
	return line, nil
}

// runLine parses and executes a single input line, then reports whatever
// the parser or the shell produced, following §7's fatal/recoverable and
// job/no-job distinctions.
func (r *REPL) runLine(line string) {
	pipeline, err := parser.Parse(line)
	if err != nil {
		r.reportError(err)
		return
	}
	if pipeline == nil {
		return
	}

	job, err := r.sh.Execute(pipeline, os.Stdin, r.stdout, r.stderr)
	if err != nil {
		var shellErr *shellerr.Error
		if errors.As(err, &shellErr) {
			r.reportError(shellErr)
		} else {
			log.Fatalf("repl: fatal shell error: %v", err)
		}
	}

	if job == nil {
		return
	}
	if !pipeline.Background {
		fmt.Fprintln(r.stderr, shell.FormatCompletion(job))
	}
}

// pollBackground runs the non-blocking reap pass required at the top of
// every iteration (§4.4) and reports any background pipelines it found
// finished, in FIFO order.
func (r *REPL) pollBackground() {
	for _, job := range r.sh.PollBackground() {
		fmt.Fprintln(r.stderr, shell.FormatCompletion(job))
	}
}

func (r *REPL) reportError(err error) {
	fmt.Fprintln(r.stderr, err)
}
