package shell

import (
	"fmt"
	"io"
	"os"

	"sshell/internal/shellerr"
)

var builtinNames = map[string]bool{
	"exit": true,
	"cd":   true,
	"pwd":  true,
}

func isBuiltin(name string) bool {
	return builtinNames[name]
}

// runBuiltin evaluates a built-in's argv. diag receives the lines the
// shell itself writes to its diagnostic stream ("Bye..."); stdout receives
// whatever the built-in prints as program output (pwd's directory line).
// terminate is only meaningful for "exit", and only when the built-in runs
// as the sole stage of its pipeline — a caller running it as one stage of
// a larger pipeline must ignore it, since that "exit" should end only the
// pipeline stage, not the shell (see runBuiltin callers).
func (s *Shell) runBuiltin(argv []string, stdout, diag io.Writer) (status int, terminate bool, err error) {
	switch argv[0] {
	case "exit":
		return s.builtinExit(diag)
	case "cd":
		return s.builtinCd(argv)
	case "pwd":
		return s.builtinPwd(stdout)
	default:
		panic("runBuiltin: not a builtin: " + argv[0])
	}
}

func (s *Shell) builtinExit(diag io.Writer) (int, bool, error) {
	if s.Jobs.Len() > 0 {
		return 1, false, shellerr.New(shellerr.ActiveJobsRunning)
	}
	fmt.Fprintln(diag, "Bye...")
	return 0, true, nil
}

// builtinCd requires exactly one argument, matching the source shell's
// num_args check; it does not default to $HOME when none is given.
func (s *Shell) builtinCd(argv []string) (int, bool, error) {
	if len(argv) != 2 {
		return 1, false, shellerr.New(shellerr.NoSuchDirectory)
	}
	if err := os.Chdir(argv[1]); err != nil {
		return 1, false, shellerr.New(shellerr.NoSuchDirectory)
	}
	return 0, false, nil
}

func (s *Shell) builtinPwd(stdout io.Writer) (int, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return 1, false, nil
	}
	fmt.Fprintln(stdout, cwd)
	return 0, false, nil
}
