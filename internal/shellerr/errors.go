// Package shellerr defines the fixed taxonomy of errors the shell can
// report to its diagnostic stream. Every user-visible failure (parser
// rejection, builtin failure, failed exec) is one of these kinds so the
// REPL driver can render all of them through a single formatter.
package shellerr

import "fmt"

// Kind identifies one of the error conditions named in the shell's
// external contract. Kinds are compared by value in tests instead of by
// matching rendered message text.
type Kind int

const (
	_ Kind = iota
	InvalidCommandLine
	CommandNotFound
	NoSuchDirectory
	CannotOpenInputFile
	CannotOpenOutputFile
	NoInputFile
	NoOutputFile
	MislocatedInput
	MislocatedOutput
	MislocatedBackground
	ActiveJobsRunning
)

var messages = map[Kind]string{
	InvalidCommandLine:   "invalid command line",
	CommandNotFound:      "command not found",
	NoSuchDirectory:      "no such directory",
	CannotOpenInputFile:  "cannot open input file",
	CannotOpenOutputFile: "cannot open output file",
	NoInputFile:          "no input file",
	NoOutputFile:         "no output file",
	MislocatedInput:      "mislocated input redirection",
	MislocatedOutput:     "mislocated output redirection",
	MislocatedBackground: "mislocated background sign",
	ActiveJobsRunning:    "active jobs still running",
}

// Error is a shell-level failure with a fixed, known kind. Its Error()
// method renders the exact "Error: <message>" line the REPL writes to the
// diagnostic stream.
type Error struct {
	Kind Kind
}

func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

func (e *Error) Message() string {
	msg, ok := messages[e.Kind]
	if !ok {
		return "unknown error"
	}
	return msg
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error: %s", e.Message())
}

// Is allows errors.Is(err, shellerr.New(Kind)) comparisons by kind alone.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}
