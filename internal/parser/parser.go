// Package parser tokenizes and validates a single sshell input line into
// a Pipeline value. It implements the grammar from the shell's design:
//
//	line      := pipeline [ '&' ] [ spaces ]
//	pipeline  := stage ( '|' stage )*
//	stage     := ( token | redir )+
//	redir     := ('<' | '>') spaces? token
//	token     := any run of characters not in { ' ', '|', '<', '>', '&' }
//
// Within a stage, words and redirections may come in any order, so
// "> out.txt ls" parses like "ls > out.txt"; a stage must still carry at
// least one word outside its redirections.
//
// Tokenizing is done with a participle lexer (the same declarative-table
// idiom the source shell uses for its own grammar); validation and
// redirection-placement rules are then applied by hand over the resulting
// token stream, since those rules are positional rather than purely
// syntactic and don't map cleanly onto a single declarative grammar.
package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"sshell/internal/shellerr"
)

// MaxLineLength is the longest input line the parser accepts.
const MaxLineLength = 512

// MaxArgs is the largest number of argv tokens (including argv[0]) a
// single stage may carry.
const MaxArgs = 16

// MaxStages bounds the number of pipe-connected stages in one pipeline.
const MaxStages = 128

var shellLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ ]+`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Lt", Pattern: `<`},
	{Name: "Gt", Pattern: `>`},
	{Name: "Amp", Pattern: `&`},
	{Name: "Word", Pattern: `[^ |<>&]+`},
})

// RedirKind distinguishes an input redirection from an output redirection.
type RedirKind int

const (
	RedirInput RedirKind = iota
	RedirOutput
)

// Redirection is a single '<' or '>' clause attached to a stage.
type Redirection struct {
	Kind RedirKind
	Path string
}

// Command is one pipeline stage: a program name, its arguments, and any
// redirections that apply to it.
type Command struct {
	Argv    []string
	Inputs  []Redirection
	Outputs []Redirection
}

// State tracks whether a Pipeline's stages have all been reaped.
type State int

const (
	StateRunning State = iota
	StateFinished
)

// Pipeline is the parsed form of one input line: an ordered, non-empty
// sequence of commands connected by pipes, plus the background marker and
// the verbatim source text used in completion reporting.
type Pipeline struct {
	Commands   []*Command
	Raw        string
	Background bool
	State      State
}

// Parse tokenizes and validates line, returning a Pipeline or one of the
// shellerr.Error kinds from §7 of the shell's design. An empty (or
// whitespace-only) line yields (nil, nil): a no-op iteration for the REPL.
func Parse(line string) (*Pipeline, error) {
	raw := line
	trimmed := strings.TrimRight(line, " ")
	if strings.TrimSpace(trimmed) == "" {
		return nil, nil
	}
	if len(line) > MaxLineLength {
		return nil, shellerr.New(shellerr.InvalidCommandLine)
	}

	toks, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}

	background := false
	if len(toks) > 0 && toks[len(toks)-1].kind == tokAmp {
		background = true
		toks = toks[:len(toks)-1]
	}

	// Any remaining '&' is either a duplicate background marker or one
	// that doesn't sit at the tail of the line: both are mislocated.
	for _, t := range toks {
		if t.kind == tokAmp {
			return nil, shellerr.New(shellerr.MislocatedBackground)
		}
	}

	stageToks := splitOn(toks, tokPipe)
	if len(stageToks) == 0 {
		return nil, shellerr.New(shellerr.InvalidCommandLine)
	}
	if len(stageToks) > MaxStages {
		return nil, shellerr.New(shellerr.InvalidCommandLine)
	}

	commands := make([]*Command, 0, len(stageToks))
	for i, stage := range stageToks {
		cmd, err := parseStage(stage, i == 0, i == len(stageToks)-1)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}

	return &Pipeline{
		Commands:   commands,
		Raw:        raw,
		Background: background,
		State:      StateRunning,
	}, nil
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokPipe
	tokLt
	tokGt
	tokAmp
)

type token struct {
	kind  tokenKind
	value string
}

func tokenize(line string) ([]token, error) {
	lex, err := shellLexer.Lex("", strings.NewReader(line))
	if err != nil {
		return nil, shellerr.New(shellerr.InvalidCommandLine)
	}

	var toks []token
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, shellerr.New(shellerr.InvalidCommandLine)
		}
		if t.EOF() {
			break
		}
		switch tokenName(t.Type) {
		case "Whitespace":
			continue
		case "Pipe":
			toks = append(toks, token{kind: tokPipe, value: t.Value})
		case "Lt":
			toks = append(toks, token{kind: tokLt, value: t.Value})
		case "Gt":
			toks = append(toks, token{kind: tokGt, value: t.Value})
		case "Amp":
			toks = append(toks, token{kind: tokAmp, value: t.Value})
		case "Word":
			toks = append(toks, token{kind: tokWord, value: t.Value})
		default:
			return nil, shellerr.New(shellerr.InvalidCommandLine)
		}
	}
	return toks, nil
}

// symbols maps a lexer.TokenType back to the rule name that produced it.
var symbols map[lexer.TokenType]string

func init() {
	symbols = make(map[lexer.TokenType]string)
	for name, tt := range shellLexer.Symbols() {
		symbols[tt] = name
	}
}

func tokenName(tt lexer.TokenType) string {
	return symbols[tt]
}

func splitOn(toks []token, kind tokenKind) [][]token {
	var groups [][]token
	var cur []token
	for _, t := range toks {
		if t.kind == kind {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)
	return groups
}

// parseStage scans a stage's tokens left to right. A word is an argument
// wherever it falls, before or after a redirection; '<'/'>' each claim the
// word immediately following as their target. Position rules (input only on
// the first stage, output only on the last) are checked once the whole
// stage has been scanned, and a stage that collects redirections but no
// argv at all is reported by which redirection it carried, rather than as a
// generic empty stage.
func parseStage(toks []token, isFirst, isLast bool) (*Command, error) {
	var argv []string
	var inputs, outputs []Redirection

	for i := 0; i < len(toks); {
		switch toks[i].kind {
		case tokWord:
			argv = append(argv, toks[i].value)
			i++
		case tokLt:
			if i+1 >= len(toks) || toks[i+1].kind != tokWord {
				return nil, shellerr.New(shellerr.NoInputFile)
			}
			inputs = append(inputs, Redirection{Kind: RedirInput, Path: toks[i+1].value})
			i += 2
		case tokGt:
			if i+1 >= len(toks) || toks[i+1].kind != tokWord {
				return nil, shellerr.New(shellerr.NoOutputFile)
			}
			outputs = append(outputs, Redirection{Kind: RedirOutput, Path: toks[i+1].value})
			i += 2
		default:
			return nil, shellerr.New(shellerr.InvalidCommandLine)
		}
	}

	if len(inputs) > 0 && !isFirst {
		return nil, shellerr.New(shellerr.MislocatedInput)
	}
	if len(outputs) > 0 && !isLast {
		return nil, shellerr.New(shellerr.MislocatedOutput)
	}

	if len(argv) == 0 {
		switch {
		case len(outputs) > 0:
			return nil, shellerr.New(shellerr.NoOutputFile)
		case len(inputs) > 0:
			return nil, shellerr.New(shellerr.NoInputFile)
		default:
			return nil, shellerr.New(shellerr.InvalidCommandLine)
		}
	}
	if len(argv) > MaxArgs {
		return nil, shellerr.New(shellerr.InvalidCommandLine)
	}

	return &Command{Argv: argv, Inputs: inputs, Outputs: outputs}, nil
}

// Format reconstructs the canonical textual form of a pipeline: argvs
// joined by '|' with a trailing '&' when backgrounded. It is used by
// tests asserting the parser's round-trip property; the REPL itself
// always reports Pipeline.Raw verbatim.
func (p *Pipeline) Format() string {
	var b strings.Builder
	for i, cmd := range p.Commands {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(strings.Join(cmd.Argv, " "))
	}
	if p.Background {
		b.WriteString(" &")
	}
	return b.String()
}
