package repl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Completer implements readline.AutoCompleter for sshell: the first word
// of a line completes against builtins and executables found on PATH, any
// later word completes against filenames in the current directory. It is
// adapted from the teacher's tab-completion handler with the background
// indexing goroutines and frequency cache dropped: PATH is scanned once,
// synchronously, when the completer is built (executables added to PATH
// later are not offered), while the current directory is read afresh on
// each Tab press.
type Completer struct {
	names []string
}

// NewCompleter builds a completer from the shell's three builtins plus
// every executable file found on the current PATH.
func NewCompleter() *Completer {
	set := map[string]bool{"exit": true, "cd": true, "pwd": true}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
				continue
			}
			set[entry.Name()] = true
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Completer{names: names}
}

// Do implements readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	prefix := string(line[:pos])
	parts := strings.Fields(prefix)

	atCommand := len(parts) == 0 || (len(parts) == 1 && !strings.HasSuffix(prefix, " "))
	if atCommand {
		var word string
		if len(parts) == 1 {
			word = parts[0]
		}
		return c.completeCommand(word)
	}

	word := parts[len(parts)-1]
	if strings.HasSuffix(prefix, " ") {
		word = ""
	}
	return completeFilename(word)
}

func (c *Completer) completeCommand(prefix string) ([][]rune, int) {
	var out [][]rune
	for _, name := range c.names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, []rune(name[len(prefix):]))
		}
	}
	return out, len(prefix)
}

func completeFilename(word string) ([][]rune, int) {
	dir, base := filepath.Split(word)
	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}

	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil, len(base)
	}

	var out [][]rune
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		suffix := name[len(base):]
		if entry.IsDir() {
			suffix += "/"
		}
		out = append(out, []rune(suffix))
	}
	return out, len(base)
}
