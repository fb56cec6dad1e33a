// Command sshell is the entrypoint for the interactive shell.
package main

import (
	"log"

	"sshell/internal/repl"
	"sshell/internal/shell"
)

func main() {
	log.SetFlags(0)

	sh := shell.New()

	r, err := repl.New(sh)
	if err != nil {
		log.Fatalf("sshell: %v", err)
	}
	defer r.Close()

	r.Run()
}
