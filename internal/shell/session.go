package shell

import (
	"log"
	"os"

	"github.com/google/uuid"
)

// Session correlates one shell invocation's debug tracing with a UUID.
// Debugf is silent unless SSHELL_DEBUG is set in the environment.
type Session struct {
	ID      string
	verbose bool
}

func NewSession() *Session {
	_, verbose := os.LookupEnv("SSHELL_DEBUG")
	return &Session{
		ID:      uuid.New().String(),
		verbose: verbose,
	}
}

func (s *Session) Debugf(format string, args ...interface{}) {
	if !s.verbose {
		return
	}
	log.Printf("[%s] "+format, append([]interface{}{s.ID}, args...)...)
}
