package shell

import (
	"io"

	"sshell/internal/parser"
)

// Shell is the long-lived state of one shell invocation: its table of
// running background jobs, its debug-tracing session, and whether the
// "exit" built-in has asked the REPL to stop. Everything else (the
// current working directory, open descriptors) lives in the operating
// system process the shell itself is.
type Shell struct {
	Jobs       *JobTable
	Session    *Session
	Terminated bool
}

func New() *Shell {
	return &Shell{
		Jobs:    NewJobTable(),
		Session: NewSession(),
	}
}

// Execute launches p. A foreground pipeline blocks until every stage has
// been reaped; a background pipeline returns as soon as every stage has
// started, already registered in the job table.
//
// A non-nil job with a non-nil error means the pipeline was launched (or
// its sole built-in ran) but failed partway — the caller should print the
// error and still emit a completion line. A nil job means nothing was
// forked at all (a pre-fork redirection failure): the caller prints only
// the error. An error that is not a *shellerr.Error is fatal to the shell
// itself (an internal launch failure), per the source's fork/pipe
// failure contract; the caller should terminate rather than loop.
func (s *Shell) Execute(p *parser.Pipeline, stdin io.Reader, stdout, stderr io.Writer) (*Job, error) {
	job := newJob(p)

	if len(job.Stages) == 1 && isBuiltin(job.Stages[0].Command.Argv[0]) {
		job, err := s.executeSoleBuiltin(job, stdout, stderr)
		if p.Background {
			s.Jobs.Add(job)
		}
		return job, err
	}

	if err := s.launch(job, stdin, stdout, stderr); err != nil {
		return nil, err
	}

	if p.Background {
		s.Jobs.Add(job)
		return job, nil
	}

	s.waitForeground(job)
	p.State = parser.StateFinished
	return job, nil
}

// executeSoleBuiltin runs a pipeline whose only stage is a built-in
// directly in the shell's own process, with no fork at all — this is what
// lets "cd" and "exit" affect the shell rather than a throwaway child.
func (s *Shell) executeSoleBuiltin(job *Job, stdout, stderr io.Writer) (*Job, error) {
	stage := job.Stages[0]
	status, terminate, err := s.runBuiltin(stage.Command.Argv, stdout, stderr)
	stage.Exited = true
	stage.Status = status
	job.Pipeline.State = parser.StateFinished
	if terminate {
		s.Terminated = true
	}
	return job, err
}

// PollBackground performs the non-blocking reap pass the REPL runs at the
// top of every iteration, returning newly finished background jobs in
// FIFO order.
func (s *Shell) PollBackground() []*Job {
	return s.pollBackground()
}
