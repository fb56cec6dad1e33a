// Package shell launches parsed pipelines as real processes, tracks
// background jobs, reaps them, and reports completion. It consumes the
// immutable parse result from internal/parser and layers the execution-time
// state (pid, exit status) on top rather than mutating the parser's types.
package shell

import "sshell/internal/parser"

// Stage is one running or finished pipeline command: the parsed command
// plus whatever the executor learned about it once launched.
type Stage struct {
	Command *parser.Command
	Pid     int
	Exited  bool
	Status  int
}

// Job is a pipeline in flight or finished: the parsed pipeline plus one
// Stage per command, in the same order.
type Job struct {
	Pipeline *parser.Pipeline
	Stages   []*Stage
}

func newJob(p *parser.Pipeline) *Job {
	stages := make([]*Stage, len(p.Commands))
	for i, c := range p.Commands {
		stages[i] = &Stage{Command: c}
	}
	return &Job{Pipeline: p, Stages: stages}
}

// Finished reports whether every stage has a recorded exit status.
func (j *Job) Finished() bool {
	for _, st := range j.Stages {
		if !st.Exited {
			return false
		}
	}
	return true
}
