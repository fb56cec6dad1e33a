package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"sshell/internal/parser"
	"sshell/internal/shellerr"
)

// openRedirections validates and opens every redirection target across a
// pipeline's stages before any process is launched, matching the source
// shell's check_redirection_file pass. When a stage lists more than one
// input (or output) redirection, all are opened to confirm each is usable,
// but only the last stays open — it is the effective source/destination.
// Any failure closes everything already opened and returns the matching
// shellerr.Error; in that case the caller forks nothing.
func openRedirections(cmds []*parser.Command) (ins, outs []*os.File, err error) {
	ins = make([]*os.File, len(cmds))
	outs = make([]*os.File, len(cmds))

	closeAll := func() {
		for _, f := range ins {
			if f != nil {
				f.Close()
			}
		}
		for _, f := range outs {
			if f != nil {
				f.Close()
			}
		}
	}

	for i, cmd := range cmds {
		for _, r := range cmd.Inputs {
			f, oerr := os.Open(r.Path)
			if oerr != nil {
				closeAll()
				return nil, nil, shellerr.New(shellerr.CannotOpenInputFile)
			}
			if ins[i] != nil {
				ins[i].Close()
			}
			ins[i] = f
		}
		for _, r := range cmd.Outputs {
			f, oerr := os.OpenFile(r.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
			if oerr != nil {
				closeAll()
				return nil, nil, shellerr.New(shellerr.CannotOpenOutputFile)
			}
			if outs[i] != nil {
				outs[i].Close()
			}
			outs[i] = f
		}
	}
	return ins, outs, nil
}

// launch wires up and starts every stage of job, left to right. Stages are
// connected by real os.Pipe fds, the same approach the source pipeline
// stitched together with os.Pipe + dup2. A file-backed Stdin/Stdout makes
// os/exec hand the fd straight to the child instead of spawning its own
// copying goroutine, so once a stage's process is started the parent must
// close its own copy of that pipe's fds immediately — exactly as it
// already does for the redirection files opened by openRedirections a few
// lines below. io.Pipe would leave that close up to Cmd.Wait, which this
// shell deliberately never calls (see the reap.go note below), so an
// io.Pipe-backed chain would never deliver EOF downstream. A built-in
// appearing as one stage of a multi-stage pipeline runs synchronously in
// this process with its output wired to the stage's destination, since
// the shell does not fork a real child for it — see runBuiltin's
// terminate note for why "exit" there can't end the shell.
func (s *Shell) launch(job *Job, stdin io.Reader, stdout, stderr io.Writer) error {
	cmds := job.Pipeline.Commands
	n := len(cmds)

	ins, outs, err := openRedirections(cmds)
	if err != nil {
		return err
	}

	var prevRead *os.File
	for i, cmd := range cmds {
		var stageStdin io.Reader = stdin
		switch {
		case ins[i] != nil:
			stageStdin = ins[i]
		case prevRead != nil:
			stageStdin = prevRead
		}

		var stageStdout io.Writer = stdout
		var nextRead, nextWrite *os.File
		switch {
		case outs[i] != nil:
			stageStdout = outs[i]
		case i < n-1:
			nextRead, nextWrite, err = os.Pipe()
			if err != nil {
				if ins[i] != nil {
					ins[i].Close()
				}
				if outs[i] != nil {
					outs[i].Close()
				}
				if prevRead != nil {
					prevRead.Close()
				}
				return err
			}
			stageStdout = nextWrite
		}

		stage := job.Stages[i]
		if isBuiltin(cmd.Argv[0]) {
			status, _, berr := s.runBuiltin(cmd.Argv, stageStdout, stderr)
			stage.Exited = true
			stage.Status = status
			if berr != nil {
				fmt.Fprintln(stderr, berr)
			}
		} else {
			// Started, never Waited: reap.go owns reaping every child by
			// pid through syscall.Wait4, foreground and background alike,
			// so Cmd.Wait must never also race it for the same pid.
			execCmd := exec.Command(cmd.Argv[0], cmd.Argv[1:]...)
			execCmd.Stdin = stageStdin
			execCmd.Stdout = stageStdout
			execCmd.Stderr = stderr

			if startErr := execCmd.Start(); startErr != nil {
				if errors.Is(startErr, exec.ErrNotFound) || os.IsNotExist(startErr) {
					stage.Exited = true
					stage.Status = 1
					fmt.Fprintln(stderr, shellerr.New(shellerr.CommandNotFound))
				} else {
					if ins[i] != nil {
						ins[i].Close()
					}
					if outs[i] != nil {
						outs[i].Close()
					}
					if prevRead != nil {
						prevRead.Close()
					}
					if nextWrite != nil {
						nextWrite.Close()
					}
					return startErr
				}
			} else {
				stage.Pid = execCmd.Process.Pid
				s.Session.Debugf("launched stage %q pid=%d", cmd.Argv[0], stage.Pid)
			}
		}

		// The parent's own copy of every fd handed to this stage must
		// close now: the child (if any) already holds its own duplicate
		// from the fork, and a built-in has already finished using it
		// synchronously. Without this, the next stage's read end never
		// observes EOF once this stage's process exits.
		if ins[i] != nil {
			ins[i].Close()
		}
		if outs[i] != nil {
			outs[i].Close()
		}
		if prevRead != nil {
			prevRead.Close()
		}
		if nextWrite != nil {
			nextWrite.Close()
		}
		prevRead = nextRead
	}

	return nil
}
