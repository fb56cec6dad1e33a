package shell

import "syscall"

// decodeStatus extracts the exit status the completion line reports: the
// exit code held in the wait status for a normal exit (the low 8 bits of
// the value the process passed to exit), or 128+signal for a process
// killed by a signal.
func decodeStatus(ws syscall.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return 128 + int(ws.Signal())
	default:
		return int(ws) & 0xff
	}
}

func findStage(j *Job, pid int) *Stage {
	for _, st := range j.Stages {
		if st.Pid != 0 && st.Pid == pid {
			return st
		}
	}
	return nil
}

// waitForeground blocks until every stage of job is reaped. A reaped pid
// that doesn't belong to job is matched opportunistically against the
// background job table, exactly as a same-iteration poll would do.
func (s *Shell) waitForeground(job *Job) {
	for !job.Finished() {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &ws, 0, nil)
		if err == syscall.ECHILD {
			return
		}
		if err != nil || pid <= 0 {
			continue
		}
		if st := findStage(job, pid); st != nil {
			st.Exited = true
			st.Status = decodeStatus(ws)
			continue
		}
		s.reapInto(pid, ws)
	}
}

// pollBackground does a non-blocking reap pass over every outstanding
// child, then returns whichever background jobs are now fully finished,
// removing them from the table in FIFO order.
func (s *Shell) pollBackground() []*Job {
	for {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &ws, syscall.WNOHANG, nil)
		if err != nil || pid <= 0 {
			break
		}
		s.reapInto(pid, ws)
	}

	var done []*Job
	for _, j := range s.Jobs.Jobs() {
		if j.Finished() {
			done = append(done, j)
		}
	}
	for _, j := range done {
		s.Jobs.Remove(j)
	}
	return done
}

func (s *Shell) reapInto(pid int, ws syscall.WaitStatus) {
	for _, j := range s.Jobs.Jobs() {
		if st := findStage(j, pid); st != nil {
			st.Exited = true
			st.Status = decodeStatus(ws)
			return
		}
	}
}
