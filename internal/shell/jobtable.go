package shell

// JobTable is the FIFO-ordered set of running background jobs. The shell
// runs single-threaded and touches the table only from its own REPL loop
// and the reaping it drives, so no locking is needed here.
type JobTable struct {
	order []*Job
}

func NewJobTable() *JobTable {
	return &JobTable{}
}

func (t *JobTable) Add(j *Job) {
	t.order = append(t.order, j)
}

func (t *JobTable) Len() int {
	return len(t.order)
}

// Remove drops j from the table; a no-op if j isn't present.
func (t *JobTable) Remove(j *Job) {
	for i, cur := range t.order {
		if cur == j {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// Jobs returns the jobs currently in the table, in FIFO insertion order.
func (t *JobTable) Jobs() []*Job {
	return t.order
}
