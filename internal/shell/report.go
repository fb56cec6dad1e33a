package shell

import (
	"strconv"
	"strings"
)

// FormatCompletion renders the "+ completed '<raw>' [s0][s1]..." line for
// a finished job.
func FormatCompletion(job *Job) string {
	var b strings.Builder
	b.WriteString("+ completed '")
	b.WriteString(job.Pipeline.Raw)
	b.WriteString("' ")
	for _, stage := range job.Stages {
		b.WriteString("[")
		b.WriteString(strconv.Itoa(stage.Status))
		b.WriteString("]")
	}
	return b.String()
}
