package shell

import (
	"bytes"
	"testing"
	"time"
)

func TestFormatCompletionSingleStage(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	job, err := sh.Execute(mustParse(t, "echo hello"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got, want := FormatCompletion(job), "+ completed 'echo hello' [0]"; got != want {
		t.Errorf("FormatCompletion = %q, want %q", got, want)
	}
}

func TestFormatCompletionMultiStage(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	job, err := sh.Execute(mustParse(t, "echo hi | tr h H"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got, want := FormatCompletion(job), "+ completed 'echo hi | tr h H' [0][0]"; got != want {
		t.Errorf("FormatCompletion = %q, want %q", got, want)
	}
}

// Background jobs are reported in FIFO order of insertion, independent of
// which one happens to finish its own syscall.Wait4 first.
func TestPollBackgroundReportsFIFOOrder(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	first, err := sh.Execute(mustParse(t, "sleep 0.05 &"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	second, err := sh.Execute(mustParse(t, "sleep 0.05 &"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	var finished []*Job
	for i := 0; i < 50 && len(finished) < 2; i++ {
		time.Sleep(20 * time.Millisecond)
		finished = append(finished, sh.PollBackground()...)
	}

	if len(finished) != 2 {
		t.Fatalf("expected 2 finished jobs, got %d", len(finished))
	}
	if finished[0] != first || finished[1] != second {
		t.Errorf("jobs were not reported in FIFO insertion order")
	}
}
