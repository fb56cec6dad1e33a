package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sshell/internal/parser"
)

func mustParse(t *testing.T, line string) *parser.Pipeline {
	t.Helper()
	p, err := parser.Parse(line)
	if err != nil {
		t.Fatalf("parser.Parse(%q) returned error: %v", line, err)
	}
	if p == nil {
		t.Fatalf("parser.Parse(%q) returned nil pipeline", line)
	}
	return p
}

func TestExecuteSingleCommand(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	job, err := sh.Execute(mustParse(t, "echo hello"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got := stdout.String(); got != "hello\n" {
		t.Errorf("stdout = %q, want %q", got, "hello\n")
	}
	if len(job.Stages) != 1 || job.Stages[0].Status != 0 {
		t.Errorf("unexpected stage result: %+v", job.Stages[0])
	}
}

func TestExecutePipeline(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	job, err := sh.Execute(mustParse(t, "echo hi | tr h H"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got := stdout.String(); got != "Hi\n" {
		t.Errorf("stdout = %q, want %q", got, "Hi\n")
	}
	if len(job.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(job.Stages))
	}
	for _, st := range job.Stages {
		if st.Status != 0 {
			t.Errorf("stage %q exited %d, want 0", st.Command.Argv[0], st.Status)
		}
	}
}

func TestExecuteCommandNotFound(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	job, err := sh.Execute(mustParse(t, "notacommand"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if job.Stages[0].Status != 1 {
		t.Errorf("status = %d, want 1", job.Stages[0].Status)
	}
	if got := stderr.String(); got == "" {
		t.Errorf("expected a command-not-found line on stderr, got empty")
	}
}

func TestExecuteOutputRedirection(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	sh := New()
	var stdout, stderr bytes.Buffer

	_, err := sh.Execute(mustParse(t, "echo hi > "+out), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	got, rerr := os.ReadFile(out)
	if rerr != nil {
		t.Fatalf("ReadFile: %v", rerr)
	}
	if string(got) != "hi\n" {
		t.Errorf("file contents = %q, want %q", got, "hi\n")
	}
}

func TestExecuteInputRedirection(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(in, []byte("line one\nline two\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sh := New()
	var stdout, stderr bytes.Buffer

	_, err := sh.Execute(mustParse(t, "cat < "+in), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got := stdout.String(); got != "line one\nline two\n" {
		t.Errorf("stdout = %q, want %q", got, "line one\nline two\n")
	}
}

func TestExecuteMissingInputFile(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	job, err := sh.Execute(mustParse(t, "cat < /no/such/file/here"), nil, &stdout, &stderr)
	if job != nil {
		t.Errorf("expected nil job on pre-fork redirection failure, got %+v", job)
	}
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
}

func TestExecuteBackgroundJobIsTracked(t *testing.T) {
	sh := New()
	var stdout, stderr bytes.Buffer

	job, err := sh.Execute(mustParse(t, "sleep 0.1 &"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if sh.Jobs.Len() != 1 {
		t.Fatalf("expected 1 background job registered, got %d", sh.Jobs.Len())
	}

	for i := 0; i < 50 && sh.Jobs.Len() > 0; i++ {
		time.Sleep(20 * time.Millisecond)
		sh.PollBackground()
	}
	if sh.Jobs.Len() != 0 {
		t.Errorf("background job was never reaped")
	}
	if !job.Finished() {
		t.Errorf("job should be finished after polling drained it")
	}
}
