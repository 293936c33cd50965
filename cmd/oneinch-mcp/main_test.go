package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"chat", "http", "stdio", "validate", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %q, got %v (err %v)", name, cmd, err)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, _, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, common.GetFullVersion()) {
		t.Errorf("expected version in output, got %q", out)
	}
}

func TestValidateCmd_MissingAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ONEINCH_API_KEY", "")

	_, stderr, err := runCmd(t, "validate")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(stderr, "oneinch.api_key is required") {
		t.Errorf("expected api key issue on stderr, got %q", stderr)
	}
}

func TestValidateCmd_ExplicitConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := "[oneinch]\napi_key = \"file-key\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ONEINCH_API_KEY", "")

	out, _, err := runCmd(t, "validate", "--config", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "configuration OK") || !strings.Contains(out, path) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestValidateCmd_MissingFile(t *testing.T) {
	_, _, err := runCmd(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestChatCmd_RequiresOpenRouterKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ONEINCH_API_KEY", "test-key")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")

	_, _, err := runCmd(t, "chat")
	if err == nil || !strings.Contains(err.Error(), "openrouter") {
		t.Errorf("expected openrouter key error, got %v", err)
	}
}

type fakeServer struct {
	startErr error
	stopped  chan struct{}
	shutdown atomic.Bool
}

func (f *fakeServer) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdown.Store(true)
	close(f.stopped)
	return nil
}

func TestRunUntilDone_ShutsDownOnCancel(t *testing.T) {
	srv := &fakeServer{stopped: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- runUntilDone(ctx, common.NewSilentLogger(), srv) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runUntilDone did not return after cancel")
	}
	if !srv.shutdown.Load() {
		t.Error("expected Shutdown to be called")
	}
}

func TestRunUntilDone_StartFailure(t *testing.T) {
	boom := errors.New("address already in use")
	srv := &fakeServer{startErr: boom, stopped: make(chan struct{})}

	err := runUntilDone(context.Background(), common.NewSilentLogger(), srv)
	if !errors.Is(err, boom) {
		t.Errorf("expected start error, got %v", err)
	}
	if srv.shutdown.Load() {
		t.Error("Shutdown should not run after a failed start")
	}
}
