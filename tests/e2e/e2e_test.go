package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	rootDir, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("Failed to resolve repo root: %v", err)
	}

	binPath := filepath.Join(t.TempDir(), "engram_e2e")
	buildCmd := exec.Command("go", "build", "-o", binPath, "github.com/felixgeelhaar/engram/cmd/engram")
	buildCmd.Dir = rootDir
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build engram: %v\n%s", err, out)
	}
	return binPath
}

func runBin(t *testing.T, bin, home string, args ...string) string {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), "ENGRAM_HOME="+home)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("engram %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

func TestE2E_MemoryLifecycle(t *testing.T) {
	bin := buildBinary(t)
	home := t.TempDir()

	runBin(t, bin, home, "remember", "paris is the capital of france")
	runBin(t, bin, home, "remember", "-i", "0.9", "the deploy key rotates monthly")

	out := runBin(t, bin, home, "recall", "capital of france")
	if !strings.Contains(out, "paris is the capital of france") {
		t.Errorf("Recall missed the stored memory:\n%s", out)
	}

	out = runBin(t, bin, home, "status")
	if !strings.Contains(out, "memory") || !strings.Contains(out, "mood") {
		t.Errorf("Status output incomplete:\n%s", out)
	}

	if out = runBin(t, bin, home, "goal", "add", "finish the rollout"); !strings.Contains(out, "goal 1 added") {
		t.Errorf("Unexpected goal add output:\n%s", out)
	}
	if out = runBin(t, bin, home, "goal", "progress", "1", "1"); !strings.Contains(out, "goal 1 completed") {
		t.Errorf("Unexpected goal progress output:\n%s", out)
	}

	if out = runBin(t, bin, home, "decay"); !strings.Contains(out, "decay pass complete") {
		t.Errorf("Unexpected decay output:\n%s", out)
	}

	if out = runBin(t, bin, home, "export"); !strings.Contains(out, "exported snap-") {
		t.Errorf("Unexpected export output:\n%s", out)
	}
	if out = runBin(t, bin, home, "snapshots"); !strings.Contains(out, "snap-") {
		t.Errorf("Snapshot listing empty:\n%s", out)
	}

	// State must survive on disk between invocations.
	if _, err := os.Stat(filepath.Join(home, "engram.db")); os.IsNotExist(err) {
		t.Error("engram.db not created")
	}
	if _, err := os.Stat(filepath.Join(home, "snapshots")); os.IsNotExist(err) {
		t.Error("snapshots dir not created")
	}
}

func TestE2E_SeedImport(t *testing.T) {
	bin := buildBinary(t)
	home := t.TempDir()

	seedPath := filepath.Join(t.TempDir(), "seed.yaml")
	seedContent := `
memories:
  - content: "gophers tunnel below the runway"
    importance: 0.7
  - content: "the standup moved to nine thirty"
goals:
  - "migrate the seed corpus"
`
	if err := os.WriteFile(seedPath, []byte(seedContent), 0600); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}

	out := runBin(t, bin, home, "seed", "--check", seedPath)
	if !strings.Contains(out, "ok: 2 memories, 1 goals") {
		t.Errorf("Unexpected check output:\n%s", out)
	}

	out = runBin(t, bin, home, "seed", seedPath)
	if !strings.Contains(out, "seeded 2 memories, 1 goals") {
		t.Errorf("Unexpected seed output:\n%s", out)
	}

	out = runBin(t, bin, home, "recall", "standup moved")
	if !strings.Contains(out, "nine thirty") {
		t.Errorf("Seeded memory not recallable:\n%s", out)
	}
}

func TestE2E_ConfigSurvivesRestart(t *testing.T) {
	bin := buildBinary(t)
	home := t.TempDir()

	out := runBin(t, bin, home, "config", "set", "memory.capacity", "5")
	if !strings.Contains(out, "Configuration saved") {
		t.Errorf("Unexpected config set output:\n%s", out)
	}

	// Capacity 5 means the sixth remember must evict the weakest entry.
	for i := 0; i < 5; i++ {
		runBin(t, bin, home, "remember", "filler", "memory", fmt.Sprintf("number %d", i))
	}
	runBin(t, bin, home, "remember", "-i", "0.95", "the one that matters")

	out = runBin(t, bin, home, "status")
	if !strings.Contains(out, "5/5") {
		t.Errorf("Capacity not enforced across restarts:\n%s", out)
	}
}
