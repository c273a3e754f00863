//go:build basic || database || integration

package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedPrlensPath holds the path to a shared prlens binary built once for all tests.
	sharedPrlensPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getPrlensBinary returns the path to the prlens binary, building it once if needed.
func getPrlensBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "prlens-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		prlensPath := filepath.Join(tempDir, "prlens")
		buildCmd := exec.Command("go", "build", "-o", prlensPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build prlens: %v", err))
		}

		sharedPrlensPath = prlensPath
	})

	return sharedPrlensPath
}

// runPrlensCommand runs the shared binary with the given arguments from the
// project root, logging combined output on failure.
func runPrlensCommand(t *testing.T, args ...string) error {
	t.Helper()
	prlensPath := getPrlensBinary()
	cmd := exec.Command(prlensPath, args...)
	cmd.Dir = "../"
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}

// writeStaleFixture writes a stale-PR snapshot with n pull requests into dir
// and returns its path. Inactivity grows with the PR number so clustering and
// risk scoring have a real spread to work with.
func writeStaleFixture(t *testing.T, dir string, n int) string {
	t.Helper()

	prs := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		category := "active_discussion"
		if i%3 == 0 {
			category = "abandoned"
		}
		prs = append(prs, map[string]any{
			"number":          i,
			"title":           fmt.Sprintf("Fix issue %d", i),
			"state":           "open",
			"created_at":      "2026-07-01T10:30:00Z",
			"repository_name": fmt.Sprintf("svc-%d", i%2),
			"user":            map[string]any{"login": fmt.Sprintf("dev%d", i%3)},
			"inactivity_duration": map[string]any{
				"days":        float64(i * 4),
				"total_hours": float64(i * 4 * 24),
			},
			"inactivity_analysis": map[string]any{
				"category": category,
				"priority": "medium",
			},
			"details": map[string]any{
				"review_count":   i % 4,
				"comment_count":  i % 5,
				"commit_count":   1 + i%3,
				"failing_checks": i % 2,
				"total_checks":   4,
			},
			"draft":         false,
			"additions":     i * 30,
			"deletions":     i * 10,
			"changed_files": 1 + i%6,
		})
	}
	snapshot := map[string]any{
		"detailed_analysis": map[string]any{"pull_requests": prs},
	}

	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	path := filepath.Join(dir, "stale_snapshot.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
