package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// cleanEnv clears the variables that would make commands reach for real
// services.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "AMQP_URL", "REDIS_URL", "STORAGE_BUCKET",
		"REQUIREMENTS_FILE", "REQUIRED_SKILLS", "JWT_SECRET", "JWT_EXPIRATION_HOURS",
		"LOG_FORMAT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

// resetFlags restores flag globals between in-process runs of rootCmd.
func resetFlags() {
	configPath, logLevel, logFormat = "", "", ""
	analyzeSkills, analyzeRequirements = "", ""
	analyzeJSON, analyzeSample = false, false
	analyzeConcurrency = 4
	migrateList = false
	tokenSubject, tokenRole = "", "client"
	workerConcurrency = 4
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
