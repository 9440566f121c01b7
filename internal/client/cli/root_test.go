package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/config"
)

var testVersion = VersionInfo{Version: "1.2.3", BuildDate: "2025-03-10", GitCommit: "abc123"}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &output{}
	var stderr bytes.Buffer
	root := NewRootCommand(testVersion, out.mock(), &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Version(t *testing.T) {
	got, err := executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "CareKeeper Client\nVersion:    1.2.3\nBuild Date: 2025-03-10\nGit Commit: abc123\n", got)
}

func TestRootCommand_Hotline(t *testing.T) {
	// не требует пароля и хранилища
	t.Setenv(EnvPassphrase, "")

	got, err := executeRoot(t, "hotline")
	require.NoError(t, err)
	assert.Contains(t, got, "988 Suicide & Crisis Lifeline")
}

func TestRootCommand_SubmitBadPriority(t *testing.T) {
	_, err := executeRoot(t, "submit", "--priority", "urgent", "entity.json")
	assert.Error(t, err)
}

func TestRootCommand_PullRejectsUnknownType(t *testing.T) {
	_, err := executeRoot(t, "pull", "journal")
	assert.Error(t, err)
}

func TestRootCommand_CrisisFallsBackWithoutIdentity(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPassphrase, "correct horse battery staple")
	t.Setenv(config.EnvPrefix+"_SYNC_USER_ID", "")
	t.Setenv(config.EnvPrefix+"_SYNC_DEVICE_ID", "")

	got, err := executeRoot(t,
		"crisis",
		"--db", filepath.Join(dir, "client.db"),
		"--log-file", filepath.Join(dir, "client.log"),
	)
	require.Error(t, err)
	assert.Contains(t, got, "988 Suicide & Crisis Lifeline")
	assert.Contains(t, got, "emergencyContacts")
}

func TestRootCommand_Status(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPassphrase, "correct horse battery staple")
	t.Setenv(config.EnvPrefix+"_SYNC_USER_ID", "user-1")
	t.Setenv(config.EnvPrefix+"_SYNC_DEVICE_ID", "device-a")

	args := []string{
		"status",
		"--db", filepath.Join(dir, "client.db"),
		"--log-file", filepath.Join(dir, "client.log"),
		"--server", "http://127.0.0.1:1",
	}

	got, err := executeRoot(t, args...)
	require.NoError(t, err)
	assert.Contains(t, got, "Queued operations: 0 (in flight: 0)")
	assert.Contains(t, got, "✓ No dead letters")

	// повторное открытие с тем же паролем
	got, err = executeRoot(t, args...)
	require.NoError(t, err)
	assert.Contains(t, got, "=== Sync Status ===")
}
