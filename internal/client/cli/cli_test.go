package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/client/iocli"
)

func TestReadPassphrase(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "passphrase")
	require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))

	prompt := func(value string, err error) *iocli.IOMock {
		return &iocli.IOMock{
			ReadPasswordFunc: func(string) (string, error) { return value, err },
		}
	}

	tests := []struct {
		name    string
		env     string
		file    string
		io      *iocli.IOMock
		want    string
		wantErr bool
	}{
		{name: "environment wins", env: "from-env", file: file, io: prompt("ignored", nil), want: "from-env"},
		{name: "file", file: file, io: prompt("ignored", nil), want: "from-file"},
		{name: "empty file", file: empty, io: prompt("ignored", nil), wantErr: true},
		{name: "missing file", file: filepath.Join(dir, "absent"), io: prompt("ignored", nil), wantErr: true},
		{name: "prompt", io: prompt("typed", nil), want: "typed"},
		{name: "empty prompt", io: prompt("", nil), wantErr: true},
		{name: "prompt error", io: prompt("", errors.New("closed")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPassphrase, tt.env)

			got, err := ReadPassphrase(tt.io, tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
