package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "local")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "inventory.db"))
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("SEED_ADMIN_USERNAME", "admin")
	t.Setenv("SEED_ADMIN_PASSWORD", "admin123")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNumctl_SeedImportStats(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "migrate", "up")
	require.NoError(t, err)
	require.Contains(t, out, "migrate up: done")

	out, err = run(t, "seed")
	require.NoError(t, err)
	require.Contains(t, out, "created admin admin")

	out, err = run(t, "seed")
	require.NoError(t, err)
	require.Contains(t, out, "already exists")

	csvPath := filepath.Join(dir, "numbers.csv")
	csv := "number,serviceType,status\n0711000001,LTE,Allocated\n0711000002,IPTL,\n0711000001,LTE,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o600))

	out, err = run(t, "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "Import completed: 2 successful, 1 failed")
	require.Contains(t, out, "Line 3: Number 0711000001 already exists")

	out, err = run(t, "stats")
	require.NoError(t, err)
	var got struct {
		Summary struct {
			TotalNumbers     int `json:"totalNumbers"`
			AllocatedNumbers int `json:"allocatedNumbers"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 2, got.Summary.TotalNumbers)
	require.Equal(t, 1, got.Summary.AllocatedNumbers)
}

func TestNumctl_Rejects(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "migrate", "sideways")
	require.Error(t, err)

	_, err = run(t, "migrate", "down")
	require.ErrorContains(t, err, "only supported for pgx")

	_, err = run(t, "import", "/does/not/exist.csv")
	require.Error(t, err)
}
