package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow"
	"github.com/aretw0/planflow/pkg/adapters/file"
	"github.com/aretw0/planflow/pkg/domain"
)

const flowsDir = "../../pkg/adapters/file/testdata"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "planflow version "+planflow.Version+"\n", out)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "householder", "--dir", flowsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "householder: valid")

	dir := t.TempDir()
	broken := `
nodes:
  _root:
    edges: [q]
  q:
    type: question
    data:
      fn: x
    edges: [ghost]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(broken), 0o644))

	out, err = execute(t, "validate", "--dir", dir)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "broken: invalid")
	assert.Contains(t, out, "ghost")
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "graph", "householder", "--dir", flowsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "use")
	assert.NotContains(t, out, "classDef")
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--store", "file", "--sessions-dir", dir}

	out, err := execute(t, append([]string{"session", "ls"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "No active sessions found.")

	snap := domain.NewSnapshot("s1")
	snap.Flow = "householder"
	snap.UpdatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	snap.Breadcrumbs.Set("email", domain.Breadcrumb{Data: map[string]any{"applicant.email": "ada@example.com"}})
	require.NoError(t, file.NewStore(dir).Save(context.Background(), "s1", snap))

	out, err = execute(t, append([]string{"session", "ls"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "householder")
	assert.Contains(t, out, "2026-01-02T03:04:05Z")

	out, err = execute(t, append([]string{"session", "inspect", "s1", "--redact"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"applicant.email": "***"`)
	assert.NotContains(t, out, "ada@example.com")

	out, err = execute(t, append([]string{"session", "rm", "--all"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 's1'")

	_, err = execute(t, append([]string{"session", "inspect", "s1"}, base...)...)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUnknownStore(t *testing.T) {
	_, err := execute(t, "session", "ls", "--store", "etcd")
	assert.ErrorContains(t, err, `unknown session store "etcd"`)
}
