package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/evaluaciones/internal/models"
	"github.com/shrimpsizemoose/evaluaciones/internal/pin"
)

func setEnv(t *testing.T, dsn string) {
	t.Setenv("PORT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PIN_PEPPER", "")
	t.Setenv("DATABASE_DSN", dsn)
	t.Setenv("SESSION_SECRET", "test-secret-0123456789")
	t.Setenv("ACCESS_CODE_DOCENTE", "docente-2024")
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDigest(t *testing.T) {
	setEnv(t, ":memory:")

	out, err := run(t, "digest", " 4837 ")
	require.NoError(t, err)
	assert.Equal(t, pin.NewHasher("").Digest("4837"), strings.TrimSpace(out))

	t.Setenv("PIN_PEPPER", "pimienta")
	out, err = run(t, "digest", "4837")
	require.NoError(t, err)
	assert.Equal(t, pin.NewHasher("pimienta").Digest("4837"), strings.TrimSpace(out))

	_, err = run(t, "digest")
	assert.Error(t, err)
}

func TestCheckConfig(t *testing.T) {
	setEnv(t, ":memory:")

	out, err := run(t, "check-config")
	require.NoError(t, err)
	assert.Contains(t, out, "database:      sqlite")
	assert.Contains(t, out, "sessions:      memory")
	assert.Contains(t, out, "config OK")

	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ACCESS_CODE_DOCENTE", "")
	_, err = run(t, "check-config")
	assert.Error(t, err)
}

func TestMigrateAndExport(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, filepath.Join(dir, "evaluaciones.db"))

	_, err := run(t, "migrate")
	require.NoError(t, err)
	_, err = run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "export")
	require.NoError(t, err)
	assert.Equal(t, "id,student_name,student_id,course,date,score,comments,created_at\n", out)

	file := filepath.Join(dir, "out.csv")
	_, err = run(t, "export", "--out", file)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error {
	return errors.New("disk quota exceeded")
}

func TestWriteAndCloseReportsCloseError(t *testing.T) {
	dst := &failingCloser{}
	err := writeAndClose(dst, []models.Evaluation{{ID: 1, StudentName: "Ana"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk quota exceeded")
	assert.Contains(t, dst.String(), "Ana")
}

func TestExportToMissingDirectory(t *testing.T) {
	setEnv(t, filepath.Join(t.TempDir(), "evaluaciones.db"))

	_, err := run(t, "export", "--out", filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)
}
