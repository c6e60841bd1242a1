package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	SetBuildInfo("1.2.3", "today", "abc123")

	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.NotEmpty(t, info.Platform)
}

func TestSynthAndShow(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images-idx3-ubyte.gz")
	labels := filepath.Join(dir, "labels-idx1-ubyte.gz")

	out, err := execute(t, "synth", images, labels, "--count", "12", "--seed", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 12 samples")

	out, err = execute(t, "show", images, labels, "--index", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "label: 3")
	assert.Regexp(t, `[+*#%@]{3}`, out, "a glyph stroke renders as a run of ink characters")
	assert.Contains(t, out, "rotation:")

	out, err = execute(t, "show", images, labels, "--index", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "label: 1")

	_, err = execute(t, "show", images, labels, "--index", "40")
	require.Error(t, err)
}

func TestRunSynthetic(t *testing.T) {
	out, err := execute(t, "run", "--synthetic", "40", "--epochs", "2", "--workers", "2", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "x 2 epochs")
	assert.Contains(t, out, "accuracy")
	assert.Equal(t, 2, cfg.Run.Epochs)
	assert.Equal(t, 2, cfg.Run.Workers)
}

func TestRunIDXFiles(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "train-images")
	labels := filepath.Join(dir, "train-labels")
	_, err := execute(t, "synth", images, labels, "--count", "20")
	require.NoError(t, err)

	out, err := execute(t, "run", "--synthetic", "0",
		"--train-images", images, "--train-labels", labels,
		"--test-images", images, "--test-labels", labels,
		"--limit", "15", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "tested 15 samples")
}

func TestBaselineSynthetic(t *testing.T) {
	out, err := execute(t, "baseline", "--synthetic", "20", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline with 10 prototypes")
}

func TestRunRejectsInvalidVigilance(t *testing.T) {
	t.Cleanup(func() { _ = runCmd.Flags().Set("vigilance", "0.98") })

	_, err := execute(t, "run", "--synthetic", "10", "--vigilance", "1.5", "--log-level", "warn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vigilance")
}

func TestConfigFile(t *testing.T) {
	t.Cleanup(func() { cfgFile = "" })

	_, err := execute(t, "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
