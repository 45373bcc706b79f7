package checkrunner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake check tool script is POSIX shell only")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "check.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunSuccessWithNoViolations(t *testing.T) {
	script := writeScript(t, "exit 0\n")
	r := New(script)
	result, err := r.Run(context.Background(), "/tmp/doesnotmatter.kicad_sch")
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, result.State)
	assert.Empty(t, result.Violations)
}

func TestRunParsesViolations(t *testing.T) {
	script := writeScript(t, `printf 'BadGrammar\t/tmp/x.kicad_sch\tmismatched parens\n'`+"\nexit 0\n")
	r := New(script)
	result, err := r.Run(context.Background(), "/tmp/x.kicad_sch")
	require.Error(t, err)
	assert.Equal(t, kerrors.CheckFailed, kerrors.KindOf(err))
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "BadGrammar", result.Violations[0].Kind)
}

func TestRunTimesOut(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	r := New(script)
	r.Timeout = 50 * time.Millisecond
	_, err := r.Run(context.Background(), "/tmp/x.kicad_sch")
	require.Error(t, err)
	assert.Equal(t, kerrors.CheckFailed, kerrors.KindOf(err))
	assert.Equal(t, StateFailure, r.State())
}

func TestRunWithNoCommandConfigured(t *testing.T) {
	r := New("")
	_, err := r.Run(context.Background(), "/tmp/x.kicad_sch")
	require.Error(t, err)
	assert.Equal(t, kerrors.CheckFailed, kerrors.KindOf(err))
}
