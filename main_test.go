package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion_IgnoresBrokenConfig(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DUTY_HTTP_TIMEOUT", "soon")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, appName+" version "+Version+"\n", out)
}

func TestReport_BrokenConfig(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DUTY_CACHE_PATH", t.TempDir()+"/events.json")
	t.Setenv("DUTY_HTTP_TIMEOUT", "soon")

	_, err := execute(t)
	assert.ErrorContains(t, err, "DUTY_HTTP_TIMEOUT")
}

func TestReport_NoCache(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DUTY_CACHE_PATH", t.TempDir()+"/events.json")

	_, err := execute(t, "--format", "csv")
	assert.ErrorContains(t, err, "duty-report update")
}

func TestReport_UnknownFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml")
	assert.ErrorContains(t, err, "format must be one of")
}
