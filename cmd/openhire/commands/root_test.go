package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhire/openhire/pkg/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "checkup", "backup", "version"} {
		assert.True(t, names[want], "subcommand %q not registered", want)
	}
}

func TestVersionCommandPrintsNameAndVersion(t *testing.T) {
	t.Setenv("APP_NAME", "openhire-test")
	t.Setenv("APP_VERSION", "9.9.9")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "openhire-test 9.9.9")
}

func TestCheckupConfigOnlyPassesWithDefaults(t *testing.T) {
	out, err := execute(t, "checkup", "--config-only")
	require.NoError(t, err, "checkup failed on default development config:\n%s", out)
	assert.Contains(t, out, "checks passed")
}

func TestCheckupRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_MODE", "s3")
	t.Setenv("EMAIL_PROVIDER", "ses")

	out, err := execute(t, "checkup", "--config-only")
	require.Error(t, err, "expected checkup to fail with the development JWT secret")
	assert.Contains(t, out, "auth.jwt_secret")
}

func TestConfigChecksFlagUnknownStorageMode(t *testing.T) {
	t.Setenv("STORAGE_MODE", "ftp")
	cfg := config.Load()

	failed := map[string]bool{}
	for _, r := range configChecks(cfg) {
		if r.err != nil {
			failed[r.name] = true
		}
	}
	assert.True(t, failed["storage.mode"])
	assert.Len(t, failed, 1, "expected only storage.mode to fail")
}

func TestConfigChecksBodyLimitMustExceedResumeCap(t *testing.T) {
	t.Setenv("BODY_LIMIT", "1048576")
	cfg := config.Load()

	found := false
	for _, r := range configChecks(cfg) {
		if r.name == "server.body_limit" && r.err != nil {
			found = true
		}
	}
	assert.True(t, found, "body limit below resume cap must fail")
}
