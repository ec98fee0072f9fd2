package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstituteEnvWithDefault(t *testing.T) {
	got, err := substituteEnv("${FOO:bar}")
	require.NoError(t, err)
	require.Equal(t, "bar", got)
}

func TestSubstituteEnvWithEnvOverridesDefault(t *testing.T) {
	t.Setenv("FOO", "hello")
	got, err := substituteEnv("${FOO:bar}")
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestSubstituteEnvMissingNoDefault(t *testing.T) {
	_, err := substituteEnv("${MISSING_GATEWAY_VAR}")
	require.Error(t, err)
}

func TestMergeMapsDeep(t *testing.T) {
	dst := map[string]any{"mysql": map[string]any{"dsn": "a"}, "auth": map[string]any{"secret": "x"}}
	src := map[string]any{"mysql": map[string]any{"dsn": "b"}}
	mergeMaps(dst, src)
	require.Equal(t, "b", dst["mysql"].(map[string]any)["dsn"])
	require.Equal(t, "x", dst["auth"].(map[string]any)["secret"])
}

func TestLoadMergesLayersAndSubstitutes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GATEWAY_TEST_DSN", "user:pass@tcp(db:3306)/app")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(`
mysql:
  dsn: "${GATEWAY_TEST_DSN}"
auth:
  secret: "base-secret"
  expiry_hour: 12
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application-test.yaml"), []byte(`
auth:
  expiry_hour: 48
`), 0o644))

	cfg, err := Load(dir, "test")
	require.NoError(t, err)
	require.Equal(t, "user:pass@tcp(db:3306)/app", cfg.MySQL.DSN)
	require.Equal(t, "base-secret", cfg.Auth.Secret)
	require.Equal(t, 48, cfg.Auth.ExpiryHour)
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(`
auth:
  secret: "x"
`), 0o644))
	_, err := Load(dir, "dev")
	require.Error(t, err)
}
