package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progress-tracker.com/progress-tracker/internal/redact"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		flag := rootCmd.PersistentFlags().Lookup("env-file")
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestOpenAPICommand(t *testing.T) {
	out, err := run(t, "openapi")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
}

func TestConfigCommand_MissingEnvFile(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongodb")
	t.Setenv("MONGODB_HOST", "db")
	t.Setenv("MONGODB_USERNAME", "app")
	t.Setenv("MONGODB_PASSWORD", "hunter2")
	t.Setenv("MONGODB_DATABASE", "tasks")

	_, err := run(t, "config", "--env-file", "testdata/none.env")
	require.Error(t, err, "an explicit env file must exist")
}

func TestConfigCommand_Redacts(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongodb")
	t.Setenv("MONGODB_HOST", "db")
	t.Setenv("MONGODB_USERNAME", "app")
	t.Setenv("MONGODB_PASSWORD", "hunter2")
	t.Setenv("MONGODB_DATABASE", "tasks")

	out, err := run(t, "config")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, redact.Placeholder, summary["MONGODB_PASSWORD"])
	assert.Equal(t, "db", summary["MONGODB_HOST"])
}

func TestConfigCommand_ReportsEveryMissingField(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongodb")
	t.Setenv("MONGODB_HOST", "")
	t.Setenv("MONGODB_USERNAME", "")
	t.Setenv("MONGODB_PASSWORD", "")
	t.Setenv("MONGODB_DATABASE", "")

	_, err := run(t, "config")
	require.Error(t, err)
	for _, key := range []string{"MONGODB_HOST", "MONGODB_USERNAME", "MONGODB_PASSWORD", "MONGODB_DATABASE"} {
		assert.Contains(t, err.Error(), key)
	}
}
