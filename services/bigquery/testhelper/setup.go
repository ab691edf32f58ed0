package testhelper

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

const TestKey = "BIGQUERY_INTEGRATION_TEST_CREDENTIALS"

type TestCredentials struct {
	ProjectID   string `json:"projectID"`
	Location    string `json:"location"`
	Credentials string `json:"credentials"`
}

func GetTestCredentials() (*TestCredentials, error) {
	cred, exists := os.LookupEnv(TestKey)
	if !exists {
		return nil, fmt.Errorf("bq credentials not found")
	}

	var credentials TestCredentials
	if err := jsoniter.Unmarshal([]byte(cred), &credentials); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bq credentials: %w", err)
	}
	return &credentials, nil
}

// SkipIfUnavailable skips the test unless the credentials variable is set.
func SkipIfUnavailable(t testing.TB) {
	t.Helper()
	if _, exists := os.LookupEnv(TestKey); !exists {
		if os.Getenv("FORCE_RUN_INTEGRATION_TESTS") == "true" {
			t.Fatalf("%s environment variable not set", TestKey)
		}
		t.Skipf("Skipping %s as %s is not set", t.Name(), TestKey)
	}
}

// CredentialsFile writes the service account JSON to a temporary file and
// returns its path.
func CredentialsFile(t testing.TB, credentials *TestCredentials) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(credentials.Credentials), 0o600))
	return path
}
