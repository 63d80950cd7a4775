package cli_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/cli"
	"crm/internal/crmclient"
	"crm/internal/service"
	"crm/internal/testutil/apitest"
)

type harness struct {
	apiURL      string
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := httptest.NewServer(apitest.NewServer(t, apitest.Options{}))
	t.Cleanup(srv.Close)
	return &harness{
		apiURL:      srv.URL + "/api",
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	command, err := cli.NewApp(&out).Command()
	require.NoError(t, err)
	command.SetArgs(append([]string{"--api-url", h.apiURL, "--session-file", h.sessionFile, "--locale", "en"}, args...))
	command.SetOut(&out)
	command.SetErr(&out)
	err = command.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_Workflow(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "dashboard")
	require.ErrorIs(t, err, crmclient.ErrNotLoggedIn)

	out, err := h.run(t, "login", "admin", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Administrator")

	out, err = h.run(t, "save", "clients", "name=Acme", "contact=Ann", "phone=+7 900")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved.")

	out, err = h.run(t, "save", "deals", "clientId=1", "orderName=Tables", "amount=1500")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved.")

	_, err = h.run(t, "save", "workers", "name=Oleg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), service.MessageInvalidWorker)

	out, err = h.run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "User: Administrator")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Tables")
	assert.Contains(t, out, "Current pipeline")

	exportPath := filepath.Join(t.TempDir(), "crm.xlsx")
	out, err = h.run(t, "export", "-o", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, exportPath)
	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")))

	out, err = h.run(t, "delete", "clients", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted.")

	out, err = h.run(t, "dashboard")
	require.NoError(t, err)
	assert.NotContains(t, out, "Acme")

	out, err = h.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	_, err = h.run(t, "dashboard")
	assert.ErrorIs(t, err, crmclient.ErrNotLoggedIn)
}

func TestCLI_RejectsBadArguments(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "login", "admin", "admin")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
	}{
		{"pair without equals", []string{"save", "clients", "name"}},
		{"unknown entity", []string{"save", "invoices", "name=x"}},
		{"zero id", []string{"delete", "clients", "0"}},
		{"bad filter date", []string{"dashboard", "--attendance-date", "17.10.2026"}},
		{"wrong password", []string{"login", "admin", "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
