package crmclient_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/crmclient"
	"crm/internal/dashboard"
	"crm/internal/model"
	"crm/internal/testutil/apitest"
)

func newClient(t *testing.T) *crmclient.Client {
	t.Helper()
	srv := httptest.NewServer(apitest.NewServer(t, apitest.Options{}))
	t.Cleanup(srv.Close)
	return crmclient.New(srv.URL + "/api/")
}

func TestClient_SaveSnapshotDelete(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)

	require.NoError(t, client.Save(ctx, model.EntityClients, map[string]any{
		"name": "Acme", "contact": "Ann", "phone": "+7 900",
	}))
	snap, err := client.Snapshot(ctx, model.SnapshotFilter{})
	require.NoError(t, err)
	require.Len(t, snap.Clients, 1)
	assert.Equal(t, "Acme", snap.Clients[0].Name)

	require.NoError(t, client.Save(ctx, model.EntityDeals, map[string]any{
		"clientId": snap.Clients[0].ID, "orderName": "Tables", "amount": 1500,
	}))
	rep, err := client.Report(ctx, model.SnapshotFilter{})
	require.NoError(t, err)
	assert.True(t, rep.Summary.Pipeline.Equal(decimal.NewFromInt(1500)), rep.Summary.Pipeline.String())

	require.NoError(t, client.Delete(ctx, model.EntityClients, snap.Clients[0].ID))
	snap, err = client.Snapshot(ctx, model.SnapshotFilter{})
	require.NoError(t, err)
	assert.Empty(t, snap.Clients)
	assert.Empty(t, snap.Deals)
}

func TestClient_ApplyThroughState(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	state := dashboard.NewState(model.SnapshotFilter{})

	err := state.Apply(ctx, client, func(ctx context.Context) error {
		return client.Save(ctx, model.EntityWorkers, map[string]any{"name": "Oleg", "role": "Joiner"})
	}, "Worker saved.")
	require.NoError(t, err)
	assert.Equal(t, dashboard.Status{Text: "Worker saved."}, state.Status())
	require.Len(t, state.Snapshot().Workers, 1)

	err = state.Apply(ctx, client, func(ctx context.Context) error {
		return client.Save(ctx, model.EntityWorkers, map[string]any{"name": "Oleg"})
	}, "Worker saved.")
	require.Error(t, err)
	assert.True(t, state.Status().Error)
	assert.Contains(t, state.Status().Text, "fill in the worker name and role")
	assert.Len(t, state.Snapshot().Workers, 1)
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)

	result, err := client.Login(ctx, "user2", "user2")
	require.NoError(t, err)
	assert.Equal(t, "Maria Sidorova", result.User.User)
	assert.NotEmpty(t, result.Token)

	_, err = client.Login(ctx, "user2", "bad")
	var apiErr *crmclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, strings.HasPrefix(apiErr.Message, "invalid login or password ("))
}

func TestClient_Export(t *testing.T) {
	client := newClient(t)

	var buf bytes.Buffer
	require.NoError(t, client.Export(context.Background(), model.SnapshotFilter{}, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestClient_NormalizesFailures(t *testing.T) {
	ctx := context.Background()

	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer html.Close()

	notOK := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer notOK.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name    string
		baseURL string
		status  int
		prefix  string
	}{
		{"non json body", html.URL, http.StatusBadGateway, "API returned non-JSON ("},
		{"ok false without message", notOK.URL, http.StatusOK, "API error ("},
		{"server unreachable", closedURL, 0, "network error ("},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := crmclient.New(tt.baseURL).Snapshot(ctx, model.SnapshotFilter{})
			var apiErr *crmclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.True(t, strings.HasPrefix(apiErr.Error(), tt.prefix), apiErr.Error())
		})
	}
}

func TestClient_SendsFilterAndToken(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"ok":true,"data":{"clients":[],"workers":[],"deals":[],"attendance":[],"productions":[]}}`))
	}))
	defer srv.Close()

	day := model.NewDate(2026, time.October, 17)
	_, err := crmclient.New(srv.URL, crmclient.WithToken("abc")).Snapshot(context.Background(), model.SnapshotFilter{AttendanceDate: day})
	require.NoError(t, err)
	assert.Equal(t, "attendance_date=2026-10-17", gotQuery)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm", "session.json")

	_, err := crmclient.LoadSession(path)
	assert.ErrorIs(t, err, crmclient.ErrNotLoggedIn)

	saved := &crmclient.Session{Login: "admin", User: "Administrator", At: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC), Token: "t"}
	require.NoError(t, crmclient.SaveSession(path, saved))
	loaded, err := crmclient.LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "Administrator", loaded.DisplayName())
	assert.True(t, saved.At.Equal(loaded.At))

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = crmclient.LoadSession(path)
	assert.ErrorIs(t, err, crmclient.ErrNotLoggedIn)
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	require.NoError(t, crmclient.ClearSession(path))
}
