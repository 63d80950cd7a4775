package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/handler"
	"crm/internal/model"
	"crm/internal/service"
	"crm/internal/testutil/apitest"
)

func newTestServer(t *testing.T, authRequired bool) *echo.Echo {
	t.Helper()
	return apitest.NewServer(t, apitest.Options{AuthRequired: authRequired})
}

func doJSON(e *echo.Echo, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func snapshotOf(t *testing.T, e *echo.Echo) model.Snapshot {
	t.Helper()
	rec := doJSON(e, http.MethodGet, "/api/crm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &snap))
	return snap
}

func TestCRM_ClientDealLifecycle(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodPost, "/api/crm?entity=clients", `{"name":"Acme","contact":"Ann","phone":"+7 900 000 00 00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decode(t, rec).OK)

	snap := snapshotOf(t, e)
	require.Len(t, snap.Clients, 1)
	clientID := snap.Clients[0].ID

	body := `{"clientId":` + jsonID(clientID) + `,"orderName":"Tables","amount":"1500"}`
	rec = doJSON(e, http.MethodPost, "/api/crm.php?entity=deals", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var figures struct {
		Summary struct {
			TotalDeals int             `json:"total_deals"`
			Pipeline   decimal.Decimal `json:"pipeline"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &figures))
	assert.Equal(t, 1, figures.Summary.TotalDeals)
	assert.True(t, figures.Summary.Pipeline.Equal(decimal.NewFromInt(1500)), figures.Summary.Pipeline.String())

	rec = doJSON(e, http.MethodDelete, "/api/crm?entity=clients&id="+jsonID(clientID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap = snapshotOf(t, e)
	assert.Empty(t, snap.Clients)
	assert.Empty(t, snap.Deals)
}

func TestCRM_SnapshotUsesEmptyArrays(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodGet, "/api/crm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, key := range []string{`"clients":[]`, `"workers":[]`, `"deals":[]`, `"attendance":[]`, `"productions":[]`} {
		assert.Contains(t, rec.Body.String(), key)
	}
}

func TestCRM_Errors(t *testing.T) {
	e := newTestServer(t, false)

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		status  int
		message string
	}{
		{"delete id zero", http.MethodDelete, "/api/crm?entity=clients&id=0", "", http.StatusBadRequest, "invalid id"},
		{"delete id not numeric", http.MethodDelete, "/api/crm?entity=clients&id=abc", "", http.StatusBadRequest, "invalid id"},
		{"delete unknown entity", http.MethodDelete, "/api/crm?entity=invoices&id=3", "", http.StatusBadRequest, "unknown entity"},
		{"save unknown entity", http.MethodPost, "/api/crm?entity=invoices", `{}`, http.StatusBadRequest, "unknown entity"},
		{"body not an object", http.MethodPost, "/api/crm?entity=clients", `[1,2]`, http.StatusBadRequest, "invalid JSON in request"},
		{"broken json", http.MethodPost, "/api/crm?entity=clients", `{"name":`, http.StatusBadRequest, "invalid JSON in request"},
		{"missing client fields", http.MethodPost, "/api/crm?entity=clients", `{"name":"Acme"}`, http.StatusBadRequest, service.MessageInvalidClient},
		{"negative amount", http.MethodPost, "/api/crm?entity=deals", `{"clientId":1,"orderName":"x","amount":-1}`, http.StatusBadRequest, service.MessageInvalidDeal},
		{"deal for missing client", http.MethodPost, "/api/crm?entity=deals", `{"clientId":99,"orderName":"x","amount":10}`, http.StatusBadRequest, "client not found"},
		{"bad filter date", http.MethodGet, "/api/crm?attendance_date=17.10.2026", "", http.StatusBadRequest, "invalid attendance_date, expected YYYY-MM-DD"},
		{"method not allowed", http.MethodPut, "/api/crm", "", http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			env := decode(t, rec)
			assert.False(t, env.OK)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestCRM_DealEditKeepsWorkerUnlessSent(t *testing.T) {
	e := newTestServer(t, false)

	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/api/crm?entity=clients", `{"name":"Acme","contact":"Ann","phone":"1"}`).Code)
	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/api/crm?entity=workers", `{"name":"Bob","role":"Welder"}`).Code)
	snap := snapshotOf(t, e)
	clientID, workerID := jsonID(snap.Clients[0].ID), snap.Workers[0].ID

	rec := doJSON(e, http.MethodPost, "/api/crm?entity=deals", `{"clientId":`+clientID+`,"workerId":`+jsonID(workerID)+`,"orderName":"Gate","amount":100}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dealID := jsonID(snapshotOf(t, e).Deals[0].ID)

	rec = doJSON(e, http.MethodPost, "/api/crm.php?entity=deals", `{"dealId":`+dealID+`,"clientId":`+clientID+`,"orderName":"Gate","amount":250,"status":"won"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	deal := snapshotOf(t, e).Deals[0]
	require.NotNil(t, deal.WorkerID)
	assert.Equal(t, workerID, *deal.WorkerID)
	assert.Equal(t, model.DealStatusWon, deal.Status)
	assert.True(t, deal.Amount.Equal(decimal.NewFromInt(250)), deal.Amount.String())

	rec = doJSON(e, http.MethodPost, "/api/crm?entity=deals", `{"dealId":`+dealID+`,"clientId":`+clientID+`,"workerId":null,"orderName":"Gate"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, snapshotOf(t, e).Deals[0].WorkerID)
}

func TestCRM_NegativeIDCreates(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodPost, "/api/crm?entity=clients", `{"clientId":-4,"name":"Acme","contact":"Ann","phone":"1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = doJSON(e, http.MethodPost, "/api/crm?entity=clients", `{"clientId":"-1","name":"Globex","contact":"Hank","phone":"2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Len(t, snapshotOf(t, e).Clients, 2)
}

func TestCRM_BodyLimit(t *testing.T) {
	e := newTestServer(t, false)

	body := `{"name":"` + strings.Repeat("a", 2<<20) + `","contact":"Ann","phone":"1"}`
	rec := doJSON(e, http.MethodPost, "/api/crm?entity=clients", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, decode(t, rec).OK)
	assert.Empty(t, snapshotOf(t, e).Clients)
}

func TestCRM_DeleteMissingRecordSucceeds(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodDelete, "/api/crm?entity=deals&id=42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).OK)
}

func TestLogin(t *testing.T) {
	e := newTestServer(t, false)

	t.Run("success", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/login", `{"login":"admin","password":"admin"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "password")

		var resp handler.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, "admin", resp.User.Login)
		assert.Equal(t, "Administrator", resp.User.User)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("unknown login and wrong password look the same", func(t *testing.T) {
		wrong := doJSON(e, http.MethodPost, "/api/login.php", `{"login":"admin","password":"nope"}`)
		unknown := doJSON(e, http.MethodPost, "/api/login.php", `{"login":"ghost","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
		assert.Equal(t, "invalid login or password", decode(t, wrong).Message)
	})

	t.Run("empty credentials", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/login", `{"login":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "enter login and password", decode(t, rec).Message)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := doJSON(e, http.MethodGet, "/api/login", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.False(t, decode(t, rec).OK)
	})

	t.Run("preflight", func(t *testing.T) {
		rec := doJSON(e, http.MethodOptions, "/api/login", "",
			echo.HeaderOrigin, "http://localhost:3000",
			echo.HeaderAccessControlRequestMethod, http.MethodPost,
		)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}

func TestRefreshAndLogout(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodPost, "/api/login", `{"login":"user1","password":"user1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	body := `{"refreshToken":"` + login.RefreshToken + `"}`
	rec = doJSON(e, http.MethodPost, "/api/auth/refresh", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed handler.RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.Token)

	rec = doJSON(e, http.MethodPost, "/api/auth/logout", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost, "/api/auth/refresh", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/refresh", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodGet, "/api/crm", "")
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/login", `{"login":"admin","password":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = doJSON(e, http.MethodGet, "/api/crm", "", echo.HeaderAuthorization, "Bearer "+login.Token)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/api/crm", "", echo.HeaderAuthorization, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportExportAndSeed(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodPost, "/api/seed/demo", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var seeded handler.SeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seeded))
	assert.True(t, seeded.Seeded)

	rec = doJSON(e, http.MethodPost, "/api/seed/demo", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seeded))
	assert.False(t, seeded.Seeded)

	rec = doJSON(e, http.MethodGet, "/api/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "crm-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

// browser keeps the cookies a real browser would send back.
type browser struct {
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, reader)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func TestDashboardFlow(t *testing.T) {
	b := &browser{e: newTestServer(t, false), cookies: map[string]*http.Cookie{}}

	rec := b.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = b.do(http.MethodPost, "/login", url.Values{"login": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid login or password")

	rec = b.do(http.MethodPost, "/login", url.Values{"login": {"admin"}, "password": {"admin"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

	rec = b.do(http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User: Administrator")
	assert.Contains(t, rec.Body.String(), "No clients yet.")

	rec = b.do(http.MethodPost, "/dashboard/clients", url.Values{"name": {"Acme"}, "contact": {"Ann"}, "phone": {"+7 900"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderLocation), "/dashboard"))

	rec = b.do(http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Client saved.")
	assert.Contains(t, rec.Body.String(), "Acme")

	rec = b.do(http.MethodPost, "/dashboard/clients", url.Values{"name": {"Half"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = b.do(http.MethodGet, "/dashboard", nil)
	assert.Contains(t, rec.Body.String(), service.MessageInvalidClient)

	rec = b.do(http.MethodPost, "/dashboard/workers", url.Values{"name": {"Bob"}, "role": {"Welder"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	snap := snapshotOf(t, b.e)
	clientID, workerID := jsonID(snap.Clients[0].ID), jsonID(snap.Workers[0].ID)
	rec = b.do(http.MethodPost, "/dashboard/deals", url.Values{"clientId": {clientID}, "workerId": {workerID}, "orderName": {"Gate"}, "amount": {"100"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	snap = snapshotOf(t, b.e)
	require.Len(t, snap.Deals, 1)
	require.NotNil(t, snap.Deals[0].WorkerID)

	// the edit form always sends workerId; an empty choice unassigns the deal
	rec = b.do(http.MethodPost, "/dashboard/deals", url.Values{"dealId": {jsonID(snap.Deals[0].ID)}, "clientId": {clientID}, "workerId": {""}, "orderName": {"Gate"}, "amount": {"100"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, snapshotOf(t, b.e).Deals[0].WorkerID)

	rec = b.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = b.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
