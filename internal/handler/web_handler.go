package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"crm/internal/dashboard"
	apperrors "crm/internal/errors"
	"crm/internal/model"
	"crm/internal/service"
)

const (
	sessionName              = "crm_session"
	sessionKeyUser           = "user"
	sessionKeyAttendanceDate = "attendance_date"
	sessionKeyProductionDate = "production_date"
	contextKeySessionUser    = "crm_session_user"
	sessionMaxAge            = 12 * 60 * 60
)

// SessionUser is stored in the session cookie after a successful login.
type SessionUser struct {
	Login string    `json:"login"`
	User  string    `json:"user"`
	At    time.Time `json:"at"`
}

var entityNouns = map[model.EntityKind]string{
	model.EntityClients:     "Client",
	model.EntityWorkers:     "Worker",
	model.EntityDeals:       "Deal",
	model.EntityAttendance:  "Attendance record",
	model.EntityProductions: "Production record",
}

// NewSessionStore creates the cookie store for dashboard sessions.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// WebHandler serves the server-rendered dashboard.
type WebHandler struct {
	authService service.AuthService
	crmService  service.CRMService
	store       sessions.Store
	formatter   *dashboard.Formatter
	logger      *zap.Logger
	today       func() model.Date
}

// NewWebHandler creates a new dashboard handler.
func NewWebHandler(authService service.AuthService, crmService service.CRMService, store sessions.Store, formatter *dashboard.Formatter, logger *zap.Logger) *WebHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebHandler{
		authService: authService,
		crmService:  crmService,
		store:       store,
		formatter:   formatter,
		logger:      logger,
		today:       model.Today,
	}
}

// RequireSession redirects to the login page unless the session holds a valid user.
func (h *WebHandler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := h.sessionUser(c)
		if !ok {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		c.Set(contextKeySessionUser, user)
		return next(c)
	}
}

// LoginPage renders the sign-in form.
func (h *WebHandler) LoginPage(c echo.Context) error {
	if _, ok := h.sessionUser(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Render(http.StatusOK, dashboard.LoginTemplate, dashboard.LoginPage{Status: h.popFlash(c)})
}

// Login checks the submitted credentials and starts a session.
func (h *WebHandler) Login(c echo.Context) error {
	login := c.FormValue("login")
	result, err := h.authService.Login(c.Request().Context(), login, c.FormValue("password"))
	if err != nil {
		mapped := apperrors.MapErrorToHTTP(err)
		if mapped.StatusCode >= http.StatusInternalServerError {
			h.logger.Error("dashboard login failed", zap.Error(err))
		}
		return c.Render(mapped.StatusCode, dashboard.LoginTemplate, dashboard.LoginPage{
			Login:  login,
			Status: dashboard.Status{Text: mapped.Message, Error: true},
		})
	}

	payload, err := json.Marshal(SessionUser{Login: result.User.Login, User: result.User.User, At: time.Now()})
	if err != nil {
		return err
	}
	session, _ := h.store.Get(c.Request(), sessionName)
	session.Values[sessionKeyUser] = string(payload)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout ends the session.
func (h *WebHandler) Logout(c echo.Context) error {
	session, _ := h.store.Get(c.Request(), sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Dashboard renders every table for the selected days.
func (h *WebHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	session, _ := h.store.Get(c.Request(), sessionName)

	status := h.popFlashFrom(session)
	filter, err := h.filterFor(c, session)
	if err != nil {
		status = dashboard.Status{Text: err.Error(), Error: true}
	}
	session.Values[sessionKeyAttendanceDate] = filter.AttendanceDate.String()
	session.Values[sessionKeyProductionDate] = filter.ProductionDate.String()
	if err := session.Save(c.Request(), c.Response()); err != nil {
		h.logger.Warn("save dashboard session", zap.Error(err))
	}

	state := dashboard.NewState(filter)
	if err := state.Refresh(ctx, h.crmService); err != nil {
		h.logger.Error("dashboard refresh failed", zap.Error(err))
		status = dashboard.Status{Text: apperrors.MapErrorToHTTP(err).Message, Error: true}
	}

	user, _ := c.Get(contextKeySessionUser).(SessionUser)
	return c.Render(http.StatusOK, dashboard.DashboardTemplate, dashboard.Page{
		User:   displayName(user),
		Status: status,
		View:   dashboard.Render(state.Snapshot(), state.Filter(), h.formatter),
	})
}

// Save handles the create and edit forms of every entity.
func (h *WebHandler) Save(c echo.Context) error {
	kind, err := model.ParseEntityKind(c.Param("entity"))
	if err != nil {
		return h.finish(c, "", apperrors.ErrUnknownEntity)
	}
	req, err := newCommandRequest(kind)
	if err != nil {
		return h.finish(c, "", err)
	}
	if err := c.Bind(req); err != nil {
		return h.finish(c, "", apperrors.Validation(req.invalidMessage()))
	}
	if deal, ok := req.(*DealRequest); ok {
		if form, err := c.FormParams(); err == nil {
			deal.noteFormFields(form)
		}
	}
	cmd, err := toCommand(req, c.Validate)
	if err != nil {
		return h.finish(c, "", err)
	}
	err = h.crmService.Execute(c.Request().Context(), cmd)
	return h.finish(c, entityNouns[kind]+" saved.", err)
}

// Delete handles the delete buttons of every entity.
func (h *WebHandler) Delete(c echo.Context) error {
	id, err := parsePositiveID(c.Param("id"))
	if err != nil {
		return h.finish(c, "", err)
	}
	kind, err := model.ParseEntityKind(c.Param("entity"))
	if err != nil {
		return h.finish(c, "", apperrors.ErrUnknownEntity)
	}
	err = h.crmService.Execute(c.Request().Context(), &service.DeleteEntity{Kind: kind, ID: id})
	return h.finish(c, entityNouns[kind]+" deleted.", err)
}

// finish stores the outcome as a flash message and returns to the dashboard
// with the previously selected days.
func (h *WebHandler) finish(c echo.Context, successText string, err error) error {
	status := dashboard.Status{Text: successText}
	if err != nil {
		mapped := apperrors.MapErrorToHTTP(err)
		if mapped.StatusCode >= http.StatusInternalServerError {
			h.logger.Error("dashboard mutation failed", zap.Error(err))
		}
		status = dashboard.Status{Text: mapped.Message, Error: true}
	}

	session, _ := h.store.Get(c.Request(), sessionName)
	h.addFlash(session, status)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		h.logger.Warn("save dashboard session", zap.Error(err))
	}

	query := url.Values{}
	for _, key := range []string{sessionKeyAttendanceDate, sessionKeyProductionDate} {
		if v, ok := session.Values[key].(string); ok && v != "" {
			query.Set(key, v)
		}
	}
	target := "/dashboard"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// filterFor picks the days from the query, then the session, then today.
func (h *WebHandler) filterFor(c echo.Context, session *sessions.Session) (model.SnapshotFilter, error) {
	today := h.today()
	pick := func(key string) string {
		if v := c.QueryParam(key); v != "" {
			return v
		}
		if v, ok := session.Values[key].(string); ok && v != "" {
			return v
		}
		return today.String()
	}

	filter, err := parseFilter(pick(sessionKeyAttendanceDate), pick(sessionKeyProductionDate))
	if err != nil {
		return model.SnapshotFilter{AttendanceDate: today, ProductionDate: today}, err
	}
	return filter, nil
}

func (h *WebHandler) sessionUser(c echo.Context) (SessionUser, bool) {
	session, err := h.store.Get(c.Request(), sessionName)
	if err != nil {
		h.logger.Warn("load session", zap.Error(err))
		return SessionUser{}, false
	}
	raw, ok := session.Values[sessionKeyUser].(string)
	if !ok || raw == "" {
		return SessionUser{}, false
	}
	var user SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.Login == "" {
		delete(session.Values, sessionKeyUser)
		_ = session.Save(c.Request(), c.Response())
		return SessionUser{}, false
	}
	return user, true
}

func (h *WebHandler) addFlash(session *sessions.Session, status dashboard.Status) {
	payload, err := json.Marshal(status)
	if err != nil {
		return
	}
	session.AddFlash(string(payload))
}

func (h *WebHandler) popFlash(c echo.Context) dashboard.Status {
	session, _ := h.store.Get(c.Request(), sessionName)
	status := h.popFlashFrom(session)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		h.logger.Warn("save dashboard session", zap.Error(err))
	}
	return status
}

func (h *WebHandler) popFlashFrom(session *sessions.Session) dashboard.Status {
	var status dashboard.Status
	for _, flash := range session.Flashes() {
		raw, ok := flash.(string)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), &status); err != nil {
			status = dashboard.Status{}
		}
	}
	return status
}

func displayName(user SessionUser) string {
	if user.User != "" {
		return user.User
	}
	if user.Login != "" {
		return user.Login
	}
	return "Unknown"
}
