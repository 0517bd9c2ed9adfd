package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/cache"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/notify"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const guestSession = "0b5c2f7e-9a41-4d2e-b6a3-8f1d2c3e4a5b"

// freshSession matches a session ID minted during login, never the one
// the browser arrived with.
var freshSession = mock.MatchedBy(func(id string) bool {
	return uuid.Validate(id) == nil && id != guestSession && id != adminSession && id != superSession
})

func sessionCookieOf(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName {
			return ck
		}
	}
	return nil
}

func TestLogin_Success(t *testing.T) {
	tc := newTestConsole()
	tc.auth.On("Login", mock.Anything, freshSession, "a@b.com", "pw").Return(superAdminUser, nil).Once()

	w := tc.do(http.MethodPost, "/login", guestSession, url.Values{"email": {"a@b.com"}, "password": {"pw"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tickets", w.Header().Get("Location"))
	tc.auth.AssertExpectations(t)
}

func TestLogin_RotatesSessionID(t *testing.T) {
	tc := newTestConsole()
	var loginID, ctxID string
	tc.auth.On("Login", mock.Anything, freshSession, "a@b.com", "pw").Run(func(args mock.Arguments) {
		loginID = args.String(1)
		ctxID = session.IDFromContext(args.Get(0).(context.Context))
	}).Return(superAdminUser, nil).Once()

	w := tc.do(http.MethodPost, "/login", guestSession, url.Values{"email": {"a@b.com"}, "password": {"pw"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	issued := sessionCookieOf(w)
	require.NotNil(t, issued, "a successful login issues a new cookie")
	assert.NotEqual(t, guestSession, issued.Value)
	assert.Equal(t, loginID, issued.Value)
	assert.Equal(t, loginID, ctxID)
	assert.True(t, issued.HttpOnly)

	// The notice travels with the new cookie, not the planted one.
	assert.NotContains(t, tc.do(http.MethodGet, "/login", guestSession, nil).Body.String(), "Login successful!")
	assert.Contains(t, tc.do(http.MethodGet, "/login", issued.Value, nil).Body.String(), "Login successful!")
}

func TestLogin_FailureKeepsSessionID(t *testing.T) {
	tc := newTestConsole()
	tc.auth.On("Login", mock.Anything, freshSession, "a@b.com", "wrong").
		Return(nil, domain.AuthenticationError{Err: errors.New("401 Unauthorized")}).Once()

	w := tc.do(http.MethodPost, "/login", guestSession, url.Values{"email": {"a@b.com"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookieOf(w))
}

func TestLogin_DropsPreviousSignedInSession(t *testing.T) {
	tc := newTestConsole()
	tc.auth.On("Login", mock.Anything, freshSession, "a@b.com", "pw").Return(superAdminUser, nil).Once()
	tc.auth.On("Logout", mock.Anything, adminSession).Return(nil).Once()

	w := tc.do(http.MethodPost, "/login", adminSession, url.Values{"email": {"a@b.com"}, "password": {"pw"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	tc.auth.AssertExpectations(t)
}

func TestLogin_NoticeReachesOtherReplica(t *testing.T) {
	shared := notify.NewMemoryQueue()
	replicaA := newTestConsoleWithNotices(shared)
	replicaB := newTestConsoleWithNotices(shared)
	replicaA.auth.On("Login", mock.Anything, freshSession, "a@b.com", "pw").Return(superAdminUser, nil).Once()

	w := replicaA.do(http.MethodPost, "/login", guestSession, url.Values{"email": {"a@b.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	issued := sessionCookieOf(w)
	require.NotNil(t, issued)

	assert.Contains(t, replicaB.do(http.MethodGet, "/login", issued.Value, nil).Body.String(), "Login successful!")
	assert.NotContains(t, replicaA.do(http.MethodGet, "/login", issued.Value, nil).Body.String(), "Login successful!")
}

func TestLogin_ValidationErrors(t *testing.T) {
	tc := newTestConsole()
	tc.auth.On("Login", mock.Anything, freshSession, "", "").Return(nil, domain.ValidationErrors{
		{Field: "email", Msg: "Email is required"},
		{Field: "password", Msg: "Password is required"},
	}).Once()

	w := tc.do(http.MethodPost, "/login", guestSession, url.Values{"email": {""}, "password": {""}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email is required")
	assert.Contains(t, w.Body.String(), "Password is required")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	tc := newTestConsole()
	tc.auth.On("Login", mock.Anything, freshSession, "a@b.com", "wrong").
		Return(nil, domain.AuthenticationError{Err: errors.New("401 Unauthorized")}).Once()

	w := tc.do(http.MethodPost, "/login", guestSession, url.Values{"email": {"a@b.com"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Contains(t, w.Body.String(), `value="a@b.com"`)
}

func TestLogin_UnexpectedError(t *testing.T) {
	tc := newTestConsole()
	tc.auth.On("Login", mock.Anything, freshSession, "a@b.com", "pw").Return(nil, errors.New("session store down")).Once()

	w := tc.do(http.MethodPost, "/login", guestSession, url.Values{"email": {"a@b.com"}, "password": {"pw"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "session store down")
}

func TestLoginForm_RedirectsSignedInUser(t *testing.T) {
	tc := newTestConsole()

	w := tc.do(http.MethodGet, "/login", adminSession, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = tc.do(http.MethodGet, "/login", guestSession, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/login"`)
}

func TestLogout(t *testing.T) {
	tc := newTestConsole()
	tc.auth.On("Logout", mock.Anything, adminSession).Return(nil).Once()

	w := tc.do(http.MethodPost, "/logout", adminSession, url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	tc.auth.AssertExpectations(t)
}

func TestSessions_IssuesCookie(t *testing.T) {
	tc := newTestConsole()

	w := tc.do(http.MethodGet, "/login", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	issued := sessionCookieOf(w)
	require.NotNil(t, issued)
	assert.True(t, issued.HttpOnly)
	assert.Len(t, issued.Value, 36)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAPISession(t *testing.T) {
	tc := newTestConsole()

	w := tc.do(http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = tc.do(http.MethodGet, "/api/session", superSession, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "a@b.com", body.User.Email)
	assert.True(t, body.User.IsSuperAdmin())
}

func TestAPIResource_Loading(t *testing.T) {
	tc := newTestConsole()
	tc.resources.On("Snapshot", mock.Anything, domain.ResourceTickets, false).
		Return(cache.Snapshot{State: cache.StateLoading}, nil).Once()

	w := tc.do(http.MethodGet, "/api/resources/tickets?wait=false", adminSession, nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"resource":"tickets","state":"loading"}`, w.Body.String())
}

func TestAPIResource_Ready(t *testing.T) {
	tc := newTestConsole()
	fetched := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	tc.resources.On("Snapshot", mock.Anything, domain.ResourceCompanies, true).
		Return(cache.Snapshot{State: cache.StateReady, Value: []domain.Company{{ID: 1, Name: "VRL"}}, FetchedAt: fetched}, nil).Once()

	w := tc.do(http.MethodGet, "/api/resources/companies", adminSession, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		State     string           `json:"state"`
		Data      []domain.Company `json:"data"`
		FetchedAt string           `json:"fetched_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.State)
	assert.Equal(t, "VRL", body.Data[0].Name)
	assert.Equal(t, "2026-03-01T09:30:00Z", body.FetchedAt)
}

func TestAPIResource_Failed(t *testing.T) {
	tc := newTestConsole()
	tc.resources.On("Snapshot", mock.Anything, domain.ResourceBuses, true).
		Return(cache.Snapshot{State: cache.StateFailed, Err: domain.RequestError{Resource: domain.ResourceBuses, Action: domain.ActionList}}, nil).Once()

	w := tc.do(http.MethodGet, "/api/resources/buses", adminSession, nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load buses")
}

func TestAPIResource_Rejections(t *testing.T) {
	tc := newTestConsole()
	tc.resources.On("Snapshot", mock.Anything, domain.ResourceUsers, true).
		Return(cache.Snapshot{}, resources.ErrNotListable).Once()

	assert.Equal(t, http.StatusNotFound, tc.do(http.MethodGet, "/api/resources/routes", adminSession, nil).Code)
	assert.Equal(t, http.StatusBadRequest, tc.do(http.MethodGet, "/api/resources/tickets?wait=maybe", adminSession, nil).Code)

	w := tc.do(http.MethodGet, "/api/resources/branches", adminSession, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, tc.do(http.MethodGet, "/api/resources/users", superSession, nil).Code)
}

func TestAtoi(t *testing.T) {
	assert.Equal(t, 40, atoi("40"))
	assert.Equal(t, 7, atoi(" 7 "))
	assert.Equal(t, 0, atoi("forty"))
	assert.Equal(t, 0, atoi(""))
	assert.Equal(t, int64(0), atoi64("1.5"))
	assert.Equal(t, int64(12), atoi64("12"))
}
