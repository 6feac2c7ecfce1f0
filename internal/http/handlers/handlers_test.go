package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/innkeeper/server/internal/account"
	"github.com/innkeeper/server/internal/auth"
	httphandler "github.com/innkeeper/server/internal/http"
	"github.com/innkeeper/server/internal/http/handlers"
	"github.com/innkeeper/server/internal/repo/repotest"
)

type testServer struct {
	*httptest.Server
	fake *repotest.FakeRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fake := repotest.New()
	log := zap.NewNop()
	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	svc := account.NewService(fake, hasher, tokens, log)

	router := httphandler.NewRouter(
		handlers.NewAuthHandler(svc, log),
		handlers.NewAccountHandler(svc, log),
		tokens,
		log,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, fake: fake}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp, decoded
}

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"email":        "a@x.com",
		"password":     "secret1",
		"display_name": "Ana",
	}
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "data object missing: %v", body)
	return d
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing email", map[string]interface{}{"password": "secret1", "display_name": "Ana"}},
		{"bad email", map[string]interface{}{"email": "nope", "password": "secret1", "display_name": "Ana"}},
		{"short password", map[string]interface{}{"email": "a@x.com", "password": "abc", "display_name": "Ana"}},
		{"blank display name", map[string]interface{}{"email": "a@x.com", "password": "secret1", "display_name": "   "}},
		{"bad phone", map[string]interface{}{"email": "a@x.com", "password": "secret1", "display_name": "Ana", "phone": "not-a-phone"}},
		{"future birth date", map[string]interface{}{"email": "a@x.com", "password": "secret1", "display_name": "Ana", "birth_date": "2999-01-01"}},
		{"malformed birth date", map[string]interface{}{"email": "a@x.com", "password": "secret1", "display_name": "Ana", "birth_date": "01/01/1990"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := ts.do(t, http.MethodPost, "/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["errors"], "per-field messages expected")
		})
	}
}

func TestRegisterSuccessStripsPassword(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/auth/register", "", registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	d := data(t, body)
	assert.NotEmpty(t, d["token"])
	assert.NotEmpty(t, d["refreshToken"])

	acct, ok := d["account"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, acct["id"])
	assert.Equal(t, "a@x.com", acct["email"])
	assert.NotContains(t, acct, "password")
	assert.NotContains(t, acct, "password_hash")
}

func TestRegisterDuplicateConflict(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/auth/register", "", registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dup := registerBody()
	dup["password"] = "secret2"
	dup["display_name"] = "Ana2"
	resp, body := ts.do(t, http.MethodPost, "/auth/register", "", dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	// Case variations hit the same account.
	dup["email"] = "A@X.COM"
	resp, _ = ts.do(t, http.MethodPost, "/auth/register", "", dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginFailureBodiesAreIdentical(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/auth/register", "", registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	respWrong, bodyWrong := ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "a@x.com", "password": "wrong"})
	respNone, bodyNone := ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "ghost@x.com", "password": "secret1"})

	assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respNone.StatusCode)
	assert.Equal(t, bodyWrong, bodyNone, "wrong password and unknown email must be indistinguishable")

	// A deactivated account fails the same way.
	_, loginBody := ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "a@x.com", "password": "secret1"})
	token := data(t, loginBody)["token"].(string)
	resp, _ = ts.do(t, http.MethodDelete, "/users/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respGone, bodyGone := ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, respGone.StatusCode)
	assert.Equal(t, bodyWrong, bodyGone)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = ts.do(t, http.MethodGet, "/users/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	expired := auth.NewTokenService("access-secret", "refresh-secret", -time.Minute, time.Hour)
	token, err := expired.IssueAccess(uuid.New(), "a@x.com", "Ana")
	require.NoError(t, err)

	resp, _ := ts.do(t, http.MethodGet, "/users/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFullAccountLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// register("a@x.com","secret1","Ana") -> 201 with id present
	resp, body := ts.do(t, http.MethodPost, "/auth/register", "", registerBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	accountID := data(t, body)["account"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, accountID)

	// login -> 200 with matching id
	resp, body = ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	d := data(t, body)
	assert.Equal(t, accountID, d["account"].(map[string]interface{})["id"])
	token := d["token"].(string)
	refreshToken := d["refreshToken"].(string)

	// refresh -> 200 with a new access token
	resp, body = ts.do(t, http.MethodPost, "/auth/refresh", "",
		map[string]interface{}{"refreshToken": refreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, data(t, body)["token"])

	// refresh with the access token -> 401
	resp, _ = ts.do(t, http.MethodPost, "/auth/refresh", "",
		map[string]interface{}{"refreshToken": token})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// profile -> 200
	resp, body = ts.do(t, http.MethodGet, "/users/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, accountID, data(t, body)["id"])

	// partial update -> 200, other fields untouched
	resp, body = ts.do(t, http.MethodPut, "/users/profile", token,
		map[string]interface{}{"bio": "likes quiet rooms"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	d = data(t, body)
	assert.Equal(t, "likes quiet rooms", d["bio"])
	assert.Equal(t, "Ana", d["display_name"])

	// update validation -> 400
	resp, _ = ts.do(t, http.MethodPut, "/users/profile", token,
		map[string]interface{}{"avatar_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// change-password with wrong current -> 401, specific message
	resp, body = ts.do(t, http.MethodPut, "/users/change-password", token,
		map[string]interface{}{"current_password": "wrong", "new_password": "secret2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "current password incorrect", body["message"])

	// change-password -> 200; old password no longer works
	resp, _ = ts.do(t, http.MethodPut, "/users/change-password", token,
		map[string]interface{}{"current_password": "secret1", "new_password": "secret2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "a@x.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// logout is a stateless no-op
	resp, _ = ts.do(t, http.MethodPost, "/auth/logout", "", map[string]interface{}{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// deactivate -> 200; login now fails
	resp, _ = ts.do(t, http.MethodDelete, "/users/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodPost, "/auth/login", "",
		map[string]interface{}{"email": "a@x.com", "password": "secret2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
