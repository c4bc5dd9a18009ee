package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/messagely-api/internal/core/service"
	"github.com/messagely/messagely-api/internal/infrastructure/config"
)

const testSecret = "e2e-secret"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Port:             "0",
		JWTSecret:        testSecret,
		BcryptWorkFactor: bcrypt.MinCost,
		LoginWorkers:     2,
		Store: config.StoreConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "messagely.db"),
		},
		Redis: config.RedisConfig{IdempotencyTTL: time.Hour},
	}

	srv, err := New(context.Background(), cfg, zerolog.Nop(), WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv.Handler()
}

type response struct {
	code int
	body map[string]any
	raw  string
}

func call(t *testing.T, h http.Handler, method, path, token string, payload any) response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := response{code: rec.Code, raw: rec.Body.String()}
	_ = json.Unmarshal(rec.Body.Bytes(), &res.body)
	return res
}

func register(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	res := call(t, h, http.MethodPost, "/register", "", map[string]string{
		"username":  username,
		"password":  "pw-" + username,
		"firstName": "First " + username,
		"lastName":  "Last " + username,
		"phone":     "+1555" + username,
	})
	require.Equal(t, http.StatusOK, res.code, res.raw)
	token, _ := res.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func message(t *testing.T, res response) map[string]any {
	t.Helper()
	m, ok := res.body["message"].(map[string]any)
	require.True(t, ok, "missing message in %s", res.raw)
	return m
}

func TestServer_AuthFlow(t *testing.T) {
	h := newTestServer(t)

	token := register(t, h, "alice")
	username, err := service.NewSessionIssuer(testSecret, 0).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	dup := call(t, h, http.MethodPost, "/register", "", map[string]string{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, dup.code)

	login := call(t, h, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "pw-alice"})
	require.Equal(t, http.StatusOK, login.code, login.raw)
	assert.NotEmpty(t, login.body["token"])

	wrongPass := call(t, h, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "nope"})
	unknown := call(t, h, http.MethodPost, "/login", "", map[string]string{"username": "ghost", "password": "pw-alice"})
	assert.Equal(t, http.StatusUnauthorized, wrongPass.code)
	assert.Equal(t, http.StatusUnauthorized, unknown.code)
	assert.Equal(t, wrongPass.raw, unknown.raw)

	missing := call(t, h, http.MethodPost, "/login", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, missing.code)
}

func TestServer_MessageFlow(t *testing.T) {
	h := newTestServer(t)
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")
	carol := register(t, h, "carol")

	sent := call(t, h, http.MethodPost, "/messages", alice, map[string]string{"toUsername": "bob", "body": "hi bob"})
	require.Equal(t, http.StatusCreated, sent.code, sent.raw)
	m := message(t, sent)
	assert.Equal(t, "alice", m["fromUsername"])
	assert.Equal(t, "bob", m["toUsername"])
	assert.Equal(t, "hi bob", m["body"])
	id, _ := m["id"].(string)
	require.NotEmpty(t, id)

	// Participants can view; outsiders cannot.
	for _, token := range []string{alice, bob} {
		got := call(t, h, http.MethodGet, "/messages/"+id, token, nil)
		require.Equal(t, http.StatusOK, got.code, got.raw)
		detail := message(t, got)
		assert.Nil(t, detail["readAt"])
		from, _ := detail["fromUser"].(map[string]any)
		assert.Equal(t, "alice", from["username"])
		assert.Equal(t, "+1555alice", from["phone"])
	}
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/messages/"+id, carol, nil).code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/messages/does-not-exist", alice, nil).code)

	// Only the recipient marks read, and the first stamp sticks.
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodPost, "/messages/"+id+"/read", alice, nil).code)
	read := call(t, h, http.MethodPost, "/messages/"+id+"/read", bob, nil)
	require.Equal(t, http.StatusOK, read.code, read.raw)
	readAt := message(t, read)["readAt"]
	require.NotNil(t, readAt)
	again := call(t, h, http.MethodPost, "/messages/"+id+"/read", bob, nil)
	assert.Equal(t, readAt, message(t, again)["readAt"])

	unknownRecipient := call(t, h, http.MethodPost, "/messages", alice, map[string]string{"toUsername": "ghost", "body": "?"})
	assert.Equal(t, http.StatusNotFound, unknownRecipient.code)

	inbox := call(t, h, http.MethodGet, "/users/bob/to", bob, nil)
	require.Equal(t, http.StatusOK, inbox.code, inbox.raw)
	received, _ := inbox.body["messages"].([]any)
	require.Len(t, received, 1)
	item, _ := received[0].(map[string]any)
	fromUser, _ := item["fromUser"].(map[string]any)
	assert.Equal(t, "alice", fromUser["username"])
	assert.Equal(t, readAt, item["readAt"])

	outbox := call(t, h, http.MethodGet, "/users/alice/from", alice, nil)
	require.Equal(t, http.StatusOK, outbox.code, outbox.raw)
	sentList, _ := outbox.body["messages"].([]any)
	require.Len(t, sentList, 1)
	outItem, _ := sentList[0].(map[string]any)
	toUser, _ := outItem["toUser"].(map[string]any)
	assert.Equal(t, "bob", toUser["username"])

	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/users/bob/to", carol, nil).code)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/users/alice/from", bob, nil).code)
}

func TestServer_Users(t *testing.T) {
	h := newTestServer(t)
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")

	list := call(t, h, http.MethodGet, "/users", bob, nil)
	require.Equal(t, http.StatusOK, list.code, list.raw)
	users, _ := list.body["users"].([]any)
	assert.Len(t, users, 2)

	profile := call(t, h, http.MethodGet, "/users/alice", alice, nil)
	require.Equal(t, http.StatusOK, profile.code, profile.raw)
	user, _ := profile.body["user"].(map[string]any)
	assert.Equal(t, "+1555alice", user["phone"])
	assert.NotEmpty(t, user["joinedAt"])
	assert.NotEmpty(t, user["lastLoginAt"])

	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/users/alice", bob, nil).code)

	// A valid token for an account that does not exist.
	ghost, err := service.NewSessionIssuer(testSecret, 0).Issue("ghost")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/users/ghost", ghost, nil).code)
}

func TestServer_RequiresToken(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/users", "/messages/x", "/users/alice/to"} {
		res := call(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.code, path)
		assert.NotEmpty(t, res.body["error"], path)
	}

	forged, err := service.NewSessionIssuer("other-secret", 0).Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/users", forged, nil).code)
}

func TestServer_Operations(t *testing.T) {
	h := newTestServer(t)

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/health", "", nil).code)

	ready := call(t, h, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, ready.code, ready.raw)
	assert.Equal(t, "ok", ready.body["status"])

	metrics := call(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, metrics.code)
}
