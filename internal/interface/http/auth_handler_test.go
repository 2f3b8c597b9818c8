package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contacthub/config"
	"contacthub/internal/application"
	"contacthub/internal/domain/entity"
	repo "contacthub/internal/domain/repository"
	handlers "contacthub/internal/interface/http"
	"contacthub/internal/router/modules"
	"contacthub/pkg/helpers"
	"contacthub/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// memUserRepo is an in-memory UserRepository for handler tests.
type memUserRepo struct {
	byID map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*entity.User{}}
}

func (m *memUserRepo) Create(u *entity.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(id string) (*entity.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) GetByVerificationToken(token string) (*entity.User, error) {
	for _, u := range m.byID {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) UpdateSessionToken(id string, token *string) error {
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.SessionToken = token
	return nil
}

func (m *memUserRepo) SetVerified(id string) error {
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Verified = true
	u.VerificationToken = nil
	return nil
}

func (m *memUserRepo) UpdateSubscription(id string, tier entity.Subscription) (*entity.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u.Subscription = tier
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) UpdateAvatarURL(id string, avatarURL string) error {
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

var _ repo.UserRepository = (*memUserRepo)(nil)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newAuthRig(t *testing.T) (*gin.Engine, *memUserRepo) {
	t.Helper()
	r := newMemUserRepo()
	logger := quietLogger()
	cfg := &config.Config{
		AppName:        "contacthub-test",
		VerifyEmailURL: "http://localhost:3000/api/users/verify",
	}
	jwt := helpers.NewJWTManager("testsecret", time.Hour)
	sessions := application.NewSessionManager(r, jwt, nil, logger)
	svc := application.NewAuthService(r, sessions, nil, "", nil, logger, cfg, nil)
	h := handlers.NewAuthHandler(svc, logger)

	engine := gin.New()
	modules.NewAuthModule(h, sessions, jwt).Register(engine.Group("/api"))
	return engine, r
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   map[string]any  `json:"error"`
}

func doJSON(engine *gin.Engine, method, path, token string, payload any) (*httptest.ResponseRecorder, envelope) {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestSignupEndpoint(t *testing.T) {
	engine, _ := newAuthRig(t)

	w, env := doJSON(engine, http.MethodPost, "/api/users/signup", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "a@x.com")
	assert.Contains(t, string(env.Data), "starter")
}

func TestSignupEndpoint_Validation(t *testing.T) {
	engine, _ := newAuthRig(t)

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"missing email", gin.H{"password": "secret1"}},
		{"bad email", gin.H{"email": "not-an-email", "password": "secret1"}},
		{"short password", gin.H{"email": "a@x.com", "password": "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(engine, http.MethodPost, "/api/users/signup", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestSignupEndpoint_DuplicateEmail(t *testing.T) {
	engine, _ := newAuthRig(t)
	payload := gin.H{"email": "a@x.com", "password": "secret1"}

	w, _ := doJSON(engine, http.MethodPost, "/api/users/signup", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(engine, http.MethodPost, "/api/users/signup", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email in use", env.Message)
}

func TestLoginEndpoint_ErrorAnswers(t *testing.T) {
	engine, r := newAuthRig(t)
	w, _ := doJSON(engine, http.MethodPost, "/api/users/signup", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// not yet verified
	w, env := doJSON(engine, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email is not verified", env.Message)

	// wrong password and unknown email answer identically
	u, err := r.GetByEmail("a@x.com")
	require.NoError(t, err)
	require.NoError(t, r.SetVerified(u.ID))

	w, env = doJSON(engine, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "a@x.com", "password": "wrongpw",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email or password is wrong", env.Message)

	w, env = doJSON(engine, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "nobody@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email or password is wrong", env.Message)
}

func TestAccountLifecycle(t *testing.T) {
	engine, r := newAuthRig(t)

	// signup
	w, _ := doJSON(engine, http.MethodPost, "/api/users/signup", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// follow the verification link from the stored token
	u, err := r.GetByEmail("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u.VerificationToken)
	w, env := doJSON(engine, http.MethodGet, "/api/users/verify/"+*u.VerificationToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Verification successful", env.Message)

	// the same link cannot be used twice
	w, env = doJSON(engine, http.MethodGet, "/api/users/verify/"+*u.VerificationToken, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", env.Message)

	// login
	w, env = doJSON(engine, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var loginData struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loginData))
	require.NotEmpty(t, loginData.Token)
	token := loginData.Token

	// current
	w, env = doJSON(engine, http.MethodGet, "/api/users/current", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "a@x.com")

	// subscription change
	w, env = doJSON(engine, http.MethodPatch, "/api/users/subscription", token, gin.H{
		"subscription": "business",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "business")

	w, _ = doJSON(engine, http.MethodPatch, "/api/users/subscription", token, gin.H{
		"subscription": "platinum",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// logout, then the token no longer works
	w, _ = doJSON(engine, http.MethodPost, "/api/users/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w, env = doJSON(engine, http.MethodGet, "/api/users/current", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized", env.Message)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	engine, _ := newAuthRig(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/users/logout"},
		{http.MethodGet, "/api/users/current"},
		{http.MethodPatch, "/api/users/subscription"},
		{http.MethodPatch, "/api/users/avatars"},
	}
	for _, rt := range routes {
		w, env := doJSON(engine, rt.method, rt.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.path)
		assert.Equal(t, "Not authorized", env.Message, rt.path)
	}
}

func TestResendVerifyEndpoint(t *testing.T) {
	engine, r := newAuthRig(t)
	w, _ := doJSON(engine, http.MethodPost, "/api/users/signup", "", gin.H{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// missing body field
	w, env := doJSON(engine, http.MethodPost, "/api/users/verify", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing required field email", env.Message)

	// unknown email
	w, env = doJSON(engine, http.MethodPost, "/api/users/verify", "", gin.H{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", env.Message)

	// resend for a pending account (delivery disabled in tests)
	w, env = doJSON(engine, http.MethodPost, "/api/users/verify", "", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Verification email sent", env.Message)

	// already verified
	u, err := r.GetByEmail("a@x.com")
	require.NoError(t, err)
	require.NoError(t, r.SetVerified(u.ID))
	w, env = doJSON(engine, http.MethodPost, "/api/users/verify", "", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Verification has already been passed", env.Message)
}
