package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contacthub/internal/application"
	"contacthub/internal/domain/entity"
	repo "contacthub/internal/domain/repository"
	"contacthub/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// singleUserRepo serves exactly one user record.
type singleUserRepo struct {
	user *entity.User
}

func (s *singleUserRepo) Create(u *entity.User) error { return nil }

func (s *singleUserRepo) GetByID(id string) (*entity.User, error) {
	if s.user != nil && s.user.ID == id {
		cp := *s.user
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (s *singleUserRepo) GetByEmail(email string) (*entity.User, error) {
	if s.user != nil && s.user.Email == email {
		cp := *s.user
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (s *singleUserRepo) GetByVerificationToken(token string) (*entity.User, error) {
	return nil, repo.ErrNotFound
}

func (s *singleUserRepo) UpdateSessionToken(id string, token *string) error {
	if s.user == nil || s.user.ID != id {
		return repo.ErrNotFound
	}
	s.user.SessionToken = token
	return nil
}

func (s *singleUserRepo) SetVerified(id string) error { return nil }

func (s *singleUserRepo) UpdateSubscription(id string, tier entity.Subscription) (*entity.User, error) {
	return nil, repo.ErrNotFound
}

func (s *singleUserRepo) UpdateAvatarURL(id string, avatarURL string) error { return nil }

var _ repo.UserRepository = (*singleUserRepo)(nil)

func authRig(t *testing.T, ttl time.Duration) (*gin.Engine, *application.SessionManager, *entity.User) {
	t.Helper()
	u := &entity.User{ID: "user-1", Email: "a@x.com", Subscription: entity.SubscriptionStarter, Verified: true}
	sessions := application.NewSessionManager(&singleUserRepo{user: u}, helpers.NewJWTManager("testsecret", ttl), nil, nil)

	r := gin.New()
	r.GET("/protected", Auth(sessions, sessions.JWT), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString(CtxUserIDKey)})
	})
	return r, sessions, u
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestAuth_AcceptsCurrentToken(t *testing.T) {
	r, sessions, u := authRig(t, time.Hour)
	token, _, err := sessions.Issue(context.Background(), u)
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":"user-1"`)
}

func TestAuth_RejectsMalformedHeaders(t *testing.T) {
	r, _, _ := authRig(t, time.Hour)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"scheme only", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Not authorized", message(t, w))
		})
	}
}

func TestAuth_ExpiredTokenReportedDistinctly(t *testing.T) {
	r, sessions, u := authRig(t, -time.Minute)
	token, _, err := sessions.Issue(context.Background(), u)
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", message(t, w))
}

func TestAuth_StaleTokenAfterLogout(t *testing.T) {
	r, sessions, u := authRig(t, time.Hour)
	token, _, err := sessions.Issue(context.Background(), u)
	require.NoError(t, err)
	require.NoError(t, sessions.Invalidate(context.Background(), u.ID))

	// the token still verifies cryptographically, but the slot is empty
	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized", message(t, w))
}

func TestAuth_TokenSignedWithOtherSecret(t *testing.T) {
	r, _, u := authRig(t, time.Hour)
	forged, _, err := helpers.NewJWTManager("othersecret", time.Hour).GenerateSessionToken(u.ID)
	require.NoError(t, err)

	w := doGet(r, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized", message(t, w))
}
