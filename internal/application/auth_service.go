package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"contacthub/config"
	"contacthub/internal/domain/entity"
	repo "contacthub/internal/domain/repository"
	"contacthub/pkg/helpers"
	"contacthub/pkg/mailer"
	tpl "contacthub/pkg/mailer/templates"
)

// Publisher is the queue side of the delivery gateway. Satisfied by
// helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuditRecorder appends an auth event. Satisfied by postgres.AuditStore.
type AuditRecorder interface {
	Record(ctx context.Context, userID, email, action, ip, userAgent string, metadata map[string]any) error
}

type AuthService struct {
	Repo      repo.UserRepository
	Sessions  *SessionManager
	GCS       *storage.Client
	GCSBucket string
	Pub       Publisher
	Logger    *logrus.Logger
	Cfg       *config.Config
	Audit     AuditRecorder
}

func NewAuthService(r repo.UserRepository, sessions *SessionManager, gcs *storage.Client, gcsBucket string, pub Publisher, logger *logrus.Logger, cfg *config.Config, audit AuditRecorder) *AuthService {
	return &AuthService{
		Repo:      r,
		Sessions:  sessions,
		GCS:       gcs,
		GCSBucket: gcsBucket,
		Pub:       pub,
		Logger:    logger,
		Cfg:       cfg,
		Audit:     audit,
	}
}

// Signup creates an unverified account. The password is hashed here and
// nowhere else. Verification mail is sent best-effort in the background:
// a delivery failure is logged, never surfaced to the caller.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	vtok, err := helpers.GenOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:             email,
		Password:          hash,
		Subscription:      entity.SubscriptionStarter,
		AvatarURL:         helpers.GravatarURL(email),
		VerificationToken: &vtok,
	}
	if err := s.Repo.Create(u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.publishVerificationEmail(ctx, u.Email, vtok); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Warn("verification email not queued")
		}
	}()

	return u, nil
}

// Login validates credentials and issues the session token. Unknown email
// and wrong password produce the same error; an unverified account is the
// only case allowed to answer differently, since a correct password already
// implies the account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Repo.GetByEmail(email)
	if err != nil || u == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}
	if !u.Verified {
		return nil, "", ErrNotVerified
	}
	token, _, err := s.Sessions.Issue(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout clears the session slot. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Sessions.Invalidate(ctx, userID)
}

// Current returns the authenticated user's record.
func (s *AuthService) Current(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateSubscription persists a new tier and returns the updated user.
func (s *AuthService) UpdateSubscription(ctx context.Context, userID string, tier entity.Subscription) (*entity.User, error) {
	if !tier.Valid() {
		return nil, ErrInvalidTier
	}
	u, err := s.Repo.UpdateSubscription(userID, tier)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.Sessions.RefreshCachedProfile(ctx, u)
	return u, nil
}

// UpdateAvatar normalizes the uploaded image to a fixed square, stores it
// under a name derived from the user id and original filename, and persists
// the resulting URL.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID string, r io.Reader, filename string) (string, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}
	data, contentType, err := helpers.NormalizeAvatar(r, filename)
	if err != nil {
		return "", ErrInvalidImage
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("avatar storage not configured")
	}
	object := helpers.AvatarObjectName(userID, filename)
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, object, contentType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdateAvatarURL(userID, url); err != nil {
		return "", err
	}
	u.AvatarURL = url
	s.Sessions.RefreshCachedProfile(ctx, u)
	return url, nil
}

// VerifyEmail consumes a verification token. The token is cleared on
// success, so a second call with it reports not-found rather than
// succeeding twice.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	u, err := s.Repo.GetByVerificationToken(token)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if err := s.Repo.SetVerified(u.ID); err != nil {
		return nil, err
	}
	u.Verified = true
	u.VerificationToken = nil
	return u, nil
}

// ResendVerification re-sends the stored token. Unlike signup, a delivery
// failure here propagates: this operation's whole job is sending the mail.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(email)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if u.Verified || u.VerificationToken == nil {
		return ErrAlreadyVerified
	}
	return s.publishVerificationEmail(ctx, u.Email, *u.VerificationToken)
}

func (s *AuthService) publishVerificationEmail(ctx context.Context, email, token string) error {
	if s.Cfg != nil && !s.Cfg.MailSendEnabled {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Info("mail sending disabled, verification email skipped")
		}
		return nil
	}
	if s.Pub == nil {
		return ErrMailUnavailable
	}
	link := s.Cfg.VerifyEmailURL + "/" + token
	job := mailer.EmailJob{
		To:       email,
		Template: tpl.VerifyEmail,
		Data: map[string]any{
			"AppName":   s.Cfg.AppName,
			"Email":     email,
			"VerifyURL": link,
		},
	}
	return s.Pub.PublishJSON(ctx, job)
}

// RecordAudit appends an auth event; failures are swallowed after logging.
func (s *AuthService) RecordAudit(ctx context.Context, userID, email, action, ip, userAgent string, metadata map[string]any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, userID, email, action, ip, userAgent, metadata); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}
