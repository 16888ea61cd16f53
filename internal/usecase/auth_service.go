package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammadowais87/client2-sub000/config"
	natsadapter "github.com/muhammadowais87/client2-sub000/internal/adapters/nats"
	repo "github.com/muhammadowais87/client2-sub000/internal/adapters/postgres"
	"github.com/muhammadowais87/client2-sub000/internal/adapters/provider"
	"github.com/muhammadowais87/client2-sub000/internal/domain"
	"github.com/muhammadowais87/client2-sub000/internal/ratelimit"
	"github.com/muhammadowais87/client2-sub000/internal/telegram"
	pkglog "github.com/muhammadowais87/client2-sub000/pkg/log"
)

type Service interface {
	Authenticate(ctx context.Context, traceID string, in AuthInput) Outcome
	Me(ctx context.Context, userID string) (*domain.UserRecord, error)
}

// AuthInput carries everything one authentication attempt needs: the signed
// payload, an optional manually supplied referral code and the network
// origin used for throttling and audit.
type AuthInput struct {
	InitData     string
	ReferralCode string
	IP           string
	UserAgent    string
}

type authService struct {
	cfg       *config.Config
	logger    pkglog.Logger
	users     repo.UserRepository
	events    repo.SecurityEventRepository
	provider  provider.Client
	referrals natsadapter.ReferralClient
	limiter   *ratelimit.Limiter
	now       func() time.Time
}

func NewAuthService(cfg *config.Config, logger pkglog.Logger, users repo.UserRepository, events repo.SecurityEventRepository, idp provider.Client, referrals natsadapter.ReferralClient, limiter *ratelimit.Limiter) Service {
	return &authService{
		cfg:       cfg,
		logger:    logger,
		users:     users,
		events:    events,
		provider:  idp,
		referrals: referrals,
		limiter:   limiter,
		now:       time.Now,
	}
}

// AuthEmail derives the deterministic pseudo-address used as the provider
// lookup key for a Telegram id. It is never a real contact channel.
func AuthEmail(telegramID int64) string {
	return fmt.Sprintf("tg_%d@telegram.local", telegramID)
}

// Authenticate runs the full handshake: rate limit, payload verification,
// suspicious-activity check, resolve-or-create with the referral gate,
// credential rotation and session issuance. Every terminal outcome except
// malformed input is audited; audit writes are best-effort and never fail
// the attempt.
func (s *authService) Authenticate(ctx context.Context, traceID string, in AuthInput) Outcome {
	if res := s.limiter.Check(in.IP); !res.Allowed {
		s.audit(ctx, domain.SecurityEvent{
			EventType: domain.EventSuspiciousActivity,
			Severity:  domain.SeverityWarning,
			IPAddress: in.IP,
			UserAgent: in.UserAgent,
			Details:   "rate limit exceeded",
		})
		return rateLimited(int(res.RetryAfter.Seconds()))
	}

	data, err := telegram.Verify(in.InitData, s.cfg.BotToken, s.cfg.InitDataMaxAge, s.now)
	if err != nil {
		s.audit(ctx, domain.SecurityEvent{
			EventType: domain.EventAuthFailed,
			Severity:  domain.SeverityWarning,
			IPAddress: in.IP,
			UserAgent: in.UserAgent,
			Details:   fmt.Sprintf("initData verification failed: %v", err),
		})
		s.logger.Warn().Str("trace_id", traceID).Str("ip", in.IP).Err(err).Msg("initData rejected")
		return unauthorized()
	}

	if s.suspicious(ctx, in.IP) {
		s.audit(ctx, domain.SecurityEvent{
			EventType: domain.EventSuspiciousActivity,
			Severity:  domain.SeverityWarning,
			AuthEmail: AuthEmail(data.User.ID),
			IPAddress: in.IP,
			UserAgent: in.UserAgent,
			Details:   "too many recent failures from this address",
		})
		return rateLimited(int(s.cfg.SuspiciousWindow.Seconds()))
	}

	authEmail := AuthEmail(data.User.ID)

	user, err := s.users.FindByTelegramID(ctx, data.User.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, credential, out := s.register(ctx, traceID, in, data, authEmail)
		if user == nil {
			return out
		}
		return s.signIn(ctx, traceID, in, user, data, credential)
	case err != nil:
		s.logger.Error().Str("trace_id", traceID).Err(err).Msg("user lookup failed")
		return internalFailure("Authentication failed")
	}

	// Returning identity: refresh the mirrored profile only. The admission
	// gate is never re-applied and referred_by_code is never rewritten.
	// A failed refresh is not fatal.
	profile := domain.Profile{
		FirstName: data.User.FirstName,
		LastName:  data.User.LastName,
		Username:  data.User.Username,
		PhotoURL:  data.User.PhotoURL,
	}
	if err := s.users.UpdateProfile(ctx, user.ID, profile); err != nil {
		s.logger.Warn().Str("trace_id", traceID).Str("user_id", user.ID).Err(err).Msg("profile refresh failed")
	}
	credential, err := generateCredential()
	if err != nil {
		return s.issueFailed(ctx, traceID, in, user, err)
	}
	if err := s.provider.SetPassword(ctx, user.ID, credential); err != nil {
		return s.issueFailed(ctx, traceID, in, user, err)
	}
	return s.signIn(ctx, traceID, in, user, data, credential)
}

// register admits a brand-new identity through the referral gate and creates
// the provider account plus the durable user record. On success it returns
// the record together with the one-time credential already set on the
// provider account; on any gate or infrastructure failure the record is nil
// and the outcome is terminal.
func (s *authService) register(ctx context.Context, traceID string, in AuthInput, data *telegram.InitData, authEmail string) (*domain.UserRecord, string, Outcome) {
	code := in.ReferralCode
	if code == "" {
		code = data.StartParam
	}
	if code == "" {
		s.audit(ctx, domain.SecurityEvent{
			EventType: domain.EventRegistrationBlocked,
			Severity:  domain.SeverityInfo,
			AuthEmail: authEmail,
			IPAddress: in.IP,
			UserAgent: in.UserAgent,
			Details:   "no referral code supplied",
		})
		return nil, "", referralRequired()
	}

	valid, err := s.referrals.ValidateCode(ctx, code)
	if err != nil {
		s.logger.Error().Str("trace_id", traceID).Err(err).Msg("referral validation unavailable")
		return nil, "", internalFailure("Authentication failed")
	}
	if !valid {
		s.audit(ctx, domain.SecurityEvent{
			EventType: domain.EventRegistrationBlocked,
			Severity:  domain.SeverityWarning,
			AuthEmail: authEmail,
			IPAddress: in.IP,
			UserAgent: in.UserAgent,
			Details:   "invalid referral code",
		})
		return nil, "", invalidReferral()
	}

	credential, err := generateCredential()
	if err != nil {
		s.logger.Error().Str("trace_id", traceID).Err(err).Msg("credential generation failed")
		return nil, "", internalFailure("Authentication failed")
	}
	meta := map[string]interface{}{
		"telegram_id": data.User.ID,
		"first_name":  data.User.FirstName,
		"username":    data.User.Username,
	}
	providerID, err := s.provider.CreateUser(ctx, authEmail, credential, meta)
	if err != nil {
		s.audit(ctx, domain.SecurityEvent{
			EventType: domain.EventLoginFailed,
			Severity:  domain.SeverityError,
			AuthEmail: authEmail,
			IPAddress: in.IP,
			UserAgent: in.UserAgent,
			Details:   "provider account creation failed",
		})
		s.logger.Error().Str("trace_id", traceID).Err(err).Msg("provider account creation failed")
		return nil, "", internalFailure("Authentication failed")
	}

	user := &domain.UserRecord{
		ID:             providerID,
		TelegramID:     data.User.ID,
		AuthEmail:      authEmail,
		FirstName:      data.User.FirstName,
		LastName:       data.User.LastName,
		Username:       data.User.Username,
		PhotoURL:       data.User.PhotoURL,
		ReferredByCode: code,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error().Str("trace_id", traceID).Err(err).Msg("user record creation failed")
		return nil, "", internalFailure("Authentication failed")
	}

	s.audit(ctx, domain.SecurityEvent{
		EventType: domain.EventRegistrationSuccess,
		Severity:  domain.SeverityInfo,
		UserID:    user.ID,
		AuthEmail: authEmail,
		IPAddress: in.IP,
		UserAgent: in.UserAgent,
		Details:   fmt.Sprintf("registered with referral code %s", code),
	})
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Int64("telegram_id", user.TelegramID).Msg("user registered")

	return user, credential, Outcome{}
}

// signIn exchanges the freshly rotated credential for a provider session.
// The credential is one-time: never stored, logged, or returned.
func (s *authService) signIn(ctx context.Context, traceID string, in AuthInput, user *domain.UserRecord, data *telegram.InitData, credential string) Outcome {
	session, err := s.provider.SignInWithPassword(ctx, user.AuthEmail, credential)
	if err != nil {
		return s.issueFailed(ctx, traceID, in, user, err)
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Str("trace_id", traceID).Str("user_id", user.ID).Err(err).Msg("last login update failed")
	}
	s.audit(ctx, domain.SecurityEvent{
		EventType: domain.EventLoginSuccess,
		Severity:  domain.SeverityInfo,
		UserID:    user.ID,
		AuthEmail: user.AuthEmail,
		IPAddress: in.IP,
		UserAgent: in.UserAgent,
	})
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Int64("telegram_id", user.TelegramID).Msg("session issued")

	return okOutcome(session, &PublicUser{
		ID:         user.ID,
		TelegramID: user.TelegramID,
		FirstName:  data.User.FirstName,
		LastName:   data.User.LastName,
		Username:   data.User.Username,
	})
}

func (s *authService) issueFailed(ctx context.Context, traceID string, in AuthInput, user *domain.UserRecord, err error) Outcome {
	s.audit(ctx, domain.SecurityEvent{
		EventType: domain.EventLoginFailed,
		Severity:  domain.SeverityError,
		UserID:    user.ID,
		AuthEmail: user.AuthEmail,
		IPAddress: in.IP,
		UserAgent: in.UserAgent,
		Details:   "session issuance failed",
	})
	s.logger.Error().Str("trace_id", traceID).Str("user_id", user.ID).Err(err).Msg("session issuance failed")
	return internalFailure("Authentication failed")
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.UserRecord, error) {
	return s.users.FindByID(ctx, userID)
}

// suspicious reports whether the address accumulated too many recent
// failures. The check itself failing never blocks authentication.
func (s *authService) suspicious(ctx context.Context, ip string) bool {
	types := []string{domain.EventAuthFailed, domain.EventRegistrationBlocked}
	count, err := s.events.CountRecentByIP(ctx, ip, types, s.now().Add(-s.cfg.SuspiciousWindow))
	if err != nil {
		s.logger.Warn().Err(err).Msg("suspicious-activity check unavailable")
		return false
	}
	return count >= int64(s.cfg.SuspiciousThreshold)
}

func (s *authService) audit(ctx context.Context, event domain.SecurityEvent) {
	event.ID = uuid.NewString()
	if err := s.events.Insert(ctx, &event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", event.EventType).Msg("security event write failed")
	}
}

// generateCredential produces the high-entropy one-time password bridging
// the verified Telegram proof into a provider session.
func generateCredential() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
