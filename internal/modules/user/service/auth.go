package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/survivehub/internal/entity"
	search "anoa.com/survivehub/internal/modules/search/service"
	"anoa.com/survivehub/internal/modules/user/dto"
	"anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/mail"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/token"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const OnlineSetKey = "users:online"

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	ErrUserNotFound       = fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	ErrInviteNotFound     = fmt.Errorf("no invite matches this email and key: %w", apperror.ErrNotFound)
	ErrTokenInvalid       = fmt.Errorf("token is invalid or has expired: %w", apperror.ErrNotFound)
	ErrPasswordMismatch   = fmt.Errorf("passwords do not match: %w", apperror.ErrInvalidInput)
	ErrEmailTaken         = fmt.Errorf("email is already registered: %w", apperror.ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("username is already taken: %w", apperror.ErrConflict)
)

// Options are the account settings taken from config.
type Options struct {
	JWTSecret           string
	JWTTTL              time.Duration
	ResetTokenTTL       time.Duration
	EmailChangeTokenTTL time.Duration
	PublicBaseURL       string
	UsersPageSize       int
}

type AuthService interface {
	RequestInvite(ctx context.Context, email string) error
	ApproveInvite(ctx context.Context, admin entity.Principal, email string) error
	CreateInvite(ctx context.Context, admin entity.Principal, email string) error
	ListInviteRequests(ctx context.Context, admin entity.Principal) ([]entity.AccountInvite, error)

	Register(ctx context.Context, input dto.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, p entity.Principal) error
	SetOnline(ctx context.Context, p entity.Principal, online bool) error

	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken string, input dto.ResetPasswordInput) error
	// SweepExpiredTokens clears stale reset and email-change tokens.
	SweepExpiredTokens(ctx context.Context) (int64, error)
}

type authService struct {
	users       repository.UserRepository
	invites     repository.InviteRepository
	mailer      mail.Sender
	meili       search.MeiliSearchService
	redisClient *redis.Client
	opts        Options
	log         *zap.SugaredLogger
}

func NewAuthService(
	users repository.UserRepository,
	invites repository.InviteRepository,
	mailer mail.Sender,
	meili search.MeiliSearchService,
	redisClient *redis.Client,
	opts Options,
	log *zap.SugaredLogger,
) AuthService {
	return &authService{
		users:       users,
		invites:     invites,
		mailer:      mailer,
		meili:       meili,
		redisClient: redisClient,
		opts:        opts,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func requireAdmin(p entity.Principal) error {
	if !p.IsAdmin() {
		return fmt.Errorf("admin access required: %w", apperror.ErrForbidden)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) emailInUse(ctx context.Context, email string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *authService) RequestInvite(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	taken, err := s.emailInUse(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	err = s.invites.Create(ctx, &entity.AccountInvite{Email: email, Request: true})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("an invite for this email already exists: %w", apperror.ErrConflict)
	}
	return err
}

func (s *authService) ApproveInvite(ctx context.Context, admin entity.Principal, email string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}

	invite, err := s.invites.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("invite request not found: %w", apperror.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return s.sendInvite(ctx, invite)
}

func (s *authService) CreateInvite(ctx context.Context, admin entity.Principal, email string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	email = normalizeEmail(email)

	taken, err := s.emailInUse(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	invite, err := s.invites.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		invite = &entity.AccountInvite{Email: email}
		if err := s.invites.Create(ctx, invite); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return s.sendInvite(ctx, invite)
}

func (s *authService) sendInvite(ctx context.Context, invite *entity.AccountInvite) error {
	key, err := token.Hex(20)
	if err != nil {
		return err
	}
	if err := s.invites.SetKey(ctx, invite.ID, key); err != nil {
		return err
	}

	err = s.mailer.Send(ctx, invite.Email, mail.TemplateInvite, map[string]string{
		"RegisterURL": fmt.Sprintf("%s/register?email=%s&key=%s", s.opts.PublicBaseURL, invite.Email, key),
		"Key":         key,
	})
	if err != nil {
		s.log.Warnw("invite mail failed", "email", invite.Email, "error", err)
	}
	return nil
}

func (s *authService) ListInviteRequests(ctx context.Context, admin entity.Principal) ([]entity.AccountInvite, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.invites.ListRequests(ctx)
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*entity.User, error) {
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	email := normalizeEmail(input.Email)

	invite, err := s.invites.FindByKey(ctx, email, input.Key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}

	if taken, err := s.emailInUse(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:             email,
		Username:          strings.TrimSpace(input.Username),
		Name:              sanitize.Plain(input.Name),
		PasswordHash:      hashed,
		Role:              entity.RoleMember,
		SeenNotifications: true,
		Public:            true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email or username already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	if err := s.invites.Delete(ctx, invite.ID); err != nil {
		s.log.Warnw("failed to delete used invite", "email", email, "error", err)
	}
	s.index(user)

	s.log.Infow("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// index is best-effort; search falls back to the database.
func (s *authService) index(user *entity.User) {
	if s.meili == nil {
		return
	}
	if err := s.meili.IndexUser(user); err != nil {
		s.log.Warnw("failed to index user", "user_id", user.ID, "error", err)
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Suspended {
		return nil, fmt.Errorf("this account has been suspended: %w", apperror.ErrSuspended)
	}

	signed, expiresAt, err := token.Issue(s.opts.JWTSecret, user.ID, user.Role, s.opts.JWTTTL)
	if err != nil {
		return nil, err
	}

	if err := s.setOnline(ctx, user.ID, true); err != nil {
		return nil, err
	}
	user.Online = true

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        user,
	}, nil
}

func (s *authService) Logout(ctx context.Context, p entity.Principal) error {
	return s.setOnline(ctx, p.UserID, false)
}

func (s *authService) SetOnline(ctx context.Context, p entity.Principal, online bool) error {
	return s.setOnline(ctx, p.UserID, online)
}

func (s *authService) setOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"online": online}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if s.redisClient != nil {
		var err error
		if online {
			err = s.redisClient.SAdd(ctx, OnlineSetKey, userID.String()).Err()
		} else {
			err = s.redisClient.SRem(ctx, OnlineSetKey, userID.String()).Err()
		}
		if err != nil {
			s.log.Warnw("presence update failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Unknown addresses look the same as known ones.
		return nil
	}
	if err != nil {
		return err
	}

	resetToken, err := token.Hex(20)
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.opts.ResetTokenTTL)
	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{
		"reset_password_token":   resetToken,
		"reset_password_expires": expires,
	}); err != nil {
		return err
	}

	err = s.mailer.Send(ctx, user.Email, mail.TemplatePasswordReset, map[string]string{
		"Name":     user.Name,
		"ResetURL": fmt.Sprintf("%s/reset-password/%s", s.opts.PublicBaseURL, resetToken),
	})
	if err != nil {
		s.log.Warnw("password reset mail failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, resetToken string, input dto.ResetPasswordInput) error {
	if input.Password != input.PasswordConfirm {
		return ErrPasswordMismatch
	}

	user, err := s.users.FindByResetToken(ctx, resetToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTokenInvalid
	}
	if err != nil {
		return err
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return err
	}
	return s.users.UpdateFields(ctx, user.ID, map[string]interface{}{
		"password_hash":          hashed,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	})
}

func (s *authService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	return s.users.ClearExpiredTokens(ctx, time.Now())
}
