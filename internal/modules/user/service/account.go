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
	commonDto "anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/mail"
	"anoa.com/survivehub/pkg/media"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/storage"
	"anoa.com/survivehub/pkg/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountService interface {
	ChangePassword(ctx context.Context, p entity.Principal, input dto.ChangePasswordInput) error
	UpdateProfile(ctx context.Context, p entity.Principal, input dto.UpdateProfileInput) (*entity.User, error)
	ConfirmEmailChange(ctx context.Context, changeToken string) (*entity.User, error)
	UpdateAvatar(ctx context.Context, p entity.Principal, file *commonDto.FileUpload) (*entity.User, error)
	UpdateCover(ctx context.Context, p entity.Principal, file *commonDto.FileUpload) (*entity.User, error)
}

type accountService struct {
	users  repository.UserRepository
	mailer mail.Sender
	meili  search.MeiliSearchService
	media  storage.MediaStorage
	opts   Options
	log    *zap.SugaredLogger
}

func NewAccountService(
	users repository.UserRepository,
	mailer mail.Sender,
	meili search.MeiliSearchService,
	mediaStore storage.MediaStorage,
	opts Options,
	log *zap.SugaredLogger,
) AccountService {
	return &accountService{
		users:  users,
		mailer: mailer,
		meili:  meili,
		media:  mediaStore,
		opts:   opts,
		log:    log,
	}
}

func (s *accountService) me(ctx context.Context, p entity.Principal) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *accountService) ChangePassword(ctx context.Context, p entity.Principal, input dto.ChangePasswordInput) error {
	if input.Password != input.PasswordConfirm {
		return ErrPasswordMismatch
	}

	user, err := s.me(ctx, p)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", apperror.ErrInvalidInput)
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return err
	}
	return s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"password_hash": hashed})
}

func (s *accountService) UpdateProfile(ctx context.Context, p entity.Principal, input dto.UpdateProfileInput) (*entity.User, error) {
	user, err := s.me(ctx, p)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if username != user.Username {
		other, err := s.users.FindByUsername(ctx, username)
		if err == nil && other.ID != user.ID {
			return nil, ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	user.Name = sanitize.Plain(input.Name)
	user.Username = username
	user.Bio = sanitize.UGC(input.Bio)
	user.Location = sanitize.Plain(input.Location)
	user.Website = strings.TrimSpace(input.Website)
	user.Public = input.Public

	email := normalizeEmail(input.Email)
	emailChanged := email != user.Email
	var changeToken string
	if emailChanged {
		if _, err := s.users.FindByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		changeToken, err = token.Hex(20)
		if err != nil {
			return nil, err
		}
		expires := time.Now().Add(s.opts.EmailChangeTokenTTL)
		user.PendingEmail = email
		user.EmailChangeToken = &changeToken
		user.EmailChangeExpires = &expires
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if emailChanged {
		err := s.mailer.Send(ctx, email, mail.TemplateEmailChange, map[string]string{
			"Name":       user.Name,
			"ConfirmURL": fmt.Sprintf("%s/email-change/%s", s.opts.PublicBaseURL, changeToken),
		})
		if err != nil {
			s.log.Warnw("email change mail failed", "user_id", user.ID, "error", err)
		}
	}

	s.reindex(user)
	return user, nil
}

func (s *accountService) reindex(user *entity.User) {
	if s.meili == nil {
		return
	}
	if err := s.meili.IndexUser(user); err != nil {
		s.log.Warnw("failed to re-index user", "user_id", user.ID, "error", err)
	}
}

func (s *accountService) ConfirmEmailChange(ctx context.Context, changeToken string) (*entity.User, error) {
	user, err := s.users.FindByEmailChangeToken(ctx, changeToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}

	if other, err := s.users.FindByEmail(ctx, user.PendingEmail); err == nil && other.ID != user.ID {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user.Email = user.PendingEmail
	user.PendingEmail = ""
	user.EmailChangeToken = nil
	user.EmailChangeExpires = nil
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) UpdateAvatar(ctx context.Context, p entity.Principal, file *commonDto.FileUpload) (*entity.User, error) {
	return s.replaceImage(ctx, p, file, "avatars", media.Avatar, func(u *entity.User) string {
		return u.AvatarID
	}, func(u *entity.User, url, id string) {
		u.AvatarURL = &url
		u.AvatarID = id
	})
}

func (s *accountService) UpdateCover(ctx context.Context, p entity.Principal, file *commonDto.FileUpload) (*entity.User, error) {
	return s.replaceImage(ctx, p, file, "covers", media.Cover, func(u *entity.User) string {
		return u.CoverID
	}, func(u *entity.User, url, id string) {
		u.CoverURL = &url
		u.CoverID = id
	})
}

// replaceImage uploads the new image before touching the row; the old asset is removed afterwards.
func (s *accountService) replaceImage(
	ctx context.Context,
	p entity.Principal,
	file *commonDto.FileUpload,
	folder string,
	size media.Size,
	current func(*entity.User) string,
	assign func(u *entity.User, url, id string),
) (*entity.User, error) {
	if file == nil {
		return nil, fmt.Errorf("image is required: %w", apperror.ErrInvalidInput)
	}

	user, err := s.me(ctx, p)
	if err != nil {
		return nil, err
	}
	previous := current(user)

	asset, err := media.UploadImage(ctx, s.media, file, folder, size)
	if err != nil {
		return nil, err
	}

	assign(user, asset.URL, asset.PublicID)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" {
		if err := s.media.Delete(ctx, previous, storage.ResourceImage); err != nil {
			s.log.Warnw("failed to delete previous image", "user_id", user.ID, "public_id", previous, "error", err)
		}
	}
	return user, nil
}
