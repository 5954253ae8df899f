package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"anoa.com/survivehub/internal/entity"
	adminDto "anoa.com/survivehub/internal/modules/admin/dto"
	contentRepo "anoa.com/survivehub/internal/modules/content/repository"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	courseRepo "anoa.com/survivehub/internal/modules/course/repository"
	deadseaRepo "anoa.com/survivehub/internal/modules/deadsea/repository"
	groupRepo "anoa.com/survivehub/internal/modules/group/repository"
	notifRepo "anoa.com/survivehub/internal/modules/notification/repository"
	postRepo "anoa.com/survivehub/internal/modules/post/repository"
	searchService "anoa.com/survivehub/internal/modules/search/service"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	userService "anoa.com/survivehub/internal/modules/user/service"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSelfModeration = fmt.Errorf("admins cannot do that to their own account: %w", apperror.ErrBadRequest)

type AdminService interface {
	ListReported(ctx context.Context, p entity.Principal) ([]adminDto.ReportedItem, error)
	ListUsers(ctx context.Context, p entity.Principal) (*adminDto.UserListResponse, error)
	UpdateUser(ctx context.Context, p entity.Principal, id uuid.UUID, req adminDto.UpdateUserRequest) (*entity.User, error)
	SuspendUser(ctx context.Context, p entity.Principal, id uuid.UUID) error
	UnsuspendUser(ctx context.Context, p entity.Principal, id uuid.UUID) error
	// DeleteUser removes the account with its posts, follows, memberships and notifications.
	// Comments the user left on other content are kept.
	DeleteUser(ctx context.Context, p entity.Principal, id uuid.UUID) error
	MarkSafe(ctx context.Context, p entity.Principal, ref entity.ContentRef) error
	DeleteContent(ctx context.Context, p entity.Principal, ref entity.ContentRef) error
}

// Repositories groups the stores the admin service reads and cascades through.
type Repositories struct {
	Users         userRepo.UserRepository
	Posts         postRepo.PostRepository
	Courses       courseRepo.CourseRepository
	Deadsea       deadseaRepo.DeadseaRepository
	Content       contentRepo.ContentRepository
	Follows       socialRepo.FollowRepository
	Groups        groupRepo.GroupRepository
	Notifications notifRepo.NotificationRepository
}

type adminService struct {
	repos       Repositories
	content     contentService.ContentService
	meili       searchService.MeiliSearchService
	redisClient *redis.Client
	log         *zap.SugaredLogger
}

func NewAdminService(
	repos Repositories,
	content contentService.ContentService,
	meili searchService.MeiliSearchService,
	redisClient *redis.Client,
	log *zap.SugaredLogger,
) AdminService {
	return &adminService{
		repos:       repos,
		content:     content,
		meili:       meili,
		redisClient: redisClient,
		log:         log,
	}
}

func requireAdmin(p entity.Principal) error {
	if !p.IsAdmin() {
		return fmt.Errorf("admin only: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *adminService) ListReported(ctx context.Context, p entity.Principal) ([]adminDto.ReportedItem, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	var items []adminDto.ReportedItem
	add := func(c entity.Content, createdAt time.Time) error {
		ref := c.Ref()
		n, err := s.repos.Content.CountReports(ctx, ref)
		if err != nil {
			return err
		}
		items = append(items, adminDto.ReportedItem{
			Kind:      ref.Kind,
			ID:        ref.ID,
			AuthorID:  c.OwnerID(),
			Reporters: n,
			CreatedAt: createdAt,
			Content:   c,
		})
		return nil
	}

	posts, err := s.repos.Posts.ListReported(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if err := add(&posts[i], posts[i].CreatedAt); err != nil {
			return nil, err
		}
	}

	modules, err := s.repos.Courses.ListReportedModules(ctx)
	if err != nil {
		return nil, err
	}
	for i := range modules {
		if err := add(&modules[i], modules[i].CreatedAt); err != nil {
			return nil, err
		}
	}

	updates, err := s.repos.Deadsea.ListReported(ctx)
	if err != nil {
		return nil, err
	}
	for i := range updates {
		if err := add(&updates[i], updates[i].CreatedAt); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if items == nil {
		items = []adminDto.ReportedItem{}
	}
	return items, nil
}

func (s *adminService) ListUsers(ctx context.Context, p entity.Principal) (*adminDto.UserListResponse, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	users, err := s.repos.Users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	res := &adminDto.UserListResponse{
		Active:    []entity.User{},
		Suspended: []entity.User{},
	}
	for _, u := range users {
		if u.Suspended {
			res.Suspended = append(res.Suspended, u)
		} else {
			res.Active = append(res.Active, u)
		}
	}
	return res, nil
}

func (s *adminService) find(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userService.ErrUserNotFound
	}
	return user, err
}

func (s *adminService) UpdateUser(ctx context.Context, p entity.Principal, id uuid.UUID, req adminDto.UpdateUserRequest) (*entity.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != "" {
		if req.Role != entity.RoleAdmin && req.Role != entity.RoleMember {
			return nil, fmt.Errorf("unknown role %q: %w", req.Role, apperror.ErrInvalidInput)
		}
		if id == p.UserID && req.Role != entity.RoleAdmin {
			return nil, ErrSelfModeration
		}
		user.Role = req.Role
	}
	if name := sanitize.Plain(req.Name); name != "" {
		user.Name = name
	}
	if username := sanitize.Plain(req.Username); username != "" {
		user.Username = username
	}

	if err := s.repos.Users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, userService.ErrUsernameTaken
		}
		return nil, err
	}

	s.reindex(user)
	s.log.Infow("user updated by admin", "user_id", id, "by", p.UserID, "role", user.Role)
	return user, nil
}

func (s *adminService) setSuspended(ctx context.Context, p entity.Principal, id uuid.UUID, suspended bool) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if id == p.UserID {
		return ErrSelfModeration
	}

	fields := map[string]interface{}{"suspended": suspended}
	if suspended {
		fields["online"] = false
	}
	if err := s.repos.Users.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userService.ErrUserNotFound
		}
		return err
	}

	if suspended && s.redisClient != nil {
		if err := s.redisClient.SRem(ctx, userService.OnlineSetKey, id.String()).Err(); err != nil {
			s.log.Warnw("failed to drop suspended user from online set", "user_id", id, "error", err)
		}
	}

	s.log.Infow("user suspension changed", "user_id", id, "suspended", suspended, "by", p.UserID)
	return nil
}

func (s *adminService) SuspendUser(ctx context.Context, p entity.Principal, id uuid.UUID) error {
	return s.setSuspended(ctx, p, id, true)
}

func (s *adminService) UnsuspendUser(ctx context.Context, p entity.Principal, id uuid.UUID) error {
	return s.setSuspended(ctx, p, id, false)
}

func (s *adminService) DeleteUser(ctx context.Context, p entity.Principal, id uuid.UUID) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if id == p.UserID {
		return ErrSelfModeration
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	postIDs, err := s.repos.Posts.IDsByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if err := s.content.Purge(ctx, entity.KindPost, postIDs); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if err := s.repos.Follows.DeleteAllFor(ctx, id); err != nil {
		return fmt.Errorf("delete follows: %w", err)
	}
	if err := s.repos.Groups.DeleteMembershipsFor(ctx, id); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if err := s.repos.Notifications.DeleteByRecipient(ctx, id); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	if err := s.repos.Users.Delete(ctx, id); err != nil {
		return err
	}

	if s.redisClient != nil {
		_ = s.redisClient.SRem(ctx, userService.OnlineSetKey, id.String()).Err()
	}
	if s.meili != nil {
		if err := s.meili.DeleteUser(id); err != nil {
			s.log.Warnw("failed to remove user from search index", "user_id", id, "error", err)
		}
	}

	s.log.Infow("user deleted", "user_id", id, "posts", len(postIDs), "by", p.UserID)
	return nil
}

func (s *adminService) MarkSafe(ctx context.Context, p entity.Principal, ref entity.ContentRef) error {
	return s.content.MarkSafe(ctx, p, ref)
}

func (s *adminService) DeleteContent(ctx context.Context, p entity.Principal, ref entity.ContentRef) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	return s.content.Delete(ctx, p, ref)
}

func (s *adminService) reindex(user *entity.User) {
	if s.meili == nil {
		return
	}
	if err := s.meili.IndexUser(user); err != nil {
		s.log.Warnw("failed to reindex user", "user_id", user.ID, "error", err)
	}
}
