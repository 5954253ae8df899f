package service

import (
	"context"
	"errors"
	"strings"

	"anoa.com/survivehub/internal/entity"
	postService "anoa.com/survivehub/internal/modules/post/service"
	search "anoa.com/survivehub/internal/modules/search/service"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	"anoa.com/survivehub/internal/modules/user/dto"
	"anoa.com/survivehub/internal/modules/user/repository"
	commonDto "anoa.com/survivehub/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	searchLimit       = 20
	profilePostsLimit = 20
)

type DirectoryService interface {
	ListUsers(ctx context.Context, page int) (*dto.UserListResponse, error)
	SearchUsers(ctx context.Context, query string) ([]entity.User, error)
	GetProfile(ctx context.Context, username string, viewer entity.Principal) (*dto.ProfileResponse, error)
}

type directoryService struct {
	users    repository.UserRepository
	follows  socialRepo.FollowRepository
	posts    postService.PostService
	meili    search.MeiliSearchService
	pageSize int
	log      *zap.SugaredLogger
}

func NewDirectoryService(
	users repository.UserRepository,
	follows socialRepo.FollowRepository,
	posts postService.PostService,
	meili search.MeiliSearchService,
	pageSize int,
	log *zap.SugaredLogger,
) DirectoryService {
	return &directoryService{
		users:    users,
		follows:  follows,
		posts:    posts,
		meili:    meili,
		pageSize: pageSize,
		log:      log,
	}
}

func (s *directoryService) ListUsers(ctx context.Context, page int) (*dto.UserListResponse, error) {
	page, offset := commonDto.Offset(page, s.pageSize)
	users, total, err := s.users.List(ctx, s.pageSize, offset)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Email = ""
	}

	return &dto.UserListResponse{
		Data: users,
		Meta: commonDto.NewPaginationMeta(page, s.pageSize, total),
	}, nil
}

func (s *directoryService) SearchUsers(ctx context.Context, query string) ([]entity.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.User{}, nil
	}

	if s.meili != nil {
		ids, err := s.meili.SearchUsers(query, searchLimit)
		if err == nil {
			return s.inOrder(ctx, ids)
		}
		s.log.Warnw("meilisearch query failed, falling back to database", "query", query, "error", err)
	}

	users, err := s.users.SearchLike(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Email = ""
	}
	return users, nil
}

// inOrder loads users by id and keeps the ranking of ids.
func (s *directoryService) inOrder(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	found, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	users := make([]entity.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *directoryService) GetProfile(ctx context.Context, username string, viewer entity.Principal) (*dto.ProfileResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.ID != viewer.UserID && !viewer.IsAdmin() {
		user.Email = ""
	}

	followers, following, err := s.follows.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewer.UserID != user.ID {
		isFollowing, err = s.follows.IsFollowing(ctx, viewer.UserID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	posts, err := s.posts.ListUserPosts(ctx, user.ID, viewer.UserID, profilePostsLimit)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		User:           user,
		FollowerCount:  followers,
		FollowingCount: following,
		Following:      isFollowing,
		Posts:          posts,
	}, nil
}
