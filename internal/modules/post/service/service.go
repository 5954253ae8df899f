package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	contentService "anoa.com/survivehub/internal/modules/content/service"
	postDto "anoa.com/survivehub/internal/modules/post/dto"
	postRepo "anoa.com/survivehub/internal/modules/post/repository"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/media"
	"anoa.com/survivehub/pkg/ratelimit"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const FeedPageSize = 10

var ErrPostNotFound = fmt.Errorf("post not found: %w", apperror.ErrNotFound)

type PostService interface {
	CreatePost(ctx context.Context, p entity.Principal, text string, image *dto.FileUpload) (*entity.Post, error)
	GetPost(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*entity.Post, error)
	Feed(ctx context.Context, p entity.Principal, page int) (*postDto.FeedResponse, error)
	ListUserPosts(ctx context.Context, authorID uuid.UUID, viewer uuid.UUID, limit int) ([]entity.Post, error)
}

type postService struct {
	repo    postRepo.PostRepository
	follows socialRepo.FollowRepository
	content contentService.ContentService
	media   storage.MediaStorage
	limiter *ratelimit.Limiter
}

func NewPostService(
	repo postRepo.PostRepository,
	follows socialRepo.FollowRepository,
	content contentService.ContentService,
	media storage.MediaStorage,
	limiter *ratelimit.Limiter,
) PostService {
	return &postService{
		repo:    repo,
		follows: follows,
		content: content,
		media:   media,
		limiter: limiter,
	}
}

func (s *postService) CreatePost(ctx context.Context, p entity.Principal, text string, image *dto.FileUpload) (*entity.Post, error) {
	text = sanitize.UGC(text)
	if text == "" && image == nil {
		return nil, fmt.Errorf("a post needs text or an image: %w", apperror.ErrInvalidInput)
	}

	if err := s.limiter.Allow(ctx, p.UserID, ratelimit.ScopePost); err != nil {
		return nil, err
	}

	post := &entity.Post{
		AuthorID: p.UserID,
		Text:     text,
	}

	if image != nil {
		asset, err := media.UploadImage(ctx, s.media, image, "posts", media.Cover)
		if err != nil {
			_ = s.limiter.Clear(ctx, p.UserID, ratelimit.ScopePost)
			return nil, err
		}
		post.ImageURL = &asset.URL
		post.ImageID = asset.PublicID
	}

	if err := s.repo.Create(ctx, post); err != nil {
		_ = s.limiter.Clear(ctx, p.UserID, ratelimit.ScopePost)
		return nil, err
	}

	return s.repo.FindByID(ctx, post.ID)
}

func (s *postService) GetPost(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*entity.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.content.Hydrate(ctx, post, viewer); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Feed(ctx context.Context, p entity.Principal, page int) (*postDto.FeedResponse, error) {
	authors, err := s.follows.FollowingIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	authors = append(authors, p.UserID)

	page, offset := dto.Offset(page, FeedPageSize)
	posts, total, err := s.repo.Feed(ctx, authors, FeedPageSize, offset)
	if err != nil {
		return nil, err
	}

	if err := s.hydrateAll(ctx, posts, p.UserID); err != nil {
		return nil, err
	}

	return &postDto.FeedResponse{
		Data: posts,
		Meta: dto.NewPaginationMeta(page, FeedPageSize, total),
	}, nil
}

func (s *postService) ListUserPosts(ctx context.Context, authorID uuid.UUID, viewer uuid.UUID, limit int) ([]entity.Post, error) {
	posts, err := s.repo.ListByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateAll(ctx, posts, viewer); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *postService) hydrateAll(ctx context.Context, posts []entity.Post, viewer uuid.UUID) error {
	for i := range posts {
		if err := s.content.Hydrate(ctx, &posts[i], viewer); err != nil {
			return err
		}
	}
	return nil
}
