package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	groupDto "anoa.com/survivehub/internal/modules/group/dto"
	groupRepo "anoa.com/survivehub/internal/modules/group/repository"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/media"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/slug"
	"anoa.com/survivehub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound      = fmt.Errorf("group not found: %w", apperror.ErrNotFound)
	ErrDiscussionNotFound = fmt.Errorf("discussion not found: %w", apperror.ErrNotFound)
	ErrPrivateGroup       = fmt.Errorf("this group is private: %w", apperror.ErrForbidden)
	ErrNotMember          = fmt.Errorf("only members can do that: %w", apperror.ErrForbidden)
)

type GroupService interface {
	CreateGroup(ctx context.Context, p entity.Principal, req groupDto.CreateGroupRequest, image *dto.FileUpload) (*entity.Group, error)
	ListGroups(ctx context.Context, viewer entity.Principal) ([]entity.Group, error)
	GetGroup(ctx context.Context, slug string, viewer entity.Principal) (*entity.Group, error)
	JoinGroup(ctx context.Context, p entity.Principal, slug string) (bool, error)
	LeaveGroup(ctx context.Context, p entity.Principal, slug string) (bool, error)
	// AddMember lets the group author (or an admin) bring someone into a private group.
	AddMember(ctx context.Context, p entity.Principal, slug string, userID uuid.UUID) (bool, error)
	DeleteGroup(ctx context.Context, p entity.Principal, slug string) error

	CreateDiscussion(ctx context.Context, p entity.Principal, groupSlug string, req groupDto.CreateDiscussionRequest) (*entity.Discussion, error)
	GetDiscussion(ctx context.Context, id uuid.UUID, viewer entity.Principal) (*entity.Discussion, error)
	AddResponse(ctx context.Context, p entity.Principal, discussionID uuid.UUID, text string) (*entity.Response, error)
}

type groupService struct {
	repo  groupRepo.GroupRepository
	users userRepo.UserRepository
	media storage.MediaStorage
	log   *zap.SugaredLogger
}

func NewGroupService(repo groupRepo.GroupRepository, users userRepo.UserRepository, mediaStore storage.MediaStorage, log *zap.SugaredLogger) GroupService {
	return &groupService{
		repo:  repo,
		users: users,
		media: mediaStore,
		log:   log,
	}
}

func (s *groupService) find(ctx context.Context, slug string) (*entity.Group, error) {
	group, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	return group, err
}

// canView reports whether viewer may read the group. Private groups are for members and admins.
func (s *groupService) canView(ctx context.Context, group *entity.Group, viewer entity.Principal) (bool, error) {
	if !group.Private || viewer.IsAdmin() {
		return true, nil
	}
	return s.repo.IsMember(ctx, group.ID, viewer.UserID)
}

func (s *groupService) CreateGroup(ctx context.Context, p entity.Principal, req groupDto.CreateGroupRequest, image *dto.FileUpload) (*entity.Group, error) {
	group := &entity.Group{
		Name:        sanitize.Plain(req.Name),
		Description: sanitize.UGC(req.Description),
		AuthorID:    p.UserID,
		Private:     req.Private,
	}
	if group.Name == "" {
		return nil, fmt.Errorf("name is required: %w", apperror.ErrInvalidInput)
	}

	if image != nil {
		asset, err := media.UploadImage(ctx, s.media, image, "groups", media.Cover)
		if err != nil {
			return nil, err
		}
		group.ImageURL = &asset.URL
		group.ImageID = asset.PublicID
	}

	_, err := slug.Assign(group.Name, func(base string) (int64, error) {
		return s.repo.CountSlugs(ctx, base)
	}, func(candidate string) error {
		group.Slug = candidate
		return s.repo.Create(ctx, group)
	})
	if err != nil {
		s.deleteImage(ctx, group.ImageID)
		return nil, err
	}

	group.MemberCount = 1
	s.log.Infow("group created", "group_id", group.ID, "slug", group.Slug, "private", group.Private)
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, viewer entity.Principal) ([]entity.Group, error) {
	groups, err := s.repo.ListVisible(ctx, viewer.UserID, viewer.IsAdmin())
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(groups))
	for i := range groups {
		ids[i] = groups[i].ID
	}
	counts, err := s.repo.MemberCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].MemberCount = counts[groups[i].ID]
	}
	return groups, nil
}

func (s *groupService) GetGroup(ctx context.Context, slug string, viewer entity.Principal) (*entity.Group, error) {
	group, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}

	visible, err := s.canView(ctx, group, viewer)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrPrivateGroup
	}

	if group.Members, err = s.repo.Members(ctx, group.ID); err != nil {
		return nil, err
	}
	group.MemberCount = int64(len(group.Members))
	if group.Discussions, err = s.repo.ListDiscussions(ctx, group.ID); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) JoinGroup(ctx context.Context, p entity.Principal, slug string) (bool, error) {
	group, err := s.find(ctx, slug)
	if err != nil {
		return false, err
	}
	if group.Private && !p.IsAdmin() {
		return false, ErrPrivateGroup
	}

	if _, err := s.repo.AddMember(ctx, group.ID, p.UserID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *groupService) LeaveGroup(ctx context.Context, p entity.Principal, slug string) (bool, error) {
	group, err := s.find(ctx, slug)
	if err != nil {
		return false, err
	}

	if _, err := s.repo.RemoveMember(ctx, group.ID, p.UserID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *groupService) AddMember(ctx context.Context, p entity.Principal, slug string, userID uuid.UUID) (bool, error) {
	group, err := s.find(ctx, slug)
	if err != nil {
		return false, err
	}
	if !p.CanModify(group.AuthorID) {
		return false, fmt.Errorf("only the group author can add members: %w", apperror.ErrForbidden)
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return false, err
	}

	return s.repo.AddMember(ctx, group.ID, userID)
}

func (s *groupService) DeleteGroup(ctx context.Context, p entity.Principal, slug string) error {
	group, err := s.find(ctx, slug)
	if err != nil {
		return err
	}
	if !p.CanModify(group.AuthorID) {
		return fmt.Errorf("only the group author can delete it: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, group.ID); err != nil {
		return err
	}

	s.deleteImage(ctx, group.ImageID)
	s.log.Infow("group deleted", "group_id", group.ID, "by", p.UserID)
	return nil
}

func (s *groupService) CreateDiscussion(ctx context.Context, p entity.Principal, groupSlug string, req groupDto.CreateDiscussionRequest) (*entity.Discussion, error) {
	group, err := s.find(ctx, groupSlug)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.IsMember(ctx, group.ID, p.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	discussion := &entity.Discussion{
		GroupID:  group.ID,
		AuthorID: p.UserID,
		Title:    sanitize.Plain(req.Title),
		Body:     sanitize.UGC(req.Body),
	}
	if discussion.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}

	if err := s.repo.CreateDiscussion(ctx, discussion); err != nil {
		return nil, err
	}
	return discussion, nil
}

// discussion loads a discussion and checks the viewer can see its group.
func (s *groupService) discussion(ctx context.Context, id uuid.UUID, viewer entity.Principal) (*entity.Discussion, error) {
	discussion, err := s.repo.FindDiscussion(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDiscussionNotFound
	}
	if err != nil {
		return nil, err
	}

	group, err := s.repo.FindByID(ctx, discussion.GroupID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDiscussionNotFound
	}
	if err != nil {
		return nil, err
	}

	visible, err := s.canView(ctx, group, viewer)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrPrivateGroup
	}
	return discussion, nil
}

func (s *groupService) GetDiscussion(ctx context.Context, id uuid.UUID, viewer entity.Principal) (*entity.Discussion, error) {
	return s.discussion(ctx, id, viewer)
}

func (s *groupService) AddResponse(ctx context.Context, p entity.Principal, discussionID uuid.UUID, text string) (*entity.Response, error) {
	text = sanitize.UGC(text)
	if text == "" {
		return nil, fmt.Errorf("text must not be empty: %w", apperror.ErrInvalidInput)
	}

	if _, err := s.discussion(ctx, discussionID, p); err != nil {
		return nil, err
	}

	response := &entity.Response{
		DiscussionID: discussionID,
		AuthorID:     p.UserID,
		Text:         text,
	}
	if err := s.repo.AddResponse(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *groupService) deleteImage(ctx context.Context, publicID string) {
	if s.media == nil || publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID, storage.ResourceImage); err != nil {
		s.log.Warnw("group image delete failed", "public_id", publicID, "error", err)
	}
}
