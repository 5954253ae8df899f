package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/internal/modules/content/dto"
	contentRepo "anoa.com/survivehub/internal/modules/content/repository"
	notifDto "anoa.com/survivehub/internal/modules/notification/dto"
	notifService "anoa.com/survivehub/internal/modules/notification/service"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/metrics"
	"anoa.com/survivehub/pkg/ratelimit"
	"anoa.com/survivehub/pkg/sanitize"
	"anoa.com/survivehub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrContentNotFound = fmt.Errorf("content not found: %w", apperror.ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
	ErrEmptyText       = fmt.Errorf("text must not be empty: %w", apperror.ErrInvalidInput)
)

// ContentService implements comments, replies, likes and moderation once for every content kind.
type ContentService interface {
	AddComment(ctx context.Context, p entity.Principal, ref entity.ContentRef, text string) (*entity.Comment, error)
	AddReply(ctx context.Context, p entity.Principal, ref entity.ContentRef, commentID uuid.UUID, text string) (*entity.Reply, error)
	ToggleLike(ctx context.Context, p entity.Principal, ref entity.ContentRef) (*dto.LikeResponse, error)
	Report(ctx context.Context, p entity.Principal, ref entity.ContentRef) error
	MarkSafe(ctx context.Context, p entity.Principal, ref entity.ContentRef) error
	Delete(ctx context.Context, p entity.Principal, ref entity.ContentRef) error

	ListComments(ctx context.Context, ref entity.ContentRef) ([]entity.Comment, error)
	CountLikes(ctx context.Context, ref entity.ContentRef) (int64, error)
	LikedBy(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error)
	CountComments(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) (map[uuid.UUID]int64, error)

	// Hydrate fills the comment tree and like state of c for viewer.
	Hydrate(ctx context.Context, c entity.Content, viewer uuid.UUID) error
	// Purge deletes content without a permission check. Owners of content (courses, accounts) cascade through it.
	Purge(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) error
}

type contentService struct {
	repo     contentRepo.ContentRepository
	notifier notifService.Notifier
	limiter  *ratelimit.Limiter
	media    storage.MediaStorage
	log      *zap.SugaredLogger
}

func NewContentService(
	repo contentRepo.ContentRepository,
	notifier notifService.Notifier,
	limiter *ratelimit.Limiter,
	media storage.MediaStorage,
	log *zap.SugaredLogger,
) ContentService {
	return &contentService{
		repo:     repo,
		notifier: notifier,
		limiter:  limiter,
		media:    media,
		log:      log,
	}
}

func (s *contentService) owner(ctx context.Context, ref entity.ContentRef) (uuid.UUID, error) {
	ownerID, err := s.repo.FindOwner(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrContentNotFound
	}
	return ownerID, err
}

func (s *contentService) AddComment(ctx context.Context, p entity.Principal, ref entity.ContentRef, text string) (*entity.Comment, error) {
	text = sanitize.UGC(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	ownerID, err := s.owner(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, p.UserID, ratelimit.ScopeComment); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ContentKind: ref.Kind,
		ContentID:   ref.ID,
		AuthorID:    p.UserID,
		Text:        text,
		Replies:     []entity.Reply{},
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		_ = s.limiter.Clear(ctx, p.UserID, ratelimit.ScopeComment)
		return nil, err
	}
	metrics.ContentMutations.WithLabelValues(string(ref.Kind), "comment").Inc()

	if ref.Kind == entity.KindPost && p.UserID != ownerID {
		s.notify(ctx, notifDto.Event{
			Action:        entity.ActionCommented,
			ActorID:       p.UserID,
			Medium:        entity.MediumPost,
			MediumRef:     ref.ID,
			MediumOwnerID: ownerID,
			NotifyID:      ownerID,
		})
	}

	return comment, nil
}

func (s *contentService) AddReply(ctx context.Context, p entity.Principal, ref entity.ContentRef, commentID uuid.UUID, text string) (*entity.Reply, error) {
	text = sanitize.UGC(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	ownerID, err := s.owner(ctx, ref)
	if err != nil {
		return nil, err
	}

	comment, err := s.repo.FindComment(ctx, ref, commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, p.UserID, ratelimit.ScopeComment); err != nil {
		return nil, err
	}

	reply := &entity.Reply{
		CommentID: comment.ID,
		AuthorID:  p.UserID,
		Text:      text,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		_ = s.limiter.Clear(ctx, p.UserID, ratelimit.ScopeComment)
		return nil, err
	}
	metrics.ContentMutations.WithLabelValues(string(ref.Kind), "reply").Inc()

	if ref.Kind != entity.KindPost {
		return reply, nil
	}

	// The comment author and the post author are told separately.
	if p.UserID != ownerID && p.UserID != comment.AuthorID {
		s.notify(ctx, notifDto.Event{
			Action:        entity.ActionReplied,
			ActorID:       p.UserID,
			Medium:        entity.MediumComment,
			MediumRef:     comment.ID,
			MediumOwnerID: ownerID,
			NotifyID:      comment.AuthorID,
		})
	}
	if p.UserID != ownerID {
		s.notify(ctx, notifDto.Event{
			Action:        entity.ActionCommented,
			ActorID:       p.UserID,
			Medium:        entity.MediumPost,
			MediumRef:     ref.ID,
			MediumOwnerID: ownerID,
			NotifyID:      ownerID,
		})
	}

	return reply, nil
}

func (s *contentService) ToggleLike(ctx context.Context, p entity.Principal, ref entity.ContentRef) (*dto.LikeResponse, error) {
	ownerID, err := s.owner(ctx, ref)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveLike(ctx, ref, p.UserID)
	if err != nil {
		return nil, err
	}

	liked := !removed
	if liked {
		added, err := s.repo.AddLike(ctx, ref, p.UserID)
		if err != nil {
			return nil, err
		}

		// A concurrent toggle may have inserted the row first; only the inserting call notifies.
		if added && ref.Kind == entity.KindPost && p.UserID != ownerID {
			s.notify(ctx, notifDto.Event{
				Action:        entity.ActionLiked,
				ActorID:       p.UserID,
				Medium:        entity.MediumPost,
				MediumRef:     ref.ID,
				MediumOwnerID: ownerID,
				NotifyID:      ownerID,
			})
		}
		metrics.ContentMutations.WithLabelValues(string(ref.Kind), "like").Inc()
	} else {
		metrics.ContentMutations.WithLabelValues(string(ref.Kind), "unlike").Inc()
	}

	total, err := s.repo.CountLikes(ctx, ref)
	if err != nil {
		return nil, err
	}

	return &dto.LikeResponse{Liked: liked, TotalLikes: total}, nil
}

func (s *contentService) Report(ctx context.Context, p entity.Principal, ref entity.ContentRef) error {
	if _, err := s.owner(ctx, ref); err != nil {
		return err
	}

	added, err := s.repo.AddReport(ctx, ref, p.UserID)
	if err != nil {
		return err
	}
	if added {
		metrics.ContentMutations.WithLabelValues(string(ref.Kind), "report").Inc()
	}
	return nil
}

func (s *contentService) MarkSafe(ctx context.Context, p entity.Principal, ref entity.ContentRef) error {
	if !p.IsAdmin() {
		return fmt.Errorf("only admins can mark content safe: %w", apperror.ErrForbidden)
	}
	if _, err := s.owner(ctx, ref); err != nil {
		return err
	}

	if err := s.repo.ClearReports(ctx, ref); err != nil {
		return err
	}
	metrics.ContentMutations.WithLabelValues(string(ref.Kind), "mark_safe").Inc()
	return nil
}

func (s *contentService) Delete(ctx context.Context, p entity.Principal, ref entity.ContentRef) error {
	ownerID, err := s.owner(ctx, ref)
	if err != nil {
		return err
	}
	if !p.CanModify(ownerID) {
		return fmt.Errorf("only the author or an admin can delete this %s: %w", ref.Kind, apperror.ErrForbidden)
	}

	_, deleted, err := s.purge(ctx, ref.Kind, []uuid.UUID{ref.ID})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (s *contentService) Purge(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) error {
	_, _, err := s.purge(ctx, kind, ids)
	return err
}

func (s *contentService) purge(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) ([]string, int64, error) {
	mediaIDs, deleted, err := s.repo.DeleteMany(ctx, kind, ids)
	if err != nil {
		return nil, 0, err
	}
	metrics.ContentMutations.WithLabelValues(string(kind), "delete").Add(float64(deleted))

	resourceType := storage.ResourceImage
	if kind == entity.KindModule {
		resourceType = storage.ResourceVideo
	}
	for _, id := range mediaIDs {
		s.deleteMedia(ctx, id, resourceType)
	}
	return mediaIDs, deleted, nil
}

// deleteMedia is best-effort: stale media may remain and only a warning is logged.
func (s *contentService) deleteMedia(ctx context.Context, publicID, resourceType string) {
	if s.media == nil || publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID, resourceType); err != nil {
		s.log.Warnw("media delete failed", "public_id", publicID, "error", err)
	}
}

func (s *contentService) notify(ctx context.Context, ev notifDto.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.log.Warnw("notification failed", "action", ev.Action, "notify_id", ev.NotifyID, "error", err)
	}
}

func (s *contentService) ListComments(ctx context.Context, ref entity.ContentRef) ([]entity.Comment, error) {
	return s.repo.ListComments(ctx, ref)
}

func (s *contentService) CountLikes(ctx context.Context, ref entity.ContentRef) (int64, error) {
	return s.repo.CountLikes(ctx, ref)
}

func (s *contentService) LikedBy(ctx context.Context, ref entity.ContentRef, userID uuid.UUID) (bool, error) {
	return s.repo.HasLiked(ctx, ref, userID)
}

func (s *contentService) CountComments(ctx context.Context, kind entity.ContentKind, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.repo.CountComments(ctx, kind, ids)
}

func (s *contentService) Hydrate(ctx context.Context, c entity.Content, viewer uuid.UUID) error {
	ref := c.Ref()
	thread := c.Thread()

	comments, err := s.repo.ListComments(ctx, ref)
	if err != nil {
		return err
	}
	thread.Comments = comments

	if thread.LikeCount, err = s.repo.CountLikes(ctx, ref); err != nil {
		return err
	}
	if viewer != uuid.Nil {
		if thread.LikedByViewer, err = s.repo.HasLiked(ctx, ref, viewer); err != nil {
			return err
		}
	}
	return nil
}
