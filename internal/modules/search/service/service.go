package service

import (
	"encoding/json"
	"fmt"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const usersIndex = "users"

// MeiliSearchService keeps the user directory index in Meilisearch.
type MeiliSearchService interface {
	IndexUser(user *entity.User) error
	DeleteUser(id uuid.UUID) error
	// SearchUsers returns matching user ids, best match first.
	SearchUsers(query string, limit int64) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
	log    *zap.SugaredLogger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *zap.SugaredLogger) MeiliSearchService {
	s := &meiliSearchService{
		client: client,
		log:    log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	searchable := []string{"username", "name", "location"}
	if _, err := s.client.Index(usersIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.Warnw("failed to update users searchable attributes", "error", err)
	}

	filterable := []any{"suspended"}
	if _, err := s.client.Index(usersIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warnw("failed to update users filterable attributes", "error", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(usersIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warnw("failed to update users sortable attributes", "error", err)
	}

	s.log.Infow("meilisearch indexes initialized")
}

type meiliUserDoc struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Suspended bool   `json:"suspended"`
	CreatedAt int64  `json:"created_at"`
}

func strPtr(s string) *string {
	return &s
}

func (s *meiliSearchService) IndexUser(user *entity.User) error {
	doc := meiliUserDoc{
		ID:        user.ID.String(),
		Username:  user.Username,
		Name:      sanitize.Plain(user.Name),
		Location:  sanitize.Plain(user.Location),
		Suspended: user.Suspended,
		CreatedAt: user.CreatedAt.Unix(),
	}

	task, err := s.client.Index(usersIndex).AddDocuments([]meiliUserDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debugw("indexed user", "user_id", user.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteUser(id uuid.UUID) error {
	_, err := s.client.Index(usersIndex).DeleteDocument(id.String())
	return err
}

func (s *meiliSearchService) SearchUsers(query string, limit int64) ([]uuid.UUID, error) {
	raw, err := s.client.Index(usersIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
		Filter:               "suspended = false",
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
