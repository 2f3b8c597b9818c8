package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"contacthub/internal/domain/entity"
	repo "contacthub/internal/domain/repository"
)

// ContactService implements owner-scoped contact CRUD plus full-text search
// over Elasticsearch. Index maintenance is best-effort: an indexing failure
// never fails the CRUD operation that triggered it.
type ContactService struct {
	Repo    repo.ContactRepository
	ES      *elasticsearch.Client
	ESIndex string
	Logger  *logrus.Logger
}

func NewContactService(r repo.ContactRepository, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *ContactService {
	return &ContactService{Repo: r, ES: es, ESIndex: esIndex, Logger: logger}
}

type ContactInput struct {
	Name     string
	Email    string
	Phone    string
	Favorite bool
}

func (s *ContactService) List(ctx context.Context, ownerID string, f repo.ListFilter) ([]entity.Contact, error) {
	return s.Repo.List(ownerID, f)
}

func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*entity.Contact, error) {
	c, err := s.Repo.GetByID(ownerID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Create(ctx context.Context, ownerID string, in ContactInput) (*entity.Contact, error) {
	c := &entity.Contact{
		OwnerID:  ownerID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Favorite: in.Favorite,
	}
	if err := s.Repo.Create(c); err != nil {
		return nil, err
	}
	s.indexContact(ctx, c)
	return c, nil
}

func (s *ContactService) Update(ctx context.Context, ownerID, id string, in ContactInput) (*entity.Contact, error) {
	c := &entity.Contact{
		ID:       id,
		OwnerID:  ownerID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Favorite: in.Favorite,
	}
	if err := s.Repo.Update(c); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	s.indexContact(ctx, c)
	return c, nil
}

func (s *ContactService) UpdateFavorite(ctx context.Context, ownerID, id string, favorite bool) (*entity.Contact, error) {
	c, err := s.Repo.UpdateFavorite(ownerID, id, favorite)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	s.indexContact(ctx, c)
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.Repo.Delete(ownerID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	s.removeFromIndex(ctx, id)
	return nil
}

func (s *ContactService) indexContact(ctx context.Context, c *entity.Contact) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         c.ID,
		"owner_id":   c.OwnerID,
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"favorite":   c.Favorite,
		"updated_at": c.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(esCtx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("contact_id", c.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("contact_id", c.ID).Warn("es index response error")
	}
}

func (s *ContactService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(esCtx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("contact_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match over name, email and phone, filtered to the
// caller's own contacts.
func (s *ContactService) Search(ctx context.Context, ownerID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"name^2", "email", "phone"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"owner_id": ownerID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(esCtx),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
