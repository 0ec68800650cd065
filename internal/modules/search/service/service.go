package service

import (
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

const postsIndex = "posts"

// SearchService mirrors approved posts into Meilisearch so the frontend can
// search them. A nil service disables indexing everywhere.
type SearchService interface {
	IndexPost(post *entity.Post) error
	DeletePost(id string) error
}

type meiliPostDoc struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Tag           string `json:"tag"`
	AwardedPoints int    `json:"awarded_points"`
	DecidedAt     int64  `json:"decided_at"`
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterable := []any{"tag", "user_id"}
	if _, err := s.client.Index(postsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Warn().Err(err).Msg("failed to update posts filterable attributes")
	}

	sortable := []string{"decided_at", "awarded_points"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Warn().Err(err).Msg("failed to update posts sortable attributes")
	}
}

func (s *searchService) IndexPost(post *entity.Post) error {
	doc := meiliPostDoc{
		ID:            post.ID.String(),
		UserID:        post.UserID.String(),
		Title:         s.sanitizer.Sanitize(post.Title),
		Content:       s.sanitizer.Sanitize(post.Content),
		Tag:           post.Tag,
		AwardedPoints: post.AwardedPoints,
	}
	if post.DecidedAt != nil {
		doc.DecidedAt = post.DecidedAt.Unix()
	}

	_, err := s.client.Index(postsIndex).AddDocuments([]meiliPostDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeletePost(id string) error {
	_, err := s.client.Index(postsIndex).DeleteDocument(id)
	return err
}

func strPtr(s string) *string {
	return &s
}
