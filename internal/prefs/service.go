// Package prefs stores per-user attraction preferences: the tag set the
// frontend treats as "Favorites" when searching near the user.
package prefs

import (
	"context"
	"encoding/json"
	"time"

	"smartlocations_backend/platform/apperr"
	"smartlocations_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "prefs:attractions:"

// Document is the stored preference record. Categories tracks which curated
// category groups contributed tags, so the frontend can restore its selection.
type Document struct {
	Tags        []string  `json:"tags"`
	Categories  []string  `json:"categories,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Service reads and writes preference documents. A nil Redis client is
// allowed: reads then always return the built-in defaults and writes fail
// with an unavailable error.
type Service struct {
	client *redis.Client
	log    *logger.Logger
	now    func() time.Time
}

func NewService(client *redis.Client, log *logger.Logger) *Service {
	return &Service{client: client, log: log, now: time.Now}
}

// Get returns the user's attraction tags, falling back to the defaults on a
// missing document or any store error. Reads never fail.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) Document {
	if s.client == nil {
		return Document{Tags: defaultTags()}
	}

	payload, err := s.client.Get(ctx, keyPrefix+userID.String()).Bytes()
	if err == redis.Nil {
		return Document{Tags: defaultTags()}
	}
	if err != nil {
		if s.log != nil {
			s.log.CacheFault("prefs get", err)
		}
		return Document{Tags: defaultTags()}
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil || len(doc.Tags) == 0 {
		if err != nil && s.log != nil {
			s.log.CacheFault("prefs decode", err)
		}
		return Document{Tags: defaultTags()}
	}

	return doc
}

// Set replaces the user's attraction tags. An empty tag list resets the user
// to the built-in defaults by deleting the stored document.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, tags []string, categories []string) (Document, error) {
	const op = "prefs.Set"

	if s.client == nil {
		return Document{}, apperr.Unavailable("preference store not configured").WithOp(op)
	}

	key := keyPrefix + userID.String()

	if len(tags) == 0 {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return Document{}, apperr.Wrap(apperr.KindUnavailable, "preference store unreachable", err).WithOp(op)
		}
		return Document{Tags: defaultTags()}, nil
	}

	doc := Document{
		Tags:        tags,
		Categories:  categories,
		LastUpdated: s.now().UTC(),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return Document{}, apperr.Wrap(apperr.KindInternal, "encode preference document", err).WithOp(op)
	}

	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return Document{}, apperr.Wrap(apperr.KindUnavailable, "preference store unreachable", err).WithOp(op)
	}

	return doc, nil
}
