package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mnemo/internal/logging"
)

const (
	// DefaultType is what an artifact becomes when the caller does not
	// say otherwise.
	DefaultType = "email"
	// DefaultMinResponseLen gates materialization: shorter responses are
	// conversation, not deliverables.
	DefaultMinResponseLen = 200

	// RouteCurrentContext is the only route that materializes artifacts.
	RouteCurrentContext = "current_context"
)

// Service creates artifacts: body to the object store first, then the
// metadata row pointing at it.
type Service struct {
	store  ObjectStore
	repo   *Repository
	logger logging.Logger

	// MinResponseLen tunes the materialization predicate.
	MinResponseLen int
}

func NewService(store ObjectStore, repo *Repository, logger logging.Logger) *Service {
	return &Service{
		store:          store,
		repo:           repo,
		logger:         logging.OrNop(logger),
		MinResponseLen: DefaultMinResponseLen,
	}
}

// ShouldMaterialize is the creation predicate for a finished turn.
func (s *Service) ShouldMaterialize(route, response string) bool {
	return route == RouteCurrentContext && len(strings.TrimSpace(response)) > s.MinResponseLen
}

// Create writes the body and persists the metadata row. If the metadata
// insert fails the body file is left behind; orphaned bodies are harmless
// and cheap.
func (s *Service) Create(ctx context.Context, userID, artifactType, title, body, summary string, metadata map[string]any) (*Artifact, error) {
	if artifactType == "" {
		artifactType = DefaultType
	}
	id := uuid.NewString()

	contentRef, err := s.store.Write(ctx, artifactType, id, []byte(body))
	if err != nil {
		return nil, fmt.Errorf("store artifact body: %w", err)
	}

	a := &Artifact{
		ID:         id,
		UserID:     userID,
		Type:       artifactType,
		Title:      title,
		Summary:    summary,
		ContentRef: contentRef,
		Metadata:   metadata,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("created artifact %s type=%s for %s", id, artifactType, userID)
	return a, nil
}

// Body loads an artifact's stored content.
func (s *Service) Body(ctx context.Context, a *Artifact) (string, error) {
	body, err := s.store.Read(ctx, a.ContentRef)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
