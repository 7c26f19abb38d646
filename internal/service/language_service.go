package service

import (
	"context"
	"database/sql"

	"github.com/linguaschool/admin-api/internal/models"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

type languageRepository interface {
	List(ctx context.Context) ([]models.Language, error)
	FindByID(ctx context.Context, id string) (*models.Language, error)
}

// LanguageService exposes the language catalogue.
type LanguageService struct {
	repo languageRepository
}

// NewLanguageService constructs a LanguageService.
func NewLanguageService(repo languageRepository) *LanguageService {
	return &LanguageService{repo: repo}
}

// List returns every language, sorted by name.
func (s *LanguageService) List(ctx context.Context) ([]models.Language, error) {
	languages, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list languages")
	}
	return languages, nil
}

// Get returns a language by id.
func (s *LanguageService) Get(ctx context.Context, id string) (*models.Language, error) {
	language, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "language not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load language")
	}
	return language, nil
}
