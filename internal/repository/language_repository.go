package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/linguaschool/admin-api/internal/models"
)

// LanguageRepository reads the language reference table.
type LanguageRepository struct {
	db *sqlx.DB
}

// NewLanguageRepository constructs a LanguageRepository.
func NewLanguageRepository(db *sqlx.DB) *LanguageRepository {
	return &LanguageRepository{db: db}
}

// List returns every known language ordered by name.
func (r *LanguageRepository) List(ctx context.Context) ([]models.Language, error) {
	const query = `SELECT id, name FROM languages ORDER BY name ASC`
	var languages []models.Language
	if err := r.db.SelectContext(ctx, &languages, query); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return languages, nil
}

// FindByID fetches a language by ID.
func (r *LanguageRepository) FindByID(ctx context.Context, id string) (*models.Language, error) {
	const query = `SELECT id, name FROM languages WHERE id = $1`
	var language models.Language
	if err := r.db.GetContext(ctx, &language, query, id); err != nil {
		return nil, err
	}
	return &language, nil
}
