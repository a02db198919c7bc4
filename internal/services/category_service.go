package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"expenses/internal/cache"
	"expenses/internal/core"
	"expenses/internal/storage"
)

const categoryCacheKey = "all"

// CategoryService serves the category registry. The list is cached
// briefly since the shell re-reads it on every prompt.
type CategoryService struct {
	storage *storage.SQLiteRepository
	cache   *cache.LRUCache[[]string]
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{
		storage: storage,
		cache:   cache.NewLRUCache[[]string](1, 30*time.Second),
	}
}

// List returns all category names in alphabetical order.
func (s *CategoryService) List(ctx context.Context) ([]string, error) {
	if names, ok := s.cache.Get(categoryCacheKey); ok {
		return names, nil
	}
	names, err := s.storage.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(categoryCacheKey, names)
	return names, nil
}

// Add creates a category. Duplicates fail on the store's uniqueness
// constraint; adding is not idempotent at this level.
func (s *CategoryService) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	if err := s.storage.InsertCategory(ctx, name); err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	s.cache.Delete(categoryCacheKey)
	slog.InfoContext(ctx, "Category added", "name", name)
	return nil
}
