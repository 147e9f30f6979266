package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/internal/repositories"

	"github.com/rs/zerolog"
)

const menuCacheKey = "menu:all"

type MenuService struct {
	menuRepo repositories.MenuRepository
	cache    Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewMenuService(menuRepo repositories.MenuRepository, cache Cache, cacheTTL time.Duration, log zerolog.Logger) *MenuService {
	return &MenuService{
		menuRepo: menuRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// List returns the menu in id order. The unfiltered menu is served from the
// cache; filtered queries go to the repository.
func (s *MenuService) List(ctx context.Context, filter repositories.MenuFilter) ([]models.MenuItem, error) {
	if isUnfiltered(filter) {
		return s.all(ctx)
	}
	return s.menuRepo.List(ctx, filter)
}

func isUnfiltered(f repositories.MenuFilter) bool {
	category := strings.TrimSpace(f.Category)
	return strings.TrimSpace(f.Search) == "" &&
		!f.AvailableOnly &&
		(category == "" || strings.EqualFold(category, "All"))
}

func (s *MenuService) all(ctx context.Context) ([]models.MenuItem, error) {
	var cached []models.MenuItem
	if err := s.cache.Get(ctx, menuCacheKey, &cached); err == nil {
		return cached, nil
	}

	items, err := s.menuRepo.List(ctx, repositories.MenuFilter{})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, menuCacheKey, items, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("caching menu")
	}
	return items, nil
}

// Get looks an item up by its string id. Ids that are not positive integers
// are reported as ErrItemNotFound.
func (s *MenuService) Get(ctx context.Context, itemID string) (*models.MenuItem, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(itemID), 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrItemNotFound
	}

	item, err := s.menuRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuService) Categories(ctx context.Context) ([]string, error) {
	return s.menuRepo.Categories(ctx)
}

// menuFileItem is one entry of the menu seed file.
type menuFileItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Available   *bool   `json:"is_available"`
}

// SeedFromFile upserts every item of a menu JSON file and drops the cached
// menu. It returns the number of items written.
func (s *MenuService) SeedFromFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading menu file: %w", err)
	}

	var entries []menuFileItem
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("parsing menu file %s: %w", path, err)
	}

	seen := make(map[int64]bool, len(entries))
	for i, e := range entries {
		switch {
		case e.ID <= 0:
			return 0, fmt.Errorf("menu entry %d: id must be positive", i)
		case seen[e.ID]:
			return 0, fmt.Errorf("menu entry %d: duplicate id %d", i, e.ID)
		case strings.TrimSpace(e.Name) == "":
			return 0, fmt.Errorf("menu entry %d: name is required", i)
		case e.Price < 0:
			return 0, fmt.Errorf("menu entry %d: price cannot be negative", i)
		}
		seen[e.ID] = true
	}

	for _, e := range entries {
		available := true
		if e.Available != nil {
			available = *e.Available
		}
		item := &models.MenuItem{
			ID:          e.ID,
			Name:        strings.TrimSpace(e.Name),
			Price:       e.Price,
			Description: e.Description,
			Category:    e.Category,
			Image:       e.Image,
			IsAvailable: available,
		}
		if err := s.menuRepo.Upsert(ctx, item); err != nil {
			return 0, fmt.Errorf("saving menu item %d: %w", e.ID, err)
		}
	}

	if err := s.cache.Delete(ctx, menuCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("invalidating menu cache")
	}

	s.log.Info().Int("items", len(entries)).Str("file", path).Msg("menu seeded")
	return len(entries), nil
}
