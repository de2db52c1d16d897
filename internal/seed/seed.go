// Package seed loads catalog fixtures from a YAML file on boot so a
// fresh install has content to show.
package seed

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/graylock-sec/graylock/internal/models"
)

// File is the top-level seed document
type File struct {
	Categories []CategorySeed `yaml:"categories"`
	Products   []ProductSeed  `yaml:"products"`
}

// CategorySeed describes one category fixture
type CategorySeed struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// ProductSeed describes one product fixture
type ProductSeed struct {
	Name         string  `yaml:"name"`
	Slug         string  `yaml:"slug"`
	Description  string  `yaml:"description"`
	Price        float64 `yaml:"price"`
	Stock        int     `yaml:"stock"`
	CategorySlug string  `yaml:"category_slug"`
}

// Apply upserts the fixtures from path into the store. Seeding is
// keyed on slug so re-running against an existing database is safe.
func Apply(db *gorm.DB, path string, log zerolog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	categoryIDs := make(map[string]string, len(f.Categories))

	for _, c := range f.Categories {
		if c.Slug == "" || c.Name == "" {
			return fmt.Errorf("seed category missing name or slug")
		}
		cat := models.Category{
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
		}).Create(&cat).Error
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Slug, err)
		}

		// Re-read to get the ID regardless of create-vs-update path
		var stored models.Category
		if err := db.Where("slug = ?", c.Slug).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to load seeded category %s: %w", c.Slug, err)
		}
		categoryIDs[c.Slug] = stored.ID
	}

	for _, p := range f.Products {
		if p.Slug == "" || p.Name == "" {
			return fmt.Errorf("seed product missing name or slug")
		}
		if p.Price <= 0 {
			return fmt.Errorf("seed product %s has non-positive price", p.Slug)
		}
		prod := models.Product{
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			CategoryID:  categoryIDs[p.CategorySlug],
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "stock", "category_id"}),
		}).Create(&prod).Error
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Slug, err)
		}
	}

	log.Info().
		Int("categories", len(f.Categories)).
		Int("products", len(f.Products)).
		Str("file", path).
		Msg("Seed data applied")

	return nil
}
