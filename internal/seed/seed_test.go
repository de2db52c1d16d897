package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/graylock-sec/graylock/internal/models"
)

const sampleSeed = `
categories:
  - name: Hardware
    slug: hardware
    description: Physical security tooling
products:
  - name: YubiKey 5C
    slug: yubikey-5c
    price: 55
    stock: 20
    category_slug: hardware
  - name: Faraday Bag
    slug: faraday-bag
    price: 25.5
    stock: 40
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApply(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Apply(db, writeSeed(t, sampleSeed), zerolog.Nop()))

	var cat models.Category
	require.NoError(t, db.First(&cat, "slug = ?", "hardware").Error)
	assert.Equal(t, "Hardware", cat.Name)

	var prod models.Product
	require.NoError(t, db.First(&prod, "slug = ?", "yubikey-5c").Error)
	assert.Equal(t, 55.0, prod.Price)
	assert.Equal(t, cat.ID, prod.CategoryID)
}

func TestApply_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	path := writeSeed(t, sampleSeed)

	require.NoError(t, Apply(db, path, zerolog.Nop()))
	require.NoError(t, Apply(db, path, zerolog.Nop()))

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestApply_UpdatesExistingRows(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Apply(db, writeSeed(t, sampleSeed), zerolog.Nop()))

	updated := `
products:
  - name: YubiKey 5C NFC
    slug: yubikey-5c
    price: 60
    stock: 10
`
	require.NoError(t, Apply(db, writeSeed(t, updated), zerolog.Nop()))

	var prod models.Product
	require.NoError(t, db.First(&prod, "slug = ?", "yubikey-5c").Error)
	assert.Equal(t, "YubiKey 5C NFC", prod.Name)
	assert.Equal(t, 60.0, prod.Price)
}

func TestApply_RejectsInvalidFixtures(t *testing.T) {
	db := newTestDB(t)

	assert.Error(t, Apply(db, writeSeed(t, "products:\n  - slug: no-name\n    price: 5\n"), zerolog.Nop()))
	assert.Error(t, Apply(db, writeSeed(t, "products:\n  - name: Free\n    slug: free\n    price: 0\n"), zerolog.Nop()))
	assert.Error(t, Apply(db, writeSeed(t, "not: [valid"), zerolog.Nop()))
	assert.Error(t, Apply(db, filepath.Join(t.TempDir(), "missing.yaml"), zerolog.Nop()))
}
