package repositories_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"gudang/internal/database"
	"gudang/internal/models"
	"gudang/internal/query"
	"gudang/internal/repositories"

	"github.com/apex/log"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func str(s string) *string { return &s }
func num(i int) *int       { return &i }
func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// itemRepositories returns a fresh instance of every ItemRepository implementation.
func itemRepositories(t *testing.T) map[string]repositories.ItemRepository {
	testDB := filepath.Join(t.TempDir(), fmt.Sprintf("gudang_ut_%s.db", ulid.Make().String()))
	log.WithField("db", testDB).Debug("Test database")

	db, err := database.NewConnection(database.GetSqliteDialector(testDB), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return map[string]repositories.ItemRepository{
		"memory": repositories.NewMemoryItemRepository(),
		"gorm":   repositories.NewGORMItemRepository(db),
	}
}

func newItem(owner, name, category string, price string, stock int) *models.Item {
	return &models.Item{
		OwnerID:  owner,
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
}

func TestItemRepository_InsertAndFind(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			item := newItem("owner-a", "Fern", "Herb", "2.50", 3)
			item.Description = str("Likes shade")
			require.NoError(t, repo.Insert(ctx, item))
			assert.NotEmpty(t, item.ID)
			assert.False(t, item.CreatedAt.IsZero())
			assert.False(t, item.UpdatedAt.IsZero())

			got, err := repo.FindOne(ctx, item.ID, "owner-a")
			require.NoError(t, err)
			assert.Equal(t, "Fern", got.Name)
			assert.Equal(t, "Herb", got.Category)
			assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")), "got %s", got.Price)
			assert.Equal(t, 3, got.Stock)
			require.NotNil(t, got.Description)
			assert.Equal(t, "Likes shade", *got.Description)
			assert.Nil(t, got.ImageReference)
		})
	}
}

func TestItemRepository_OwnerScope(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			item := newItem("owner-a", "Fern", "Herb", "1", 1)
			require.NoError(t, repo.Insert(ctx, item))

			_, err := repo.FindOne(ctx, item.ID, "owner-b")
			assert.ErrorIs(t, err, repositories.ErrItemNotFound)

			_, err = repo.Replace(ctx, item.ID, "owner-b", models.ItemPatch{Name: str("Mine now")})
			assert.ErrorIs(t, err, repositories.ErrItemNotFound)

			assert.ErrorIs(t, repo.Remove(ctx, item.ID, "owner-b"), repositories.ErrItemNotFound)

			items, err := repo.FindByOwner(ctx, "owner-b", query.Filter{})
			require.NoError(t, err)
			assert.Empty(t, items)

			got, err := repo.FindOne(ctx, item.ID, "owner-a")
			require.NoError(t, err)
			assert.Equal(t, "Fern", got.Name)

			_, err = repo.FindOne(ctx, "no-such-id", "owner-a")
			assert.ErrorIs(t, err, repositories.ErrItemNotFound)
		})
	}
}

func TestItemRepository_FindByOwnerFilters(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, item := range []*models.Item{
				newItem("owner-a", "Fern", "Herb", "1", 1),
				newItem("owner-a", "fernando", "Herb", "1", 1),
				newItem("owner-a", "Rose", "Flower", "1", 1),
				newItem("owner-a", "Lily", "flower", "1", 1),
				newItem("owner-a", "100% Cotton_Grass", "Grass", "1", 1),
				newItem("owner-b", "Fern", "Herb", "1", 1),
			} {
				require.NoError(t, repo.Insert(ctx, item))
			}

			names := func(f query.Filter) []string {
				items, err := repo.FindByOwner(ctx, "owner-a", f)
				require.NoError(t, err)
				out := []string{}
				for _, item := range items {
					out = append(out, item.Name)
				}
				return out
			}

			assert.ElementsMatch(t, []string{"Fern", "fernando"}, names(query.NewFilter("fern", "")))
			assert.ElementsMatch(t, []string{"Fern", "fernando"}, names(query.NewFilter("FERN", "Herb")))
			assert.Equal(t, []string{"Rose"}, names(query.NewFilter("", "Flower")))
			assert.Equal(t, []string{"Lily"}, names(query.NewFilter("", "flower")))
			assert.Empty(t, names(query.NewFilter("rose", "flower")))
			assert.Equal(t, []string{"100% Cotton_Grass"}, names(query.NewFilter("0% cotton_", "")))
			assert.Empty(t, names(query.NewFilter("1_0", "")))
			assert.Len(t, names(query.Filter{}), 5)
		})
	}
}

func TestItemRepository_FindByOwnerNonASCIITerm(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, item := range []*models.Item{
				newItem("owner-a", "Éclair", "Pastry", "1", 1),
				newItem("owner-a", "éclair au chocolat", "Pastry", "1", 1),
				newItem("owner-a", "Eclipse", "Pastry", "1", 1),
			} {
				require.NoError(t, repo.Insert(ctx, item))
			}

			found := func(term string) []string {
				items, err := repo.FindByOwner(ctx, "owner-a", query.NewFilter(term, ""))
				require.NoError(t, err)
				out := []string{}
				for _, item := range items {
					out = append(out, item.Name)
				}
				return out
			}

			assert.Equal(t, []string{"Éclair"}, found("É"))
			assert.Equal(t, []string{"Éclair"}, found("ÉCL"))
			assert.Equal(t, []string{"éclair au chocolat"}, found("é"))
			assert.ElementsMatch(t, []string{"Éclair", "éclair au chocolat", "Eclipse"}, found("CL"))
		})
	}
}

func TestItemRepository_ConcurrentDisjointReplaces(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			item := newItem("owner-a", "Fern", "Herb", "3", 2)
			require.NoError(t, repo.Insert(ctx, item))

			patches := []models.ItemPatch{
				{Name: str("Boston Fern")},
				{Description: str("Likes shade")},
				{Category: str("Houseplant")},
				{Price: price("7.25")},
				{Stock: num(40)},
				{ImageReference: str("https://img.example/fern.png")},
			}

			var wg sync.WaitGroup
			errs := make(chan error, len(patches))
			for _, patch := range patches {
				wg.Add(1)
				go func(patch models.ItemPatch) {
					defer wg.Done()
					_, err := repo.Replace(ctx, item.ID, "owner-a", patch)
					errs <- err
				}(patch)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			got, err := repo.FindOne(ctx, item.ID, "owner-a")
			require.NoError(t, err)
			assert.Equal(t, "Boston Fern", got.Name)
			require.NotNil(t, got.Description)
			assert.Equal(t, "Likes shade", *got.Description)
			assert.Equal(t, "Houseplant", got.Category)
			assert.True(t, got.Price.Equal(decimal.RequireFromString("7.25")))
			assert.Equal(t, 40, got.Stock)
			require.NotNil(t, got.ImageReference)
			assert.Equal(t, "https://img.example/fern.png", *got.ImageReference)
		})
	}
}

func TestItemRepository_ReplaceMergesFields(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			item := newItem("owner-a", "Fern", "Herb", "3", 2)
			item.Description = str("Likes shade")
			item.ImageReference = str("https://img.example/fern.png")
			require.NoError(t, repo.Insert(ctx, item))

			// Successive patches on disjoint fields both land.
			_, err := repo.Replace(ctx, item.ID, "owner-a", models.ItemPatch{Stock: num(10)})
			require.NoError(t, err)
			updated, err := repo.Replace(ctx, item.ID, "owner-a", models.ItemPatch{Name: str("Boston Fern"), ClearDescription: true})
			require.NoError(t, err)

			assert.Equal(t, "Boston Fern", updated.Name)
			assert.Equal(t, 10, updated.Stock)
			assert.Equal(t, "Herb", updated.Category)
			assert.True(t, updated.Price.Equal(decimal.NewFromInt(3)))
			assert.Nil(t, updated.Description)
			require.NotNil(t, updated.ImageReference)
			assert.Equal(t, "https://img.example/fern.png", *updated.ImageReference)
			assert.False(t, updated.UpdatedAt.Before(item.UpdatedAt))

			got, err := repo.FindOne(ctx, item.ID, "owner-a")
			require.NoError(t, err)
			assert.Equal(t, updated.Name, got.Name)
			assert.Equal(t, updated.Stock, got.Stock)
		})
	}
}

func TestItemRepository_Remove(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			item := newItem("owner-a", "Fern", "Herb", "3", 2)
			require.NoError(t, repo.Insert(ctx, item))

			require.NoError(t, repo.Remove(ctx, item.ID, "owner-a"))
			assert.ErrorIs(t, repo.Remove(ctx, item.ID, "owner-a"), repositories.ErrItemNotFound)

			_, err := repo.FindOne(ctx, item.ID, "owner-a")
			assert.ErrorIs(t, err, repositories.ErrItemNotFound)
			_, err = repo.Replace(ctx, item.ID, "owner-a", models.ItemPatch{Stock: num(1)})
			assert.ErrorIs(t, err, repositories.ErrItemNotFound)
		})
	}
}

func TestItemRepository_Categories(t *testing.T) {
	for name, repo := range itemRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, item := range []*models.Item{
				newItem("owner-a", "Fern", "Herb", "1", 1),
				newItem("owner-a", "Basil", "Herb", "1", 1),
				newItem("owner-a", "Rose", "Flower", "1", 1),
				newItem("owner-b", "Cactus", "Succulent", "1", 1),
			} {
				require.NoError(t, repo.Insert(ctx, item))
			}

			categories, err := repo.Categories(ctx, "owner-a")
			require.NoError(t, err)
			assert.Equal(t, []string{"Flower", "Herb"}, categories)

			categories, err = repo.Categories(ctx, "owner-c")
			require.NoError(t, err)
			assert.Empty(t, categories)
		})
	}
}

func TestMemoryItemRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryItemRepository()

	item := newItem("owner-a", "Fern", "Herb", "1", 1)
	item.Description = str("original")
	require.NoError(t, repo.Insert(ctx, item))

	*item.Description = "mutated by caller"
	got, err := repo.FindOne(ctx, item.ID, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, "original", *got.Description)

	got.Name = "changed"
	again, err := repo.FindOne(ctx, item.ID, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, "Fern", again.Name)
}
