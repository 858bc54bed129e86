package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/nexus_market/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func TestCreateUserIfNotExists_Conflict(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateUserIfNotExists(ctx, &models.User{Username: "alice", Password: "one", Role: models.RoleUser}))

	err := r.CreateUserIfNotExists(ctx, &models.User{Username: "alice", Password: "two", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrUserAlreadyExist)

	n, err := r.CountUsers(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreateUserIfNotExists_ConcurrentSameName(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.CreateUserIfNotExists(ctx, &models.User{Username: "bob", Password: fmt.Sprint(i), Role: models.RoleUser})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrUserAlreadyExist)
	}
	assert.Equal(t, 1, created)

	n, err := r.CountUsers(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFindByCredentials(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.CreateUserIfNotExists(ctx, &models.User{Username: "alice", Password: "secret", Role: models.RoleUser}))

	user, err := r.FindByCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = r.FindByCredentials(ctx, "alice", "Secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.FindByCredentials(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin_SeedsOnce(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created, err := r.EnsureAdmin(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.EnsureAdmin(ctx, "admin", "changed")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := r.FindByCredentials(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestProducts_CreateListDelete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first := models.Product{Name: "Conta CPM", Price: 10, Category: models.CategoryCPM, WhatsAppNumber: "5511999999999"}
	second := models.Product{Name: "Skin pack", Price: 5.5, Category: models.CategoryMarketplace, WhatsAppNumber: "5511888888888"}
	require.NoError(t, r.CreateProduct(ctx, &first))
	require.NoError(t, r.CreateProduct(ctx, &second))
	require.NotZero(t, first.ID)
	require.Greater(t, second.ID, first.ID)

	items, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Conta CPM", items[0].Name)
	assert.Equal(t, "5511888888888", items[1].WhatsAppNumber)

	deleted, err := r.DeleteProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = r.DeleteProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	items, err = r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestListProducts_EmptyIsNotNil(t *testing.T) {
	r := newTestRepo(t)

	items, err := r.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSearchProducts_Substring(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for _, p := range []models.Product{
		{Name: "Green Car", Description: "fast", Category: models.CategoryCPM},
		{Name: "Blue car", Description: "slow", Category: models.CategoryCPM},
		{Name: "Coins", Description: "100% legit CAR coins", Category: models.CategoryMarketplace},
		{Name: "Wheels", Description: "chrome", Category: models.CategoryMarketplace},
	} {
		p := p
		require.NoError(t, r.CreateProduct(ctx, &p))
	}

	total, items, err := r.SearchProducts(ctx, "car", 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Green Car", items[0].Name)
	assert.Equal(t, "Blue car", items[1].Name)

	total, items, err = r.SearchProducts(ctx, "100%", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Coins", items[0].Name)
}
