package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/nexus_market/internal/events"
	"github.com/Skotchmaster/nexus_market/internal/httpserver"
	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/internal/repo"
	"github.com/Skotchmaster/nexus_market/internal/service"
	"github.com/Skotchmaster/nexus_market/pkg/db"
	"github.com/Skotchmaster/nexus_market/pkg/logging"
)

type cliEnv struct {
	api   string
	state string
	repo  *repo.GormRepo
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &repo.GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(ctx))
	_, err = r.EnsureAdmin(ctx, "admin", "admin123")
	require.NoError(t, err)

	secret := []byte("cli-test-secret")
	guard, err := service.NewAdminGuard("admin123", "", secret)
	require.NoError(t, err)

	e := httpserver.New(logging.NewWithWriter(io.Discard, "error"), nil)
	httpserver.Register(e, &httpserver.Deps{
		AccountHandler: &httpserver.AccountHTTP{Svc: &service.AccountService{Repo: r, Events: events.Nop{}, JWTSecret: secret}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Guard: guard, Events: events.Nop{}}},
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &cliEnv{api: srv.URL, state: filepath.Join(t.TempDir(), "state.json"), repo: r}
}

func (env *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--api", env.api, "--state", env.state}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (env *cliEnv) seed(t *testing.T, products ...models.Product) {
	t.Helper()
	for i := range products {
		require.NoError(t, env.repo.CreateProduct(context.Background(), &products[i]))
	}
}

func TestCLI_ShoppingFlow(t *testing.T) {
	env := newCLIEnv(t)
	env.seed(t,
		models.Product{Name: "A", Price: 10, Category: models.CategoryCPM, WhatsAppNumber: "+55 11 99999-9999"},
		models.Product{Name: "B", Price: 5, Category: models.CategoryMarketplace, WhatsAppNumber: "5511888888888"},
	)

	out, _, err := env.run(t, "products", "--category", "CPM")
	require.NoError(t, err)
	assert.Contains(t, out, "A")
	assert.NotContains(t, out, "5511888888888")

	_, _, err = env.run(t, "products", "--category", "Food")
	require.Error(t, err)

	_, _, err = env.run(t, "cart", "add", "1")
	require.NoError(t, err)
	_, _, err = env.run(t, "cart", "add", "1")
	require.NoError(t, err)
	_, _, err = env.run(t, "cart", "add", "2")
	require.NoError(t, err)

	out, _, err = env.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "A (2x) - R$ 20.00")
	assert.Contains(t, out, "Total: R$ 25.00")

	out, errOut, err := env.run(t, "checkout")
	require.NoError(t, err)
	assert.Equal(t,
		"https://wa.me/5511999999999?text=Ol%C3%A1!%20Gostaria%20de%20comprar%20os%20seguintes%20itens%3A%0A%0A-%20A%20(2x)%20-%20R%24%2020.00%0A%0ATotal%3A%20R%24%2020.00\n",
		out)
	assert.Contains(t, errOut, "1 other seller")

	out, _, err = env.run(t, "checkout", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "https://wa.me/5511888888888?text=")

	_, _, err = env.run(t, "cart", "dec", "1")
	require.NoError(t, err)
	out, _, err = env.run(t, "cart", "dec", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "A (1x)")

	_, _, err = env.run(t, "cart", "inc", "7")
	require.Error(t, err)

	_, _, err = env.run(t, "cart", "rm", "1")
	require.NoError(t, err)
	_, _, err = env.run(t, "cart", "rm", "2")
	require.NoError(t, err)
	_, _, err = env.run(t, "checkout")
	require.Error(t, err)
}

func TestCLI_SessionThemeAndAdmin(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "register", "bob", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Registration successful")

	_, _, err = env.run(t, "login", "bob", "wrong")
	require.Error(t, err)

	out, _, err = env.run(t, "login", "bob", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as bob (user)")

	_, _, err = env.run(t, "admin", "add", "--name", "X")
	require.Error(t, err)

	out, _, err = env.run(t, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")
	out, _, err = env.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "bob (user)")

	_, _, err = env.run(t, "logout")
	require.NoError(t, err)
	out, _, err = env.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	_, _, err = env.run(t, "login", "admin", "admin123")
	require.NoError(t, err)
	out, _, err = env.run(t, "admin", "add", "--name", "Pizza", "--price", "12.5", "--whatsapp", "5511")
	require.NoError(t, err)
	assert.Contains(t, out, "Product added!")

	items, err := env.repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.CategoryCPM, items[0].Category)

	_, _, err = env.run(t, "logout")
	require.NoError(t, err)
	_, _, err = env.run(t, "admin", "rm", "1")
	require.Error(t, err)
	out, _, err = env.run(t, "admin", "rm", "1", "--admin-password", "admin123")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "deleted"))

	out, _, err = env.run(t, "search", "pizza")
	require.NoError(t, err)
	assert.Contains(t, out, "no products")
}
