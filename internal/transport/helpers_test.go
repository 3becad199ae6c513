package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryProducts struct {
	mu   sync.Mutex
	docs map[string]domain.Product
	seq  int
}

func (m *memoryProducts) List(ctx context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.docs {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

func (m *memoryProducts) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.HasPrefix(id, "p") {
		return nil, repository.ErrInvalidID
	}
	p, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (m *memoryProducts) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.docs {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *memoryProducts) Create(ctx context.Context, product *domain.Product) (*domain.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	product.ID = fmt.Sprintf("p%d", m.seq)
	m.docs[product.ID] = *product
	return &domain.InsertResult{Acknowledged: true, InsertedID: product.ID}, nil
}

func (m *memoryProducts) Update(ctx context.Context, id string, changes domain.ProductChanges) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.docs[id]
	if !ok {
		return 0, nil
	}
	if changes.Name != nil {
		p.Name = *changes.Name
	}
	if changes.Description != nil {
		p.Description = *changes.Description
	}
	if changes.Category != nil {
		p.Category = *changes.Category
	}
	if changes.Price != nil {
		p.Price = *changes.Price
	}
	if changes.LastUpdatedOn != nil {
		p.LastUpdatedOn = *changes.LastUpdatedOn
	}
	m.docs[id] = p
	return 1, nil
}

func (m *memoryProducts) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[id]
	delete(m.docs, id)
	return ok, nil
}

type memoryUsers struct {
	mu   sync.Mutex
	docs map[string]domain.User
	seq  int
}

func (m *memoryUsers) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.User{}
	for _, u := range m.docs {
		u := u
		out = append(out, &u)
	}
	return out, nil
}

func (m *memoryUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.HasPrefix(id, "u") {
		return nil, repository.ErrInvalidID
	}
	u, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.docs {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) Create(ctx context.Context, user *domain.User) (*domain.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	user.ID = fmt.Sprintf("u%d", m.seq)
	m.docs[user.ID] = *user
	return &domain.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

func (m *memoryUsers) Update(ctx context.Context, id string, changes domain.UserChanges) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.docs[id]
	if !ok {
		return 0, nil
	}
	if changes.FullName != nil {
		u.FullName = *changes.FullName
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	if changes.LastUpdated != nil {
		t := *changes.LastUpdated
		u.LastUpdated = &t
	}
	if changes.LastUpdatedBy != nil {
		u.LastUpdatedBy = *changes.LastUpdatedBy
	}
	m.docs[id] = u
	return 1, nil
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = true
	return nil
}

func (m *memoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

type testAPI struct {
	router   chi.Router
	products *memoryProducts
	users    *memoryUsers
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := zap.NewNop()
	products := &memoryProducts{docs: map[string]domain.Product{}}
	users := &memoryUsers{docs: map[string]domain.User{}}
	revocations := &memoryRevocations{revoked: map[string]bool{}}
	tokens := auth.NewTokenService("test-secret", time.Hour)

	r := chi.NewRouter()
	r.NotFound(middleware.NotFoundHandler(logger))
	NewProductHandler(service.NewProductService(products), logger).RegisterRoutes(r)
	NewUserHandler(service.NewUserService(users, tokens, revocations), logger, false).
		RegisterRoutes(r, middleware.AuthMiddleware(tokens, revocations, logger))

	return &testAPI{router: r, products: products, users: users}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func authCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorDetail {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
