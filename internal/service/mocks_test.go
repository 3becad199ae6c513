package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/repository"
)

// In-memory repositories for testing
type mockProductRepository struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	seq      int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[string]*domain.Product)}
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.HasPrefix(id, "p") {
		return nil, repository.ErrInvalidID
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == product.Name {
			return nil, repository.ErrProductAlreadyExists
		}
	}
	m.seq++
	product.ID = fmt.Sprintf("p%d", m.seq)
	cp := *product
	m.products[product.ID] = &cp
	return &domain.InsertResult{Acknowledged: true, InsertedID: product.ID}, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id string, changes domain.ProductChanges) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
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
	return 1, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, repository.ErrUserAlreadyExists
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("u%d", m.seq)
	cp := *user
	m.users[user.ID] = &cp
	return &domain.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, changes domain.UserChanges) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
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
	return 1, nil
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: make(map[string]time.Time)}
}

func (m *memoryRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}
