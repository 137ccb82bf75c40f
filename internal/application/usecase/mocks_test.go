package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
)

// MockItemRepository repositorio de items con testify/mock.
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *entity.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *entity.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepository) List(ctx context.Context, q inventory.ItemQuery) ([]*entity.Item, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Item), args.Error(1)
}

func (m *MockItemRepository) Count(ctx context.Context, f inventory.ItemFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

// MockCategoryRepository repositorio de categorías con testify/mock.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, limit, offset int) ([]*entity.Category, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockTagRepository repositorio de tags con testify/mock.
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) Create(ctx context.Context, t *entity.Tag) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTagRepository) GetByName(ctx context.Context, name string) (*entity.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Tag), args.Error(1)
}

func (m *MockTagRepository) List(ctx context.Context, limit, offset int) ([]*entity.Tag, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Tag), args.Error(1)
}

func (m *MockTagRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockTagRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockListCache caché de listados con testify/mock.
type MockListCache struct {
	mock.Mock
}

func (m *MockListCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockListCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockListCache) DeletePrefix(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

// fakeTxRunner ejecuta fn con los mismos mocks, sin transacción real.
type fakeTxRunner struct {
	items      repository.ItemRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
}

func (f fakeTxRunner) Run(_ context.Context, fn func(repository.ItemRepository, repository.CategoryRepository, repository.TagRepository) error) error {
	return fn(f.items, f.categories, f.tags)
}

// fakeInvalidator cuenta invalidaciones.
type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) InvalidateListCache(context.Context) { f.calls++ }
