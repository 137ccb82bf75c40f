package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
)

type itemFixture struct {
	items      *MockItemRepository
	categories *MockCategoryRepository
	tags       *MockTagRepository
	cache      *MockListCache
	uc         *ItemUseCase
}

func newItemFixture() *itemFixture {
	f := &itemFixture{
		items:      new(MockItemRepository),
		categories: new(MockCategoryRepository),
		tags:       new(MockTagRepository),
		cache:      new(MockListCache),
	}
	tx := fakeTxRunner{items: f.items, categories: f.categories, tags: f.tags}
	f.uc = NewItemUseCase(f.items, tx, f.cache, nil, ItemUseCaseConfig{}, nil)
	return f
}

func sampleItem(sku string) *entity.Item {
	return &entity.Item{
		ID: "id-" + sku, SKU: sku, Name: "Item " + sku, StockStatus: entity.StockStatusInStock,
		InStock: decimal.NewFromInt(3), AvailableStock: decimal.NewFromInt(1),
	}
}

func strPtr(s string) *string { return &s }

func decPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func TestItemUseCase_CacheKey(t *testing.T) {
	uc := newItemFixture().uc
	assert.Equal(t, "item_list_/items/?page=2&ordering=-name", uc.CacheKey("/items/?page=2&ordering=-name"))
}

func TestItemUseCase_List_HitDevuelveBytesGuardados(t *testing.T) {
	f := newItemFixture()
	stored := []byte(`{"count":1,"next":null,"previous":null,"results":[]}`)
	f.cache.On("Get", mock.Anything, "item_list_/items/").Return(stored, true, nil)

	res, err := f.uc.List(context.Background(), ListInput{RequestURI: "/items/"})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, stored, res.Body)
	f.items.AssertNotCalled(t, "Count", mock.Anything, mock.Anything)
	f.items.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestItemUseCase_List_MissGuardaYDevuelveLosMismosBytes(t *testing.T) {
	f := newItemFixture()
	key := "item_list_/items/?stock_status=IN"
	filter := inventory.ItemFilter{StockStatus: "IN"}
	f.cache.On("Get", mock.Anything, key).Return(nil, false, nil)
	f.items.On("Count", mock.Anything, filter).Return(1, nil)
	f.items.On("List", mock.Anything, inventory.ItemQuery{
		Filter:   filter,
		Ordering: []inventory.OrderTerm{{Field: inventory.OrderSKU}},
		Limit:    10,
		Offset:   0,
	}).Return([]*entity.Item{sampleItem("A-1")}, nil)

	var stored []byte
	f.cache.On("Set", mock.Anything, key, mock.Anything, DefaultListCacheTTL).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]byte) }).
		Return(nil)

	res, err := f.uc.List(context.Background(), ListInput{
		RequestURI: "/items/?stock_status=IN",
		Query:      dto.ItemListRequest{StockStatus: "IN"},
	})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, stored, res.Body)

	var page dto.ItemListResponse
	require.NoError(t, json.Unmarshal(res.Body, &page))
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "A-1", page.Results[0].SKU)
	f.cache.AssertExpectations(t)
}

func TestItemUseCase_List_FalloDeLecturaEsMiss(t *testing.T) {
	f := newItemFixture()
	f.cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("redis caído"))
	f.items.On("Count", mock.Anything, mock.Anything).Return(0, nil)
	f.items.On("List", mock.Anything, mock.Anything).Return([]*entity.Item{}, nil)
	f.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis caído"))

	res, err := f.uc.List(context.Background(), ListInput{RequestURI: "/items/"})
	require.NoError(t, err, "la caché no disponible no rompe el listado")
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, string(res.Body))
}

func TestItemUseCase_List_PaginaInvalidaNoSeCachea(t *testing.T) {
	f := newItemFixture()
	f.cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	f.items.On("Count", mock.Anything, mock.Anything).Return(3, nil)

	_, err := f.uc.List(context.Background(), ListInput{RequestURI: "/items/?page=9", Query: dto.ItemListRequest{Page: "9"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPage)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestItemUseCase_List_StockStatusInvalido(t *testing.T) {
	f := newItemFixture()
	f.cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)

	_, err := f.uc.List(context.Background(), ListInput{RequestURI: "/items/?stock_status=XX", Query: dto.ItemListRequest{StockStatus: "XX"}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "stock_status")
}

func TestItemUseCase_Retrieve(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "A-1").Return(sampleItem("A-1"), nil)
	f.items.On("GetBySKU", mock.Anything, "B-2").Return(nil, nil)

	out, err := f.uc.Retrieve(context.Background(), "A-1")
	require.NoError(t, err)
	assert.Equal(t, "A-1", out.SKU)

	_, err = f.uc.Retrieve(context.Background(), "B-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestItemUseCase_Create_InvalidaElListado(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "N-1").Return(nil, nil)
	f.categories.On("GetByName", mock.Anything, "tools").Return(&entity.Category{ID: "c1", Name: "tools"}, nil)
	f.tags.On("GetByName", mock.Anything, "red").Return(&entity.Tag{ID: "t1", Name: "red"}, nil)
	f.items.On("Create", mock.Anything, mock.MatchedBy(func(it *entity.Item) bool {
		return it.SKU == "N-1" && it.Category != nil && it.Category.ID == "c1" && len(it.Tags) == 1 &&
			it.StockStatus == entity.StockStatusInStock && it.ID != ""
	})).Return(nil)
	f.cache.On("DeletePrefix", mock.Anything, DefaultListCachePrefix).Return(nil)

	out, err := f.uc.Create(context.Background(), &dto.ItemWriteRequest{
		SKU: strPtr("N-1"), Name: strPtr("Nuevo"), InStock: decPtr(5), AvailableStock: decPtr(2),
		Category: strPtr("tools"), CategorySet: true, Tags: []string{"red"}, TagsSet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "N-1", out.SKU)
	require.NotNil(t, out.Category)
	assert.Equal(t, "tools", out.Category.Name)
	f.cache.AssertCalled(t, "DeletePrefix", mock.Anything, DefaultListCachePrefix)
}

func TestItemUseCase_Create_FalloDeInvalidacionNoFallaLaEscritura(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "N-1").Return(nil, nil)
	f.items.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("DeletePrefix", mock.Anything, mock.Anything).Return(errors.New("redis caído"))

	_, err := f.uc.Create(context.Background(), &dto.ItemWriteRequest{
		SKU: strPtr("N-1"), Name: strPtr("Nuevo"), InStock: decPtr(1), AvailableStock: decPtr(1),
	})
	assert.NoError(t, err)
}

func TestItemUseCase_Create_ErroresDeCampo(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "DUP").Return(sampleItem("DUP"), nil)
	f.categories.On("GetByName", mock.Anything, "ghost").Return(nil, nil)

	_, err := f.uc.Create(context.Background(), &dto.ItemWriteRequest{
		SKU: strPtr("DUP"), InStock: decPtr(1), AvailableStock: decPtr(1),
		Category: strPtr("ghost"), CategorySet: true,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"item with this SKU already exists."}, verr.Fields["SKU"])
	assert.Equal(t, []string{"Object with name=ghost does not exist."}, verr.Fields["category"])
	assert.Contains(t, verr.Fields, "name")
	f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "DeletePrefix", mock.Anything, mock.Anything)
}

func TestItemUseCase_Create_CarreraDeSKUDuplicado(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "R-1").Return(nil, nil)
	f.items.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)

	_, err := f.uc.Create(context.Background(), &dto.ItemWriteRequest{
		SKU: strPtr("R-1"), Name: strPtr("x"), InStock: decPtr(1), AvailableStock: decPtr(1),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "SKU")
}

func TestItemUseCase_Create_ReferenciaBorradaDuranteLaEscritura(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "R-2").Return(nil, nil)
	f.categories.On("GetByName", mock.Anything, "tools").Return(&entity.Category{ID: "c1", Name: "tools"}, nil)
	f.items.On("Create", mock.Anything, mock.Anything).Return(domain.ErrStaleReference)

	_, err := f.uc.Create(context.Background(), &dto.ItemWriteRequest{
		SKU: strPtr("R-2"), Name: strPtr("x"), InStock: decPtr(1), AvailableStock: decPtr(1),
		Category: strPtr("tools"), CategorySet: true,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgStaleReference}, verr.Fields["non_field_errors"])
	f.cache.AssertNotCalled(t, "DeletePrefix", mock.Anything, mock.Anything)
}

func TestItemUseCase_PartialUpdate(t *testing.T) {
	f := newItemFixture()
	current := sampleItem("P-1")
	current.Category = &entity.Category{ID: "c1", Name: "tools"}
	f.items.On("GetBySKU", mock.Anything, "P-1").Return(current, nil)
	f.items.On("Update", mock.Anything, mock.MatchedBy(func(it *entity.Item) bool {
		return it.StockStatus == entity.StockStatusOutOfStock && it.Name == "Item P-1" && it.Category == nil
	})).Return(nil)
	f.cache.On("DeletePrefix", mock.Anything, DefaultListCachePrefix).Return(nil)

	out, err := f.uc.PartialUpdate(context.Background(), "P-1", &dto.ItemWriteRequest{
		StockStatus: strPtr(entity.StockStatusOutOfStock), CategorySet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StockStatusOutOfStock, out.StockStatus)
	assert.Nil(t, out.Category)
	f.items.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestItemUseCase_Replace_ExigeObligatorios(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "P-1").Return(sampleItem("P-1"), nil)

	_, err := f.uc.Replace(context.Background(), "P-1", &dto.ItemWriteRequest{Name: strPtr("x")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "SKU")
	assert.Contains(t, verr.Fields, "in_stock")
	assert.Contains(t, verr.Fields, "available_stock")
}

func TestItemUseCase_Replace_MismoSKUNoEsDuplicado(t *testing.T) {
	f := newItemFixture()
	current := sampleItem("S-1")
	f.items.On("GetBySKU", mock.Anything, "S-1").Return(current, nil)
	f.items.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("DeletePrefix", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Replace(context.Background(), "S-1", &dto.ItemWriteRequest{
		SKU: strPtr("S-1"), Name: strPtr("Nuevo"), InStock: decPtr(9), AvailableStock: decPtr(9),
	})
	require.NoError(t, err)
}

func TestItemUseCase_Delete(t *testing.T) {
	f := newItemFixture()
	f.items.On("GetBySKU", mock.Anything, "D-1").Return(sampleItem("D-1"), nil)
	f.items.On("GetBySKU", mock.Anything, "D-2").Return(nil, nil)
	f.items.On("Delete", mock.Anything, "id-D-1").Return(nil)
	f.cache.On("DeletePrefix", mock.Anything, DefaultListCachePrefix).Return(nil).Once()

	require.NoError(t, f.uc.Delete(context.Background(), "D-1"))
	assert.ErrorIs(t, f.uc.Delete(context.Background(), "D-2"), domain.ErrNotFound)
	f.cache.AssertNumberOfCalls(t, "DeletePrefix", 1)
}

func TestItemUseCase_InvalidateIgnoraCancelacion(t *testing.T) {
	f := newItemFixture()
	f.cache.On("DeletePrefix", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), DefaultListCachePrefix).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.uc.InvalidateListCache(ctx)
	f.cache.AssertExpectations(t)
}

func TestItemUseCase_StockReport(t *testing.T) {
	f := newItemFixture()
	_, err := f.uc.StockReport(context.Background(), dto.ItemListRequest{})
	assert.Error(t, err, "sin generador configurado")

	gen := &fakeReport{}
	f.uc.report = gen
	f.items.On("List", mock.Anything, mock.MatchedBy(func(q inventory.ItemQuery) bool {
		return q.Limit == MaxReportRows && q.Offset == 0 && q.Filter.StockStatus == "OUT"
	})).Return([]*entity.Item{sampleItem("A-1")}, nil)

	out, err := f.uc.StockReport(context.Background(), dto.ItemListRequest{StockStatus: "OUT"})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), out)
	assert.Equal(t, 1, gen.rows)
}

type fakeReport struct {
	rows int
}

func (f *fakeReport) GenerateStockReport(_ context.Context, _ string, items []*entity.Item) ([]byte, error) {
	f.rows = len(items)
	return []byte("%PDF"), nil
}
