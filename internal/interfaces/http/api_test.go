package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-items/internal/application/auth"
	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
	"github.com/jhoicas/inventory-items/internal/infrastructure/cache"
	"github.com/jhoicas/inventory-items/internal/infrastructure/pdf"
	"github.com/jhoicas/inventory-items/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/inventory-items/internal/interfaces/http"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de prueba: SQLite en disco temporal + caché en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app   *fiber.App
	cache *cache.MemoryCache
	token string
}

type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r apiResponse) json(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), string(r.body))
}

type itemPage struct {
	Count    int                `json:"count"`
	Next     *string            `json:"next"`
	Previous *string            `json:"previous"`
	Results  []dto.ItemResponse `json:"results"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	listCache := cache.NewMemoryCache()
	log := logger.Nop()
	itemUC := usecase.NewItemUseCase(
		sqlite.NewItemRepository(store), sqlite.NewTxRunner(store), listCache,
		pdf.NewStockReportGenerator(), usecase.ItemUseCaseConfig{}, log,
	)
	authUC := auth.NewAuthUseCase(sqlite.NewUserRepository(store), auth.JWTConfig{
		Secret: testJWTSecret, AccessMinutes: 5, RefreshMinutes: 60, Issuer: testIssuer,
	})
	_, err = authUC.CreateUser(ctx, dto.CreateUserRequest{Username: "ana", Password: "s3cret-pass"})
	require.NoError(t, err)

	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"}, log)
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:       itemUC,
		CategoryUC:   usecase.NewCategoryUseCase(sqlite.NewCategoryRepository(store), itemUC, inventory.DefaultPagination),
		TagUC:        usecase.NewTagUseCase(sqlite.NewTagRepository(store), itemUC, inventory.DefaultPagination),
		AuthUC:       authUC,
		JWTSecret:    testJWTSecret,
		TokenLimiter: apphttp.NewIPRateLimiter(1000, 100),
		HealthChecks: map[string]apphttp.HealthCheck{"db": store.Ping},
		Log:          log,
	})

	api := &testAPI{app: app, cache: listCache}
	res := api.do(t, http.MethodPost, "/api/token/", `{"username":"ana","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	var pair dto.TokenPairResponse
	res.json(t, &pair)
	api.token = pair.Access
	return api
}

func (a *testAPI) do(t *testing.T, method, path, body string) apiResponse {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{status: resp.StatusCode, header: resp.Header, body: b}
}

func (a *testAPI) createItem(t *testing.T, payload string) dto.ItemResponse {
	t.Helper()
	res := a.do(t, http.MethodPost, "/items/", payload)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	var out dto.ItemResponse
	res.json(t, &out)
	return out
}

func itemJSON(sku, status string) string {
	return fmt.Sprintf(`{"SKU":%q,"name":"Item %s","stock_status":%q,"in_stock":10,"available_stock":"5"}`, sku, sku, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SinTokenRetorna401(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	for _, path := range []string{"/items/", "/items/A-1/", "/categories/", "/tags/", "/reports/stock.pdf"} {
		res := api.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, res.status, path)
	}
}

func TestAPI_TokenCredencialesInvalidas(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	res := api.do(t, http.MethodPost, "/api/token/", `{"username":"ana","password":"otra"}`)
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = api.do(t, http.MethodPost, "/api/token/", `{"username":"nadie","password":"otra-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = api.do(t, http.MethodPost, "/api/token/", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = api.do(t, http.MethodPost, "/api/token/", `no-json`)
	assert.Equal(t, http.StatusBadRequest, res.status)
}

func TestAPI_RefreshToken(t *testing.T) {
	api := newTestAPI(t)
	access := api.token
	api.token = ""
	res := api.do(t, http.MethodPost, "/api/token/", `{"username":"ana","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, res.status)
	var pair dto.TokenPairResponse
	res.json(t, &pair)

	res = api.do(t, http.MethodPost, "/api/token/refresh/", fmt.Sprintf(`{"refresh":%q}`, pair.Refresh))
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	var refreshed dto.TokenRefreshResponse
	res.json(t, &refreshed)
	assert.NotEmpty(t, refreshed.Access)

	// Un access token no sirve como refresh.
	res = api.do(t, http.MethodPost, "/api/token/refresh/", fmt.Sprintf(`{"refresh":%q}`, access))
	assert.Equal(t, http.StatusUnauthorized, res.status)

	// Un refresh token no sirve como access.
	api.token = pair.Refresh
	res = api.do(t, http.MethodGet, "/items/", "")
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

// ──────────────────────────────────────────────────────────────────────────────
// CRUD
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CreateRetrieve(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/categories/", `{"name":"tools"}`).status)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/tags/", `{"name":"red"}`).status)

	created := api.createItem(t, `{"SKU":"A-1","name":"Hammer","category":"tools","tags":["red"],"in_stock":"12","available_stock":3}`)
	assert.Equal(t, "A-1", created.SKU)
	assert.Equal(t, "IN", created.StockStatus, "stock_status por defecto")

	res := api.do(t, http.MethodGet, "/items/A-1/", "")
	require.Equal(t, http.StatusOK, res.status)
	var raw map[string]any
	res.json(t, &raw)
	assert.Equal(t, "A-1", raw["SKU"])
	assert.Equal(t, "12", raw["in_stock"], "las cantidades se serializan como string")
	assert.Equal(t, "3", raw["available_stock"])
	assert.Equal(t, map[string]any{"name": "tools"}, raw["category"])
	assert.Equal(t, []any{map[string]any{"name": "red"}}, raw["tags"])
}

func TestAPI_SKUConFormaDeRuta(t *testing.T) {
	api := newTestAPI(t)
	for _, sku := range []string{"report.pdf", "stock.pdf", "AB-1.2"} {
		api.createItem(t, itemJSON(sku, "IN"))

		res := api.do(t, http.MethodGet, "/items/"+sku+"/", "")
		require.Equal(t, http.StatusOK, res.status, sku)
		var got dto.ItemResponse
		res.json(t, &got)
		assert.Equal(t, sku, got.SKU)

		res = api.do(t, http.MethodPatch, "/items/"+sku+"/", `{"stock_status":"OUT"}`)
		require.Equal(t, http.StatusOK, res.status, sku)
		assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/items/"+sku+"/", "").status, sku)
	}
}

func TestAPI_RetrieveInexistente(t *testing.T) {
	api := newTestAPI(t)
	res := api.do(t, http.MethodGet, "/items/NOPE/", "")
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Contains(t, string(res.body), apphttp.CodeNotFound)
}

func TestAPI_DeleteLuego404(t *testing.T) {
	api := newTestAPI(t)
	api.createItem(t, itemJSON("D-1", "IN"))

	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/items/D-1/", "").status)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/items/D-1/", "").status)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/items/D-1/", "").status)
}

func TestAPI_ValidacionDeEscritura(t *testing.T) {
	api := newTestAPI(t)
	api.createItem(t, itemJSON("V-1", "IN"))

	cases := map[string]struct {
		body   string
		fields []string
	}{
		"campo desconocido":   {`{"SKU":"V-2","name":"x","in_stock":1,"available_stock":1,"color":"red"}`, []string{"color"}},
		"faltan obligatorios": {`{"name":"x"}`, []string{"SKU", "in_stock", "available_stock"}},
		"SKU duplicado":       {itemJSON("V-1", "IN"), []string{"SKU"}},
		"estado inválido":     {`{"SKU":"V-3","name":"x","stock_status":"XX","in_stock":1,"available_stock":1}`, []string{"stock_status"}},
		"cantidad negativa":   {`{"SKU":"V-4","name":"x","in_stock":-1,"available_stock":1}`, []string{"in_stock"}},
		"categoría inexistente": {`{"SKU":"V-5","name":"x","in_stock":1,"available_stock":1,"category":"ghost"}`, []string{"category"}},
		"tipo incorrecto":     {`{"SKU":5,"name":"x","in_stock":"abc","available_stock":1}`, []string{"SKU", "in_stock"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := api.do(t, http.MethodPost, "/items/", tc.body)
			require.Equal(t, http.StatusBadRequest, res.status, string(res.body))
			var errBody dto.ErrorResponse
			res.json(t, &errBody)
			assert.Equal(t, apphttp.CodeValidation, errBody.Code)
			for _, f := range tc.fields {
				assert.Contains(t, errBody.Fields, f)
			}
		})
	}

	res := api.do(t, http.MethodPost, "/items/", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, string(res.body), apphttp.CodeInvalidBody)
}

func TestAPI_ReplaceYPartialUpdate(t *testing.T) {
	api := newTestAPI(t)
	api.createItem(t, itemJSON("U-1", "IN"))

	res := api.do(t, http.MethodPatch, "/items/U-1/", `{"stock_status":"BO"}`)
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	var out dto.ItemResponse
	res.json(t, &out)
	assert.Equal(t, "BO", out.StockStatus)
	assert.Equal(t, "Item U-1", out.Name, "los campos ausentes no cambian")

	res = api.do(t, http.MethodPut, "/items/U-1/", `{"name":"solo nombre"}`)
	assert.Equal(t, http.StatusBadRequest, res.status, "replace exige los campos obligatorios")

	res = api.do(t, http.MethodPut, "/items/U-1/", `{"SKU":"U-2","name":"Renombrado","in_stock":1,"available_stock":0}`)
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/items/U-1/", "").status)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/items/U-2/", "").status)

	res = api.do(t, http.MethodPatch, "/items/NOPE/", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, res.status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado: filtros, paginación, caché
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ListFiltraPorStockStatus(t *testing.T) {
	api := newTestAPI(t)
	api.createItem(t, itemJSON("F-1", "IN"))
	api.createItem(t, itemJSON("F-2", "OUT"))
	api.createItem(t, itemJSON("F-3", "OUT"))

	res := api.do(t, http.MethodGet, "/items/?stock_status=OUT", "")
	require.Equal(t, http.StatusOK, res.status)
	var page itemPage
	res.json(t, &page)
	assert.Equal(t, 2, page.Count)
	for _, it := range page.Results {
		assert.Equal(t, "OUT", it.StockStatus)
	}

	res = api.do(t, http.MethodGet, "/items/?stock_status=NOPE", "")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, string(res.body), "stock_status")
}

func TestAPI_ListPaginacion(t *testing.T) {
	api := newTestAPI(t)
	for i := 1; i <= 12; i++ {
		api.createItem(t, itemJSON(fmt.Sprintf("P-%02d", i), "IN"))
	}

	var page itemPage
	res := api.do(t, http.MethodGet, "/items/", "")
	require.Equal(t, http.StatusOK, res.status)
	res.json(t, &page)
	assert.Equal(t, 12, page.Count)
	assert.Len(t, page.Results, 10)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/items/?page=2", *page.Next)
	assert.Nil(t, page.Previous)
	assert.Equal(t, "P-01", page.Results[0].SKU)

	res = api.do(t, http.MethodGet, "/items/?page=2", "")
	require.Equal(t, http.StatusOK, res.status)
	page = itemPage{}
	res.json(t, &page)
	assert.Len(t, page.Results, 2)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/items/", *page.Previous)

	res = api.do(t, http.MethodGet, "/items/?page=last&page_size=5", "")
	require.Equal(t, http.StatusOK, res.status)
	page = itemPage{}
	res.json(t, &page)
	assert.Len(t, page.Results, 2)

	for _, bad := range []string{"3", "0", "abc"} {
		res = api.do(t, http.MethodGet, "/items/?page="+bad, "")
		assert.Equal(t, http.StatusNotFound, res.status, bad)
		assert.Contains(t, string(res.body), apphttp.CodeInvalidPage)
	}

	res = api.do(t, http.MethodGet, "/items/?ordering=-SKU&page_size=3", "")
	page = itemPage{}
	res.json(t, &page)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "P-12", page.Results[0].SKU)
}

func TestAPI_ListVacioEsValido(t *testing.T) {
	api := newTestAPI(t)
	res := api.do(t, http.MethodGet, "/items/", "")
	require.Equal(t, http.StatusOK, res.status)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, string(res.body))
}

func TestAPI_CacheHitDevuelveLosMismosBytes(t *testing.T) {
	api := newTestAPI(t)
	api.createItem(t, itemJSON("C-1", "IN"))

	first := api.do(t, http.MethodGet, "/items/?ordering=name", "")
	require.Equal(t, http.StatusOK, first.status)
	assert.Equal(t, "MISS", first.header.Get(apphttp.HeaderCache))

	second := api.do(t, http.MethodGet, "/items/?ordering=name", "")
	require.Equal(t, http.StatusOK, second.status)
	assert.Equal(t, "HIT", second.header.Get(apphttp.HeaderCache))
	assert.True(t, bytes.Equal(first.body, second.body))
	assert.Contains(t, second.header.Get("Content-Type"), "application/json")

	// Otra query string es otra clave.
	other := api.do(t, http.MethodGet, "/items/?ordering=-name", "")
	assert.Equal(t, "MISS", other.header.Get(apphttp.HeaderCache))
}

func TestAPI_EscriturasInvalidanElListado(t *testing.T) {
	api := newTestAPI(t)
	api.createItem(t, itemJSON("I-1", "IN"))

	writes := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/items/", itemJSON("I-2", "IN")},
		{http.MethodPut, "/items/I-2/", `{"SKU":"I-2","name":"Put","in_stock":2,"available_stock":2}`},
		{http.MethodPatch, "/items/I-2/", `{"stock_status":"OUT"}`},
		{http.MethodDelete, "/items/I-2/", ""},
	}
	for _, w := range writes {
		warm := api.do(t, http.MethodGet, "/items/", "")
		require.Equal(t, http.StatusOK, warm.status)
		require.Equal(t, "HIT", api.do(t, http.MethodGet, "/items/", "").header.Get(apphttp.HeaderCache))

		res := api.do(t, w.method, w.path, w.body)
		require.Less(t, res.status, 300, "%s %s: %s", w.method, w.path, res.body)
		assert.Zero(t, api.cache.Len(), "%s %s debe vaciar la caché", w.method, w.path)

		after := api.do(t, http.MethodGet, "/items/", "")
		assert.Equal(t, "MISS", after.header.Get(apphttp.HeaderCache), "%s %s", w.method, w.path)
		assert.NotEqual(t, string(warm.body), string(after.body), "%s %s", w.method, w.path)
	}
}

func TestAPI_EscrituraFallidaNoInvalida(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodGet, "/items/", "")
	require.Equal(t, 1, api.cache.Len())

	res := api.do(t, http.MethodPost, "/items/", `{"name":"sin sku"}`)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, 1, api.cache.Len())
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías y tags
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_BorrarCategoriaDejaItemsSinCategoria(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/categories/", `{"name":"tools"}`).status)
	api.createItem(t, `{"SKU":"K-1","name":"Hammer","category":"tools","in_stock":1,"available_stock":1}`)
	api.do(t, http.MethodGet, "/items/", "")
	require.Equal(t, 1, api.cache.Len())

	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/categories/tools/", "").status)
	assert.Zero(t, api.cache.Len())

	res := api.do(t, http.MethodGet, "/items/K-1/", "")
	require.Equal(t, http.StatusOK, res.status)
	var raw map[string]any
	res.json(t, &raw)
	assert.Nil(t, raw["category"])

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/categories/tools/", "").status)
}

func TestAPI_Tags(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/tags/", `{"name":"red"}`).status)
	res := api.do(t, http.MethodPost, "/tags/", `{"name":"red"}`)
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = api.do(t, http.MethodPost, "/tags/", `{"name":"blue","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, res.status)

	api.createItem(t, `{"SKU":"T-1","name":"x","tags":["red"],"in_stock":1,"available_stock":1}`)
	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/tags/red/", "").status)

	var out dto.ItemResponse
	api.do(t, http.MethodGet, "/items/T-1/", "").json(t, &out)
	assert.Empty(t, out.Tags)

	var page dto.TagListResponse
	api.do(t, http.MethodGet, "/tags/", "").json(t, &page)
	assert.Equal(t, 0, page.Count)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reporte y health
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_StockReport(t *testing.T) {
	api := newTestAPI(t)
	api.createItem(t, itemJSON("R-1", "IN"))

	res := api.do(t, http.MethodGet, "/reports/stock.pdf?stock_status=IN", "")
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	assert.Equal(t, "application/pdf", res.header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(res.body, []byte("%PDF")))
	assert.Zero(t, api.cache.Len(), "el reporte no se cachea")
}

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	res := api.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, string(res.body), `"db":"ok"`)
}

func TestAPI_RutaInexistente(t *testing.T) {
	api := newTestAPI(t)
	res := api.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Contains(t, string(res.body), apphttp.CodeNotFound)
}
