package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// Valores por defecto de la caché de listados.
const (
	DefaultListCachePrefix = "item_list_"
	DefaultListCacheTTL    = 15 * time.Minute
	// MaxReportRows tope de filas del reporte PDF.
	MaxReportRows = 1000
)

const (
	msgDuplicateSKU   = "item with this SKU already exists."
	msgStaleReference = "The referenced category or tag no longer exists."
)

// ItemUseCaseConfig parámetros de caché y paginación.
type ItemUseCaseConfig struct {
	CachePrefix string
	CacheTTL    time.Duration
	Pagination  inventory.Pagination
}

func (c ItemUseCaseConfig) withDefaults() ItemUseCaseConfig {
	if c.CachePrefix == "" {
		c.CachePrefix = DefaultListCachePrefix
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultListCacheTTL
	}
	if c.Pagination.DefaultSize <= 0 {
		c.Pagination = inventory.DefaultPagination
	}
	return c
}

// ItemUseCase lecturas y escrituras de items con caché read-through para el listado.
// Cualquier escritura invalida todo el espacio de claves del listado: no se intenta
// calcular qué páginas o filtros quedaron afectados.
type ItemUseCase struct {
	items  repository.ItemRepository
	tx     TxRunner
	cache  ListCache
	report StockReportGenerator
	cfg    ItemUseCaseConfig
	log    *logger.Logger
	tracer trace.Tracer
}

// NewItemUseCase construye el caso de uso. report puede ser nil si no se expone el PDF.
func NewItemUseCase(
	items repository.ItemRepository,
	tx TxRunner,
	cache ListCache,
	report StockReportGenerator,
	cfg ItemUseCaseConfig,
	log *logger.Logger,
) *ItemUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ItemUseCase{
		items:  items,
		tx:     tx,
		cache:  cache,
		report: report,
		cfg:    cfg.withDefaults(),
		log:    log.Component("items"),
		tracer: otel.Tracer("inventory-items/usecase/items"),
	}
}

// ListInput petición de listado.
// RequestURI es ruta + query string cruda (define la clave de caché);
// AbsoluteURL se usa solo para construir los enlaces next/previous.
type ListInput struct {
	RequestURI  string
	AbsoluteURL string
	Query       dto.ItemListRequest
}

// ListResult cuerpo JSON ya serializado y si salió de la caché.
type ListResult struct {
	Body   []byte
	Cached bool
}

// CacheKey clave de caché para una ruta de listado.
func (uc *ItemUseCase) CacheKey(requestURI string) string {
	return uc.cfg.CachePrefix + requestURI
}

// List devuelve una página de items. En un hit devuelve los bytes guardados tal cual;
// en un miss consulta el store, serializa, guarda con TTL y devuelve esos mismos bytes.
// Un fallo al leer la caché se trata como miss.
func (uc *ItemUseCase) List(ctx context.Context, in ListInput) (*ListResult, error) {
	key := uc.CacheKey(in.RequestURI)
	ctx, span := uc.tracer.Start(ctx, "items.list", trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	body, found, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida, se consulta el store")
	} else if found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &ListResult{Body: body, Cached: true}, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	filter, err := in.Query.Filter()
	if err != nil {
		return nil, err
	}
	count, err := uc.items.Count(ctx, filter)
	if err != nil {
		return nil, recordErr(span, err)
	}
	window, err := resolvePage(uc.cfg.Pagination, in.Query.Page, in.Query.PageSize, count)
	if err != nil {
		return nil, err
	}
	list, err := uc.items.List(ctx, inventory.ItemQuery{
		Filter:   filter,
		Ordering: inventory.ParseOrdering(in.Query.Ordering),
		Limit:    window.Size,
		Offset:   window.Offset(),
	})
	if err != nil {
		return nil, recordErr(span, err)
	}

	page := dto.ItemListResponse{Count: count, Results: make([]dto.ItemResponse, 0, len(list))}
	page.Next, page.Previous = pageLinks(in.AbsoluteURL, window)
	for _, it := range list {
		page.Results = append(page.Results, dto.ToItemResponse(it))
	}
	body, err = json.Marshal(page)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("serializar listado: %w", err))
	}
	if err := uc.cache.Set(ctx, key, body, uc.cfg.CacheTTL); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el listado en caché")
	}
	return &ListResult{Body: body}, nil
}

// Retrieve obtiene un item por SKU. Nunca usa la caché.
func (uc *ItemUseCase) Retrieve(ctx context.Context, sku string) (*dto.ItemResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "items.retrieve", trace.WithAttributes(attribute.String("item.sku", sku)))
	defer span.End()

	item, err := uc.items.GetBySKU(ctx, sku)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToItemResponse(item)
	return &out, nil
}

// Create crea un item. stock_status por defecto IN.
func (uc *ItemUseCase) Create(ctx context.Context, in *dto.ItemWriteRequest) (*dto.ItemResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "items.create")
	defer span.End()

	var created *entity.Item
	err := uc.tx.Run(ctx, func(items repository.ItemRepository, categories repository.CategoryRepository, tags repository.TagRepository) error {
		verr := in.Validate(true)
		if err := checkSKUAvailable(ctx, items, verr, in.SKU, ""); err != nil {
			return err
		}
		category, tagList, err := resolveRefs(ctx, categories, tags, verr, in)
		if err != nil {
			return err
		}
		if verr.HasErrors() {
			return verr
		}
		now := time.Now().UTC()
		item := &entity.Item{
			ID:             uuid.New().String(),
			SKU:            *in.SKU,
			Name:           *in.Name,
			Category:       category,
			Tags:           tagList,
			StockStatus:    entity.StockStatusInStock,
			InStock:        in.InStock.Truncate(0),
			AvailableStock: in.AvailableStock.Truncate(0),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if in.StockStatus != nil {
			item.StockStatus = *in.StockStatus
		}
		if err := items.Create(ctx, item); err != nil {
			return duplicateAsValidation(err)
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, recordErr(span, err)
	}
	uc.InvalidateListCache(ctx)
	out := dto.ToItemResponse(created)
	return &out, nil
}

// Replace actualización completa: SKU, name, in_stock y available_stock son obligatorios.
func (uc *ItemUseCase) Replace(ctx context.Context, sku string, in *dto.ItemWriteRequest) (*dto.ItemResponse, error) {
	return uc.update(ctx, "items.replace", sku, in, true)
}

// PartialUpdate actualiza solo los campos presentes.
func (uc *ItemUseCase) PartialUpdate(ctx context.Context, sku string, in *dto.ItemWriteRequest) (*dto.ItemResponse, error) {
	return uc.update(ctx, "items.partial_update", sku, in, false)
}

func (uc *ItemUseCase) update(ctx context.Context, op, sku string, in *dto.ItemWriteRequest, requireAll bool) (*dto.ItemResponse, error) {
	ctx, span := uc.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("item.sku", sku)))
	defer span.End()

	var updated *entity.Item
	err := uc.tx.Run(ctx, func(items repository.ItemRepository, categories repository.CategoryRepository, tags repository.TagRepository) error {
		item, err := items.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		verr := in.Validate(requireAll)
		if err := checkSKUAvailable(ctx, items, verr, in.SKU, item.ID); err != nil {
			return err
		}
		category, tagList, err := resolveRefs(ctx, categories, tags, verr, in)
		if err != nil {
			return err
		}
		if verr.HasErrors() {
			return verr
		}
		applyWrite(item, in, category, tagList)
		item.UpdatedAt = time.Now().UTC()
		if err := items.Update(ctx, item); err != nil {
			return duplicateAsValidation(err)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, recordErr(span, err)
	}
	uc.InvalidateListCache(ctx)
	out := dto.ToItemResponse(updated)
	return &out, nil
}

// Delete elimina un item por SKU.
func (uc *ItemUseCase) Delete(ctx context.Context, sku string) error {
	ctx, span := uc.tracer.Start(ctx, "items.delete", trace.WithAttributes(attribute.String("item.sku", sku)))
	defer span.End()

	err := uc.tx.Run(ctx, func(items repository.ItemRepository, _ repository.CategoryRepository, _ repository.TagRepository) error {
		item, err := items.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return items.Delete(ctx, item.ID)
	})
	if err != nil {
		return recordErr(span, err)
	}
	uc.InvalidateListCache(ctx)
	return nil
}

// StockReport genera el PDF de existencias con los mismos filtros y orden del listado, sin paginar.
func (uc *ItemUseCase) StockReport(ctx context.Context, q dto.ItemListRequest) ([]byte, error) {
	ctx, span := uc.tracer.Start(ctx, "items.stock_report")
	defer span.End()

	if uc.report == nil {
		return nil, errors.New("reporte PDF no configurado")
	}
	filter, err := q.Filter()
	if err != nil {
		return nil, err
	}
	list, err := uc.items.List(ctx, inventory.ItemQuery{
		Filter:   filter,
		Ordering: inventory.ParseOrdering(q.Ordering),
		Limit:    MaxReportRows,
	})
	if err != nil {
		return nil, recordErr(span, err)
	}
	return uc.report.GenerateStockReport(ctx, "Reporte de existencias", list)
}

// InvalidateListCache borra todas las claves del listado. Es fire-and-forget: un fallo se registra
// y no se reintenta (las entradas viejas expiran por TTL). No depende de la cancelación de la petición.
func (uc *ItemUseCase) InvalidateListCache(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_, span := uc.tracer.Start(ctx, "items.invalidate_list_cache")
	defer span.End()
	if err := uc.cache.DeletePrefix(ctx, uc.cfg.CachePrefix); err != nil {
		span.RecordError(err)
		uc.log.Warn().Err(err).Str("prefix", uc.cfg.CachePrefix).Msg("invalidación de caché fallida")
	}
}

// checkSKUAvailable añade error de duplicado si el SKU pedido ya lo usa otro item (selfID se excluye).
func checkSKUAvailable(ctx context.Context, items repository.ItemRepository, verr *domain.ValidationError, sku *string, selfID string) error {
	if sku == nil || len(verr.Fields["SKU"]) > 0 {
		return nil
	}
	existing, err := items.GetBySKU(ctx, *sku)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		verr.Add("SKU", msgDuplicateSKU)
	}
	return nil
}

// resolveRefs busca la categoría y los tags por nombre. Los nombres inexistentes son errores de campo.
func resolveRefs(
	ctx context.Context,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	verr *domain.ValidationError,
	in *dto.ItemWriteRequest,
) (*entity.Category, []entity.Tag, error) {
	var category *entity.Category
	if in.Category != nil && *in.Category != "" {
		c, err := categories.GetByName(ctx, *in.Category)
		if err != nil {
			return nil, nil, err
		}
		if c == nil {
			verr.Add("category", fmt.Sprintf("Object with name=%s does not exist.", *in.Category))
		}
		category = c
	}
	var tagList []entity.Tag
	if in.TagsSet {
		tagList = make([]entity.Tag, 0, len(in.Tags))
		for _, name := range in.Tags {
			if name == "" {
				continue
			}
			t, err := tags.GetByName(ctx, name)
			if err != nil {
				return nil, nil, err
			}
			if t == nil {
				verr.Add("tags", fmt.Sprintf("Object with name=%s does not exist.", name))
				continue
			}
			tagList = append(tagList, *t)
		}
	}
	return category, tagList, nil
}

// applyWrite copia al item los campos presentes en la petición.
func applyWrite(item *entity.Item, in *dto.ItemWriteRequest, category *entity.Category, tagList []entity.Tag) {
	if in.SKU != nil {
		item.SKU = *in.SKU
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.StockStatus != nil {
		item.StockStatus = *in.StockStatus
	}
	if in.InStock != nil {
		item.InStock = in.InStock.Truncate(0)
	}
	if in.AvailableStock != nil {
		item.AvailableStock = in.AvailableStock.Truncate(0)
	}
	if in.CategorySet {
		item.Category = category
	}
	if in.TagsSet {
		item.Tags = tagList
	}
}

// duplicateAsValidation traduce las violaciones de integridad del store (carreras con otra escritura)
// a errores de campo.
func duplicateAsValidation(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		verr := domain.NewValidationError()
		verr.Add("SKU", msgDuplicateSKU)
		return verr
	case errors.Is(err, domain.ErrStaleReference):
		verr := domain.NewValidationError()
		verr.Add("non_field_errors", msgStaleReference)
		return verr
	}
	return err
}

// recordErr marca el span como fallido salvo para errores esperados del cliente.
func recordErr(span trace.Span, err error) error {
	var verr *domain.ValidationError
	if errors.Is(err, domain.ErrNotFound) || errors.As(err, &verr) {
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
