package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
)

// Longitudes máximas de columnas.
const (
	MaxSKULength      = 50
	MaxItemNameLength = 200
	MaxNameLength     = 100
)

// CategoryRef categoría embebida en un item.
type CategoryRef struct {
	Name string `json:"name"`
}

// TagRef tag embebido en un item.
type TagRef struct {
	Name string `json:"name"`
}

// ItemResponse representación pública de un item. Las cantidades se serializan como string ("10").
type ItemResponse struct {
	SKU            string          `json:"SKU"`
	Name           string          `json:"name"`
	Category       *CategoryRef    `json:"category"`
	Tags           []TagRef        `json:"tags"`
	StockStatus    string          `json:"stock_status"`
	InStock        decimal.Decimal `json:"in_stock"`
	AvailableStock decimal.Decimal `json:"available_stock"`
}

// ItemListResponse página de items.
type ItemListResponse = Page[ItemResponse]

// ItemListRequest parámetros crudos del listado tal como llegan en la query string.
type ItemListRequest struct {
	StockStatus string `query:"stock_status"`
	SKU         string `query:"SKU"`
	Name        string `query:"name"`
	Ordering    string `query:"ordering"`
	Page        string `query:"page"`
	PageSize    string `query:"page_size"`
}

// Filter valida y convierte los filtros. stock_status debe ser uno de los tres estados.
func (r ItemListRequest) Filter() (inventory.ItemFilter, error) {
	status := strings.TrimSpace(r.StockStatus)
	if status != "" && !entity.ValidStockStatus(status) {
		verr := domain.NewValidationError()
		verr.Add("stock_status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", status))
		return inventory.ItemFilter{}, verr
	}
	return inventory.ItemFilter{
		StockStatus: status,
		SKU:         strings.TrimSpace(r.SKU),
		Name:        strings.TrimSpace(r.Name),
	}, nil
}

// ItemWriteRequest cuerpo de create/replace/partial_update. Un puntero nil significa "campo ausente".
// CategorySet distingue "ausente" de "null" (quitar categoría).
type ItemWriteRequest struct {
	SKU            *string
	Name           *string
	StockStatus    *string
	InStock        *decimal.Decimal
	AvailableStock *decimal.Decimal
	Category       *string
	CategorySet    bool
	Tags           []string
	TagsSet        bool
}

// ParseItemWriteRequest parsea el cuerpo de forma estricta: campos desconocidos, nulos no permitidos
// y tipos incorrectos se acumulan en un *domain.ValidationError.
func ParseItemWriteRequest(body []byte) (*ItemWriteRequest, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	verr := domain.NewValidationError()
	in := &ItemWriteRequest{}
	for k, v := range raw {
		switch k {
		case "SKU", "name", "stock_status":
			s, ok := decodeString(verr, k, v)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			switch k {
			case "SKU":
				in.SKU = &s
			case "name":
				in.Name = &s
			default:
				in.StockStatus = &s
			}
		case "in_stock", "available_stock":
			if isNull(v) {
				verr.Add(k, msgNull)
				continue
			}
			var d decimal.Decimal
			if err := json.Unmarshal(v, &d); err != nil {
				verr.Add(k, "A valid number is required.")
				continue
			}
			if k == "in_stock" {
				in.InStock = &d
			} else {
				in.AvailableStock = &d
			}
		case "category":
			in.CategorySet = true
			if isNull(v) {
				continue
			}
			if s, ok := decodeString(verr, k, v); ok {
				s = strings.TrimSpace(s)
				in.Category = &s
			}
		case "tags":
			if isNull(v) {
				verr.Add(k, msgNull)
				continue
			}
			var tags []string
			if err := json.Unmarshal(v, &tags); err != nil {
				verr.Add(k, "Expected a list of tag names.")
				continue
			}
			in.TagsSet = true
			in.Tags = normalizeNames(tags)
		default:
			verr.Add(k, msgUnknownField)
		}
	}
	return in, verr.OrNil()
}

// normalizeNames recorta espacios y elimina duplicados conservando el orden.
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Validate comprueba formato y obligatoriedad. requireAll se usa en create y replace.
func (in *ItemWriteRequest) Validate(requireAll bool) *domain.ValidationError {
	verr := domain.NewValidationError()
	checkText := func(field string, v *string, max int) {
		if v == nil {
			if requireAll {
				verr.Add(field, msgRequired)
			}
			return
		}
		if *v == "" {
			verr.Add(field, msgBlank)
			return
		}
		if utf8.RuneCountInString(*v) > max {
			verr.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
		}
	}
	checkQty := func(field string, v *decimal.Decimal) {
		if v == nil {
			if requireAll {
				verr.Add(field, msgRequired)
			}
			return
		}
		if msg := inventory.ValidateQuantity(*v); msg != "" {
			verr.Add(field, msg)
		}
	}
	checkText("SKU", in.SKU, MaxSKULength)
	checkText("name", in.Name, MaxItemNameLength)
	if in.StockStatus != nil && !entity.ValidStockStatus(*in.StockStatus) {
		verr.Add("stock_status", fmt.Sprintf("\"%s\" is not a valid choice.", *in.StockStatus))
	}
	checkQty("in_stock", in.InStock)
	checkQty("available_stock", in.AvailableStock)
	if in.Category != nil && *in.Category == "" {
		verr.Add("category", msgBlank)
	}
	for _, t := range in.Tags {
		if t == "" {
			verr.Add("tags", msgBlank)
			break
		}
	}
	return verr
}

// ToItemResponse convierte la entidad a su representación pública.
func ToItemResponse(it *entity.Item) ItemResponse {
	out := ItemResponse{
		SKU:            it.SKU,
		Name:           it.Name,
		Tags:           make([]TagRef, 0, len(it.Tags)),
		StockStatus:    it.StockStatus,
		InStock:        it.InStock,
		AvailableStock: it.AvailableStock,
	}
	if it.Category != nil {
		out.Category = &CategoryRef{Name: it.Category.Name}
	}
	for _, t := range it.Tags {
		out.Tags = append(out.Tags, TagRef{Name: t.Name})
	}
	return out
}
