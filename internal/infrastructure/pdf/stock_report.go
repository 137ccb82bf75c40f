// Package pdf genera el reporte de existencias de items en PDF (A4) con Maroto v2.
//
// Layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título               │  Fecha de generación         │
//	│  RESUMEN: total items | IN | OUT | BO                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Nombre | Categoría | Estado | Exist. | Disp.   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: existencias / disponibles                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
)

var _ usecase.StockReportGenerator = (*StockReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// statusLabels texto legible de cada stock_status.
var statusLabels = map[string]string{
	entity.StockStatusInStock:    "En stock",
	entity.StockStatusOutOfStock: "Agotado",
	entity.StockStatusBackorder:  "Pedido pendiente",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// StockReportGenerator implementa usecase.StockReportGenerator.
type StockReportGenerator struct {
	now func() time.Time
}

// NewStockReportGenerator construye el generador.
func NewStockReportGenerator() *StockReportGenerator {
	return &StockReportGenerator{now: time.Now}
}

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *StockReportGenerator) GenerateStockReport(_ context.Context, title string, items []*entity.Item) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, g.now()))
	m.AddRows(summaryRow(items))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(items) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin items para los filtros indicados.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}
	m.AddRows(tableRows(items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(items))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, at time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+at.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

// summaryRow: conteo total y por estado.
func summaryRow(items []*entity.Item) core.Row {
	counts := make(map[string]int, len(entity.StockStatuses))
	for _, it := range items {
		counts[it.StockStatus]++
	}
	parts := []string{fmt.Sprintf("Items: %d", len(items))}
	for _, s := range entity.StockStatuses {
		parts = append(parts, fmt.Sprintf("%s: %d", statusLabels[s], counts[s]))
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Top: 1, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("SKU", 2, align.Left),
		h("Nombre", 3, align.Left),
		h("Categoría", 2, align.Left),
		h("Estado", 2, align.Center),
		h("Existencias", 1, align.Right),
		h("Disponibles", 2, align.Right),
	)
}

// tableRows: una fila por item, alternando fondo.
func tableRows(items []*entity.Item) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	out := make([]core.Row, 0, len(items))
	for i, it := range items {
		category := "—"
		if it.Category != nil {
			category = it.Category.Name
		}
		r := row.New(7).Add(
			cell(it.SKU, 2, align.Left),
			cell(it.Name, 3, align.Left),
			cell(category, 2, align.Left),
			cell(statusLabel(it.StockStatus), 2, align.Center),
			cell(formatQuantity(it.InStock), 1, align.Right),
			cell(formatQuantity(it.AvailableStock), 2, align.Right),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		out = append(out, r)
	}
	return out
}

func totalsRow(items []*entity.Item) core.Row {
	inStock, available := decimal.Zero, decimal.Zero
	for _, it := range items {
		inStock = inStock.Add(it.InStock)
		available = available.Add(it.AvailableStock)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Color: colorPrimary})
	}
	return row.New(8).Add(
		col.New(7),
		col.New(2).Add(label("Totales:")),
		col.New(1).Add(label(formatQuantity(inStock))),
		col.New(2).Add(label(formatQuantity(available))),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(s string) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return s
}

// formatQuantity entero con puntos de miles. Ej: 1000000 → "1.000.000".
func formatQuantity(d decimal.Decimal) string {
	s := d.StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	n := len(s)
	if n > 3 {
		buf := make([]byte, 0, n+n/3)
		for i, c := range []byte(s) {
			if i > 0 && (n-i)%3 == 0 {
				buf = append(buf, '.')
			}
			buf = append(buf, c)
		}
		s = string(buf)
	}
	if neg {
		return "-" + s
	}
	return s
}
