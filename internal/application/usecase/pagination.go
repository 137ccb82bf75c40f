package usecase

import (
	"net/url"
	"strconv"

	"github.com/jhoicas/inventory-items/internal/domain/inventory"
)

// pageWindow página resuelta: número, tamaño y total de páginas.
type pageWindow struct {
	Number   int
	Size     int
	NumPages int
}

func (w pageWindow) Offset() int { return (w.Number - 1) * w.Size }

// resolvePage interpreta page/page_size contra el total de elementos.
func resolvePage(p inventory.Pagination, rawPage, rawSize string, count int) (pageWindow, error) {
	num, err := inventory.ParsePageNumber(rawPage)
	if err != nil {
		return pageWindow{}, err
	}
	size := p.PageSize(rawSize)
	page, err := num.Resolve(count, size)
	if err != nil {
		return pageWindow{}, err
	}
	return pageWindow{Number: page, Size: size, NumPages: inventory.NumPages(count, size)}, nil
}

// pageLinks construye los enlaces next/previous a partir de la URL absoluta de la petición.
// La página 1 se enlaza sin parámetro "page".
func pageLinks(absoluteURL string, w pageWindow) (next, previous *string) {
	if w.Number < w.NumPages {
		next = withPage(absoluteURL, w.Number+1)
	}
	if w.Number > 1 {
		previous = withPage(absoluteURL, w.Number-1)
	}
	return next, previous
}

func withPage(absoluteURL string, page int) *string {
	if absoluteURL == "" {
		return nil
	}
	u, err := url.Parse(absoluteURL)
	if err != nil {
		return nil
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
