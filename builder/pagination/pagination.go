// Package pagination splits ordered page lists into pagers.
package pagination

import (
	"fmt"
	"strings"

	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

// Pager is one slice of a paginated sequence.
type Pager struct {
	Index     int              `json:"index"`
	Path      string           `json:"path"`
	Permalink string           `json:"permalink"`
	Pages     []models.PageKey `json:"-"`
}

// Paginator holds every pager of one listing.
type Paginator struct {
	Pagers        []Pager
	PaginateBy    int
	TotalItems    int
	RootPath      string
	RootPermalink string
	PaginatePath  string
}

// Context is what a template needs to render pager i.
type Context struct {
	Index      int              `json:"current_index"`
	Total      int              `json:"number_pagers"`
	PaginateBy int              `json:"paginate_by"`
	TotalItems int              `json:"total_pages"`
	Pages      []models.PageKey `json:"-"`
	Permalink  string           `json:"permalink"`
	First      string           `json:"first"`
	Last       string           `json:"last"`
	Previous   string           `json:"previous,omitempty"`
	Next       string           `json:"next,omitempty"`
	HasPrev    bool             `json:"has_prev"`
	HasNext    bool             `json:"has_next"`
}

// New paginates items. Page 1 lives at rootPermalink; page i>1 lives at
// rootPermalink + segment + "/i/". An empty list still yields one pager.
func New(items []models.PageKey, paginateBy int, rootPermalink, rootPath, segment string) (*Paginator, error) {
	if paginateBy < 1 {
		return nil, errs.ConfigInvalid("paginate_by",
			fmt.Sprintf("paginate_by must be at least 1 for %s, got %d", rootPath, paginateBy))
	}
	segment = strings.Trim(segment, "/")
	if segment == "" {
		segment = "page"
	}
	rootPermalink = withSlash(rootPermalink)
	rootPath = withSlash(rootPath)

	// totalPages = ceil(N / n), never less than one
	total := (len(items) + paginateBy - 1) / paginateBy
	if total < 1 {
		total = 1
	}

	p := &Paginator{
		Pagers:        make([]Pager, 0, total),
		PaginateBy:    paginateBy,
		TotalItems:    len(items),
		RootPath:      rootPath,
		RootPermalink: rootPermalink,
		PaginatePath:  segment,
	}

	for i := 1; i <= total; i++ {
		start := (i - 1) * paginateBy
		end := min(start+paginateBy, len(items))

		pager := Pager{
			Index:     i,
			Path:      rootPath,
			Permalink: rootPermalink,
			Pages:     items[start:end:end],
		}
		if i > 1 {
			pager.Path = fmt.Sprintf("%s%s/%d/", rootPath, segment, i)
			pager.Permalink = fmt.Sprintf("%s%s/%d/", rootPermalink, segment, i)
		}
		p.Pagers = append(p.Pagers, pager)
	}
	return p, nil
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func (p *Paginator) Len() int {
	return len(p.Pagers)
}

// Context returns the navigation view of the 1-based pager i.
func (p *Paginator) Context(i int) (Context, error) {
	if i < 1 || i > len(p.Pagers) {
		return Context{}, fmt.Errorf("pager %d out of range 1..%d", i, len(p.Pagers))
	}
	pager := p.Pagers[i-1]
	c := Context{
		Index:      i,
		Total:      len(p.Pagers),
		PaginateBy: p.PaginateBy,
		TotalItems: p.TotalItems,
		Pages:      pager.Pages,
		Permalink:  pager.Permalink,
		First:      p.Pagers[0].Permalink,
		Last:       p.Pagers[len(p.Pagers)-1].Permalink,
		HasPrev:    i > 1,
		HasNext:    i < len(p.Pagers),
	}
	if c.HasPrev {
		c.Previous = p.Pagers[i-2].Permalink
	}
	if c.HasNext {
		c.Next = p.Pagers[i].Permalink
	}
	return c, nil
}

// Redirect returns the path of the never-emitted first pager and the
// permalink it should send visitors to.
func (p *Paginator) Redirect() (from, to string) {
	return fmt.Sprintf("%s%s/1/", p.RootPath, p.PaginatePath), p.RootPermalink
}

// URLs lists the permalink of every pager in order.
func (p *Paginator) URLs() []string {
	out := make([]string, len(p.Pagers))
	for i, pager := range p.Pagers {
		out[i] = pager.Permalink
	}
	return out
}
