package pagination

import (
	"slices"
	"testing"

	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

func keys(n int) []models.PageKey {
	out := make([]models.PageKey, n)
	for i := range out {
		out[i] = models.MakePageKey(1, uint32(i))
	}
	return out
}

func TestNew_PagerCount(t *testing.T) {
	tests := []struct {
		items, by, want int
	}{
		{0, 2, 1},
		{1, 2, 1},
		{2, 2, 1},
		{3, 2, 2},
		{10, 2, 5},
		{10, 3, 4},
		{22, 10, 3},
	}

	for _, tt := range tests {
		p, err := New(keys(tt.items), tt.by, "https://example.com/posts/", "/posts/", "page")
		if err != nil {
			t.Fatalf("New(%d, %d): %v", tt.items, tt.by, err)
		}
		if p.Len() != tt.want {
			t.Errorf("New(%d, %d) pagers = %d, want %d", tt.items, tt.by, p.Len(), tt.want)
		}
		total := 0
		for _, pager := range p.Pagers {
			total += len(pager.Pages)
		}
		if total != tt.items {
			t.Errorf("New(%d, %d) holds %d items", tt.items, tt.by, total)
		}
	}
}

func TestNew_TenByTwo(t *testing.T) {
	items := keys(10)
	p, _ := New(items, 2, "https://example.com/posts/", "/posts/", "page")

	for i, pager := range p.Pagers {
		if !slices.Equal(pager.Pages, items[i*2:i*2+2]) {
			t.Errorf("pager %d holds %v", i+1, pager.Pages)
		}
	}

	first, _ := p.Context(1)
	if first.HasPrev || !first.HasNext {
		t.Errorf("pager 1 has_prev=%v has_next=%v", first.HasPrev, first.HasNext)
	}
	if first.Permalink != "https://example.com/posts/" {
		t.Errorf("pager 1 permalink = %q, want the base permalink", first.Permalink)
	}
	if first.Next != "https://example.com/posts/page/2/" {
		t.Errorf("pager 1 next = %q", first.Next)
	}

	last, _ := p.Context(5)
	if !last.HasPrev || last.HasNext {
		t.Errorf("pager 5 has_prev=%v has_next=%v", last.HasPrev, last.HasNext)
	}
	if last.Previous != "https://example.com/posts/page/4/" {
		t.Errorf("pager 5 previous = %q", last.Previous)
	}
	if last.First != "https://example.com/posts/" || last.Last != "https://example.com/posts/page/5/" {
		t.Errorf("first/last = %q %q", last.First, last.Last)
	}
	if p.Pagers[2].Path != "/posts/page/3/" {
		t.Errorf("pager 3 path = %q", p.Pagers[2].Path)
	}
}

func TestNew_Empty(t *testing.T) {
	p, err := New(nil, 5, "https://example.com/paginated/", "/paginated/", "page")
	if err != nil {
		t.Fatal(err)
	}

	c, err := p.Context(1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 || len(c.Pages) != 0 || c.HasPrev || c.HasNext {
		t.Errorf("empty paginator = %+v", c)
	}
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New(keys(3), 0, "https://example.com/", "/", "page")
	if !errs.IsCategory(err, errs.CategoryConfig) {
		t.Errorf("err = %v, want config error", err)
	}
}

func TestRedirectAndURLs(t *testing.T) {
	p, _ := New(keys(5), 2, "https://example.com", "/", "/pages/")

	from, to := p.Redirect()
	if from != "/pages/1/" || to != "https://example.com/" {
		t.Errorf("Redirect() = %q -> %q", from, to)
	}

	want := []string{"https://example.com/", "https://example.com/pages/2/", "https://example.com/pages/3/"}
	if got := p.URLs(); !slices.Equal(got, want) {
		t.Errorf("URLs() = %v, want %v", got, want)
	}
}

func TestContextOutOfRange(t *testing.T) {
	p, _ := New(keys(2), 2, "https://example.com/", "/", "page")
	if _, err := p.Context(0); err == nil {
		t.Error("Context(0) should fail")
	}
	if _, err := p.Context(2); err == nil {
		t.Error("Context(2) should fail")
	}
}

func TestDeterministic(t *testing.T) {
	a, _ := New(keys(7), 3, "https://example.com/x/", "/x/", "page")
	b, _ := New(keys(7), 3, "https://example.com/x/", "/x/", "page")
	if !slices.Equal(a.URLs(), b.URLs()) {
		t.Error("identical input produced different URLs")
	}
}
