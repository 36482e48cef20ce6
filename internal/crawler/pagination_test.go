package crawler

import "testing"

func TestNextURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		page int
		want string
	}{
		{"page zero is the listing itself", "https://phy.princeton.edu/events", 0, "https://phy.princeton.edu/events"},
		{"later pages add the query", "https://phy.princeton.edu/events", 2, "https://phy.princeton.edu/events?page=2"},
		{"existing query uses ampersand", "https://phy.princeton.edu/events?type=all", 1, "https://phy.princeton.edu/events?type=all&page=1"},
		{"negative treated as zero", "https://phy.princeton.edu/events", -1, "https://phy.princeton.edu/events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextURL(tt.url, tt.page); got != tt.want {
				t.Errorf("NextURL(%q, %d) = %q, want %q", tt.url, tt.page, got, tt.want)
			}
		})
	}
}

func TestHasNextPage_NextLink(t *testing.T) {
	html := `<nav class="pager"><ul>
	<li><a href="?page=0">1</a></li>
	<li><a href="?page=1" rel="next">Next ›</a></li>
	</ul></nav>`
	if !HasNextPage(html, 0) {
		t.Error("pager with a Next link should report another page")
	}
}

func TestHasNextPage_DisabledNext(t *testing.T) {
	html := `<nav class="pager"><ul>
	<li><a href="?page=2">3</a></li>
	<li class="disabled"><a href="#">Next</a></li>
	</ul></nav>`
	if HasNextPage(html, 2) {
		t.Error("a disabled Next link on the last page must stop pagination")
	}
}

func TestHasNextPage_NumberedLinks(t *testing.T) {
	html := `<div class="pagination">
	<a href="?page=0">1</a> <a href="?page=1">2</a> <a href="?page=2">3</a>
	</div>`

	if !HasNextPage(html, 0) {
		t.Error("page 3 exists beyond zero-indexed page 0")
	}
	if !HasNextPage(html, 1) {
		t.Error("page 3 exists beyond zero-indexed page 1")
	}
	if HasNextPage(html, 2) {
		t.Error("zero-indexed page 2 is the last numbered page")
	}
}

func TestHasNextPage_NoPager(t *testing.T) {
	html := `<div class="view-content"><div class="views-row">one event</div></div>`
	if HasNextPage(html, 0) {
		t.Error("a page without a pager is a single page")
	}
}

func TestHasNextPage_MalformedHTML(t *testing.T) {
	if HasNextPage("<<<not html>>>", 0) {
		t.Error("garbage input must not report more pages")
	}
}
