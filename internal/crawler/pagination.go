// Package crawler handles listing-page traversal: building page URLs and
// deciding when a paginated listing is exhausted.
package crawler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxPages is the hard page cap applied when a source doesn't set its own.
// Department calendars past ten pages are archives, not upcoming events.
const MaxPages = 10

// pagerSelectors locate the pagination block on the sites we harvest.
var pagerSelectors = []string{
	"nav.pager",
	"ul.pager",
	"div.pagination",
	"nav.pagination",
}

// NextURL builds the URL for a zero-indexed listing page. Page zero is the
// configured events URL itself; later pages use the Drupal ?page=N query.
func NextURL(eventsURL string, page int) string {
	if page <= 0 {
		return eventsURL
	}
	sep := "?"
	if strings.Contains(eventsURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", eventsURL, sep, page)
}

// HasNextPage inspects listing HTML for evidence that a page beyond
// currentPage (zero-indexed) exists. A "Next" link in the pager is
// authoritative; failing that, a numbered page link beyond the current page
// counts. Pages without a recognizable pager are single pages.
func HasNextPage(html string, currentPage int) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	for _, sel := range pagerSelectors {
		pager := doc.Find(sel).First()
		if pager.Length() == 0 {
			continue
		}
		return pagerHasNext(pager, currentPage)
	}
	return false
}

func pagerHasNext(pager *goquery.Selection, currentPage int) bool {
	hasNext := false
	pager.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		rel, _ := a.Attr("rel")
		if strings.Contains(text, "next") || rel == "next" {
			if !isDisabled(a) {
				hasNext = true
				return false
			}
		}
		return true
	})
	if hasNext {
		return true
	}

	// No explicit Next link; fall back to numbered links. Displayed numbers
	// are one-indexed, so page N+2 means something beyond zero-indexed N.
	maxNumber := 0
	pager.Find("a").Each(func(_ int, a *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > maxNumber {
			maxNumber = n
		}
	})
	return maxNumber > currentPage+1
}

func isDisabled(a *goquery.Selection) bool {
	if _, ok := a.Attr("disabled"); ok {
		return true
	}
	class, _ := a.Attr("class")
	if strings.Contains(class, "disabled") {
		return true
	}
	parentClass, _ := a.Parent().Attr("class")
	return strings.Contains(parentClass, "disabled")
}
