package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var descriptionClass = regexp.MustCompile(`(?i)description`)

// Details holds what a listing page adds beyond the search-result card.
type Details struct {
	Description string `json:"description"`
	Phone       string `json:"phone,omitempty"`
}

// ParseDetails reads the full description and a public phone number from a listing page.
func ParseDetails(html string) (Details, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Details{}, fmt.Errorf("parse detail html: %w", err)
	}

	var d Details
	if desc := doc.Find(`div[itemprop="description"]`).First(); desc.Length() > 0 {
		d.Description = CleanText(desc.Text())
	} else {
		d.Description = firstWithClass(doc.Find("div"), descriptionClass)
	}

	if href, ok := doc.Find(`a[href*="tel:"]`).First().Attr("href"); ok {
		if i := strings.Index(href, "tel:"); i >= 0 {
			d.Phone = strings.TrimSpace(href[i+len("tel:"):])
		}
	}
	return d, nil
}
