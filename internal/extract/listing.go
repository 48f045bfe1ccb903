package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/lead-hunter/internal/lead"
)

// MinTitleLen is the shortest link text accepted as a listing title.
const MinTitleLen = 5

var (
	containerClass = regexp.MustCompile(`(?i)(item|card|listing|search)`)
	descClass      = regexp.MustCompile(`(?i)desc`)
	locationClass  = regexp.MustCompile(`(?i)location`)
	priceText      = regexp.MustCompile(`\$[\d,]+`)
)

// ListingOptions parameterizes ExtractListings for one search query.
type ListingOptions struct {
	BaseURL  string
	Pattern  *regexp.Regexp
	Location string
	Source   lead.Source
	Max      int
}

// ExtractListings finds listing links in a rendered search page and returns at most opts.Max
// leads with distinct URLs. Twice Max links are inspected to absorb duplicates.
func ExtractListings(html string, opts ListingOptions) ([]lead.Lead, error) {
	if opts.Pattern == nil {
		return nil, fmt.Errorf("listing pattern is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	links := doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return opts.Pattern.MatchString(href)
	})

	budget := opts.Max * 2
	seen := make(map[string]struct{})
	out := make([]lead.Lead, 0, max(opts.Max, 0))
	links.EachWithBreak(func(i int, link *goquery.Selection) bool {
		if opts.Max > 0 && (i >= budget || len(out) >= opts.Max) {
			return false
		}
		l, ok := parseListingLink(link, base, opts)
		if !ok {
			return true
		}
		if _, dup := seen[l.URL]; dup {
			return true
		}
		seen[l.URL] = struct{}{}
		out = append(out, l)
		return true
	})
	return out, nil
}

func parseListingLink(link *goquery.Selection, base *url.URL, opts ListingOptions) (lead.Lead, bool) {
	title := CleanText(link.Text())
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" || len([]rune(title)) < MinTitleLen {
		return lead.Lead{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return lead.Lead{}, false
	}

	candidate := lead.Lead{
		Title:    title,
		URL:      base.ResolveReference(ref).String(),
		Location: opts.Location,
		Source:   opts.Source,
	}

	if container := listingContainer(link); container.Length() > 0 {
		candidate.Description = containerDescription(container)
		candidate.Budget = firstTextMatch(container, priceText)
		if loc := firstWithClass(container.Find("span"), locationClass); loc != "" {
			candidate.Location = loc
		}
	}

	l, err := lead.New(candidate)
	if err != nil {
		return lead.Lead{}, false
	}
	return l, true
}

func listingContainer(link *goquery.Selection) *goquery.Selection {
	divs := link.ParentsFiltered("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return containerClass.MatchString(class)
	})
	if divs.Length() > 0 {
		return divs.First()
	}
	return link.ParentsFiltered("article").First()
}

// containerDescription is capped like a feed summary.
func containerDescription(container *goquery.Selection) string {
	var desc string
	if p := container.Find("p").First(); p.Length() > 0 {
		desc = CleanText(p.Text())
	} else {
		desc = firstWithClass(container.Find("div"), descClass)
	}
	return Ellipsize(desc, SummaryLimit-len(ellipsis), SummaryLimit)
}

func firstWithClass(sel *goquery.Selection, re *regexp.Regexp) string {
	match := sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return re.MatchString(class)
	}).First()
	if match.Length() == 0 {
		return ""
	}
	return CleanText(match.Text())
}

// firstTextMatch returns the first text node, in document order, that matches re.
func firstTextMatch(sel *goquery.Selection, re *regexp.Regexp) string {
	var found string
	sel.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); re.MatchString(t) {
				found = t
				return false
			}
			return true
		}
		found = firstTextMatch(c, re)
		return found == ""
	})
	return found
}
