package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// ErrLinkFormat means a data link's text does not carry "<Month> <Year>".
// The publisher's link wording changed and the fetcher needs updating.
var ErrLinkFormat = errors.New("link text has no month and year")

// Link is an anchor on the statistics homepage that points at a workbook.
type Link struct {
	Text string
	Href string
}

// IsDataLink reports whether href points at a spreadsheet release.
func IsDataLink(href string) bool {
	return strings.HasSuffix(href, workbookExt)
}

// DataLinks returns every workbook anchor in doc, with hrefs resolved against base.
func DataLinks(doc *goquery.Document, base *url.URL) []Link {
	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !IsDataLink(href) {
			return
		}
		if u, err := url.Parse(href); err == nil && base != nil {
			href = base.ResolveReference(u).String()
		}
		links = append(links, Link{Text: s.Text(), Href: href})
	})
	return links
}

// LinkDate extracts the reporting month from anchor text such as
// "Virtual Ward Capacity and Occupancy February 2024 (XLSX, 45KB)".
// The first all-digit token is the year and the token before it the month.
//
// This is the only place that encodes the publisher's link wording.
func LinkDate(text string) (time.Time, error) {
	tokens := strings.Fields(text)
	year := -1
	for i, tok := range tokens {
		if isDigits(tok) {
			year = i
			break
		}
	}
	if year < 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrLinkFormat, text)
	}
	if year == 0 {
		return time.Time{}, fmt.Errorf("%w: no month before year in %q", ErrLinkFormat, text)
	}
	value := tokens[year-1] + " " + tokens[year]
	for _, layout := range []string{"January 2006", "Jan 2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unknown month %q in %q", ErrLinkFormat, tokens[year-1], text)
}

// LinkFilename returns the raw filename for a data link, e.g.
// "2024_02_Monthly_Virtual_Ward.xlsx".
func LinkFilename(text string) (string, error) {
	date, err := LinkDate(text)
	if err != nil {
		return "", err
	}
	return RawFilename(date), nil
}

// RawFilename is the canonical name of a downloaded release for a month.
func RawFilename(date time.Time) string {
	return date.Format("2006_01") + "_Monthly_Virtual_Ward" + workbookExt
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
