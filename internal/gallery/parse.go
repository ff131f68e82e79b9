package gallery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSlots is how many gallery positions a page exposes; the layout pins
// entries via an inline "order: N" style.
const maxSlots = 6

// placeholderUser is shown when a skin has no associated player.
const placeholderUser = "—"

// Entry is one scraped gallery record. User is null when the slot carries
// the placeholder glyph or no header at all.
type Entry struct {
	User  *string `json:"user"`
	ID    string  `json:"id"`
	Count int     `json:"count"`
}

// ParseGallery reads the six fixed slot positions out of a rendered gallery
// page. Missing slots and slots without a skin id are skipped; a malformed
// count defaults to zero.
func ParseGallery(html string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse gallery html: %w", err)
	}

	entries := make([]Entry, 0, maxSlots)
	for order := 0; order < maxSlots; order++ {
		slot := doc.Find(fmt.Sprintf(`.col-4.col-md-2[style*="order: %d"]`, order)).First()
		if slot.Length() == 0 {
			continue
		}

		id := skinID(slot.Find("a").First().AttrOr("href", ""))
		if id == "" {
			continue
		}

		entries = append(entries, Entry{
			User:  slotUser(slot),
			ID:    id,
			Count: slotCount(slot),
		})
	}

	return entries, nil
}

func slotUser(slot *goquery.Selection) *string {
	name := strings.TrimSpace(slot.Find(".card-header span").First().Text())
	if name == "" || name == placeholderUser {
		return nil
	}
	return &name
}

// skinID is the trailing path segment of the entry's primary link.
func skinID(href string) string {
	href = strings.TrimSuffix(strings.TrimSpace(href), "/")
	if href == "" {
		return ""
	}
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}

// slotCount parses the star-decorated popularity badge, e.g. "736★".
func slotCount(slot *goquery.Selection) int {
	text := strings.TrimSpace(slot.Find(".position-absolute.bottom-0.end-0.text-muted").First().Text())
	text = strings.ReplaceAll(text, "★", "")
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return count
}
