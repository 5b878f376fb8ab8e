package history

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ArchiveRef identifies one calendar month's worth of a player's games. The
// URL's final two path segments carry the year and month.
type ArchiveRef struct {
	Year  int
	Month int
	URL   string
}

// ParseArchiveRef extracts (year, month) from a monthly archive URL like
// `.../player/<user>/games/2024/06`.
func ParseArchiveRef(locator string) (ArchiveRef, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return ArchiveRef{}, fmt.Errorf("parse archive url %q: %w", locator, err)
	}
	parts := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	if len(parts) < 2 {
		return ArchiveRef{}, fmt.Errorf("archive url %q has no year/month segments", locator)
	}
	year, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return ArchiveRef{}, fmt.Errorf("archive url %q: year segment: %w", locator, err)
	}
	month, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return ArchiveRef{}, fmt.Errorf("archive url %q: month segment: %w", locator, err)
	}
	return ArchiveRef{Year: year, Month: month, URL: locator}, nil
}

// beforeYM reports whether a's (year, month) sorts before b's, year first.
func (a ArchiveRef) beforeYM(year, month int) bool {
	if a.Year != year {
		return a.Year < year
	}
	return a.Month < month
}

func (a ArchiveRef) afterYM(year, month int) bool {
	if a.Year != year {
		return a.Year > year
	}
	return a.Month > month
}
