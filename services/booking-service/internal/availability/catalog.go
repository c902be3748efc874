package availability

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

// Catalog is the fixed set of offerable slots: calendar dates mapped to the
// times of day offered on them. Dates and times carry no time zone. A Catalog
// is never modified after construction and is safe for concurrent use.
type Catalog struct {
	dates []string
	times map[string][]string
}

var (
	ErrInvalidDate = errors.New("invalid catalog date")
	ErrInvalidTime = errors.New("invalid catalog time")
	ErrEmptyDate   = errors.New("catalog date has no times")
)

// NewCatalog validates entries and copies them. Every date must use
// YYYY-MM-DD and offer at least one HH:MM time. Duplicate times on a date are
// dropped, keeping the first occurrence.
func NewCatalog(entries map[string][]string) (*Catalog, error) {
	c := &Catalog{
		dates: make([]string, 0, len(entries)),
		times: make(map[string][]string, len(entries)),
	}
	for date, times := range entries {
		if !canonical(DateLayout, date) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		if len(times) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyDate, date)
		}
		seen := make(map[string]struct{}, len(times))
		unique := make([]string, 0, len(times))
		for _, tod := range times {
			if !canonical(TimeLayout, tod) {
				return nil, fmt.Errorf("%w: %q on %s", ErrInvalidTime, tod, date)
			}
			if _, dup := seen[tod]; dup {
				continue
			}
			seen[tod] = struct{}{}
			unique = append(unique, tod)
		}
		c.dates = append(c.dates, date)
		c.times[date] = unique
	}
	// YYYY-MM-DD sorts chronologically as a string.
	sort.Strings(c.dates)
	return c, nil
}

// LoadCatalog reads a JSON object of date -> [times].
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var entries map[string][]string
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(entries)
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	var entries map[string][]string
	if err := json.Unmarshal(defaultCatalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return NewCatalog(entries)
}

// OpenCatalog loads the catalog from path, or the embedded one when path is empty.
func OpenCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// TimesFor returns the times offered on date. ok is false for unknown dates.
func (c *Catalog) TimesFor(date string) (times []string, ok bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.times[date]
	if !ok {
		return nil, false
	}
	return append([]string(nil), t...), true
}

// Dates returns all catalog dates in ascending order.
func (c *Catalog) Dates() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.dates...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.dates)
}

func (c *Catalog) offers(date, tod string) bool {
	if c == nil {
		return false
	}
	for _, t := range c.times[date] {
		if t == tod {
			return true
		}
	}
	return false
}

// canonical reports whether s parses with layout and formats back unchanged,
// which rejects forms like "9:00" or "2026-3-1".
func canonical(layout, s string) bool {
	t, err := time.Parse(layout, s)
	return err == nil && t.Format(layout) == s
}
