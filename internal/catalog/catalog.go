// Package catalog holds the static venue dataset and the category lookup
// used by the recommendation pipeline.
package catalog

import (
	"encoding/json"
	"math/rand/v2"
	"sort"
	"strings"
)

const (
	// DefaultFallback is the bucket used when a category is unknown or empty.
	DefaultFallback = "GENERAL"
	// DefaultMaxResults caps the number of venues returned by Lookup.
	DefaultMaxResults = 5
)

// Venue is one entry of the dataset. Fields the bot does not interpret are
// kept in Extra and passed through to the formatter untouched.
type Venue struct {
	Name        string
	Description string
	Address     string
	Price       string
	URL         string
	Extra       map[string]any
}

// MarshalJSON flattens the venue into a single object, omitting empty fields.
func (v Venue) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(v.Extra)+5)
	for k, val := range v.Extra {
		out[k] = val
	}
	set := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	set("name", v.Name)
	set("description", v.Description)
	set("address", v.Address)
	set("price", v.Price)
	set("url", v.URL)
	return json.Marshal(out)
}

// CategoryInfo summarises one bucket of the catalog.
type CategoryInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Catalog maps normalised category keys to ordered venue lists. It is
// immutable after construction and safe for concurrent use.
type Catalog struct {
	venues     map[string][]Venue
	fallback   string
	maxResults int
	shuffle    func(n int, swap func(i, j int))
	validate   bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithMaxResults sets the Lookup cap. Non-positive values are ignored.
func WithMaxResults(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithFallback sets the fallback category name.
func WithFallback(name string) Option {
	return func(c *Catalog) {
		if key := NormalizeCategory(name); key != "" {
			c.fallback = key
		}
	}
}

// WithShuffle replaces the permutation source used by Lookup.
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(c *Catalog) {
		if fn != nil {
			c.shuffle = fn
		}
	}
}

// WithSchemaValidation makes Load check documents against the dataset schema.
func WithSchemaValidation(enabled bool) Option {
	return func(c *Catalog) { c.validate = enabled }
}

func newCatalog(opts []Option) *Catalog {
	c := &Catalog{
		venues:     map[string][]Venue{},
		fallback:   DefaultFallback,
		maxResults: DefaultMaxResults,
		shuffle:    rand.Shuffle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New builds a catalog from in-memory data. Keys are normalised; lists for
// keys that collide after normalisation are concatenated in key order.
func New(data map[string][]Venue, opts ...Option) *Catalog {
	c := newCatalog(opts)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		key := NormalizeCategory(k)
		if key == "" {
			continue
		}
		list := make([]Venue, len(data[k]))
		copy(list, data[k])
		c.venues[key] = append(c.venues[key], list...)
	}
	if _, ok := c.venues[c.fallback]; !ok {
		c.venues[c.fallback] = nil
	}
	return c
}

// Empty returns a catalog that only has an empty fallback bucket.
func Empty(opts ...Option) *Catalog {
	return New(nil, opts...)
}

// NormalizeCategory trims and upper-cases a category label.
func NormalizeCategory(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Lookup returns up to MaxResults venues of the category in random order.
// When the category is unknown or empty the fallback bucket is used instead;
// the two are never mixed. The result is empty only when both are empty.
func (c *Catalog) Lookup(category string) []Venue {
	list := c.venues[NormalizeCategory(category)]
	if len(list) == 0 {
		list = c.venues[c.fallback]
	}
	if len(list) == 0 {
		return nil
	}

	picked := make([]Venue, len(list))
	copy(picked, list)
	c.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > c.maxResults {
		picked = picked[:c.maxResults]
	}
	return picked
}

// ResolveCategory reports which bucket Lookup would read for the label.
func (c *Catalog) ResolveCategory(category string) string {
	key := NormalizeCategory(category)
	if len(c.venues[key]) > 0 {
		return key
	}
	return c.fallback
}

// Venues returns a copy of the full, ordered list for one category without
// applying the fallback.
func (c *Catalog) Venues(category string) []Venue {
	list := c.venues[NormalizeCategory(category)]
	out := make([]Venue, len(list))
	copy(out, list)
	return out
}

// Has reports whether the category exists, even if it is empty.
func (c *Catalog) Has(category string) bool {
	_, ok := c.venues[NormalizeCategory(category)]
	return ok
}

// Categories lists all buckets sorted by name.
func (c *Catalog) Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(c.venues))
	for name, list := range c.venues {
		out = append(out, CategoryInfo{Name: name, Count: len(list)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len is the total number of venues across all categories.
func (c *Catalog) Len() int {
	n := 0
	for _, list := range c.venues {
		n += len(list)
	}
	return n
}

func (c *Catalog) FallbackCategory() string { return c.fallback }

func (c *Catalog) MaxResults() int { return c.maxResults }
