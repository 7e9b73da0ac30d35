package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/inaratravel/concierge/plugin/ai/cache"
)

// TravelPackage is one row of the authoritative travel catalog. Prices are
// stored in whole rupiah.
type TravelPackage struct {
	ID           int32
	Name         string
	Price        int64
	DurationDays int32
	Airline      string
	Features     string
}

const catalogCacheKey = "catalog/snapshot"

// CatalogSnapshot serves the catalog rendered as prompt text. The rendering
// is cached with a TTL; concurrent rebuilds after expiry collapse into a
// single database read.
type CatalogSnapshot struct {
	store *Store
	cache *cache.LRU
	group singleflight.Group
}

// NewCatalogSnapshot creates a snapshot service refreshing at most once per ttl.
func NewCatalogSnapshot(store *Store, ttl time.Duration) *CatalogSnapshot {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogSnapshot{
		store: store,
		cache: cache.New(4, ttl),
	}
}

// Current returns the rendered catalog text, rebuilding it on cache expiry.
// An empty catalog renders as an empty string, not an error.
func (s *CatalogSnapshot) Current(ctx context.Context) (string, error) {
	if cached, ok := s.cache.Get(catalogCacheKey); ok {
		return string(cached), nil
	}

	v, err, _ := s.group.Do(catalogCacheKey, func() (any, error) {
		packages, err := s.store.ListPackages(ctx)
		if err != nil {
			return "", err
		}
		text := renderCatalog(packages)
		s.cache.Set(catalogCacheKey, []byte(text))
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached rendering so the next read hits the database.
func (s *CatalogSnapshot) Invalidate() {
	s.cache.Delete(catalogCacheKey)
}

func renderCatalog(packages []*TravelPackage) string {
	if len(packages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("DAFTAR PAKET RESMI SAAT INI:\n")
	for _, p := range packages {
		fmt.Fprintf(&b, "- %s: %s, %d hari, maskapai %s.", p.Name, formatRupiah(p.Price), p.DurationDays, p.Airline)
		if p.Features != "" {
			fmt.Fprintf(&b, " Fasilitas: %s.", p.Features)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatRupiah renders a price as "Rp 25.000.000".
func formatRupiah(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.WriteString("Rp ")
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}
