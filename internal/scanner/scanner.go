package scanner

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
)

// Feed describes a concrete endpoint provided by config and how many entries
// to take from it.
type Feed struct {
	Name  string
	URL   string
	Limit int
}

// Request carries all parameters required to execute a scan.
type Request struct {
	Day      time.Time
	SiteName string
	Feeds    []Feed
	Options  map[string]string
}

// Scanner captures a single strategy implementation (plain RSS, news search, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Article, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry(scanners ...Scanner) *Registry {
	r := &Registry{scanners: map[string]Scanner{}}
	for _, s := range scanners {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, errors.Newf("scanner %s is not registered", name)
}
