package repository

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDDomain tells which backing store issued an identifier.
type IDDomain int

const (
	// DomainVolatile ids come from the in-process store.
	DomainVolatile IDDomain = iota
	// DomainDurable ids are 32 hex characters, the compact form of the
	// UUID primary keys in PostgreSQL.
	DomainDurable
)

var (
	durableIDPattern  = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	volatileIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ClassifyID is the single place that decides which store an id belongs to.
func ClassifyID(id string) IDDomain {
	if durableIDPattern.MatchString(id) {
		return DomainDurable
	}
	return DomainVolatile
}

func IsDurableID(id string) bool {
	return ClassifyID(id) == DomainDurable
}

// PlausiblyVolatile reports whether id has the shape the volatile store issues.
func PlausiblyVolatile(id string) bool {
	return volatileIDPattern.MatchString(id)
}

func FormatDurableID(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

func parseDurableID(id string) (uuid.UUID, error) {
	if !IsDurableID(id) {
		return uuid.Nil, fmt.Errorf("%q is not a durable id: %w", id, ErrNotFound)
	}
	return uuid.Parse(id)
}

// VolatileIDGenerator issues strictly increasing decimal ids derived from the
// wall clock. One generator is shared by all volatile stores of a process.
type VolatileIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewVolatileIDGenerator() *VolatileIDGenerator {
	return &VolatileIDGenerator{now: time.Now}
}

func (g *VolatileIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}
