package admin

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/veloxext"
)

// MatchOp is the comparison applied to a search field.
type MatchOp int

// Match operators, selected by a prefix on the field name.
const (
	OpContains   MatchOp = iota // no prefix, or "@"
	OpStartsWith                // "^"
	OpExact                     // "="
)

// SearchField is a search field name with its operator.
type SearchField struct {
	Name string
	Op   MatchOp
}

// ParseSearchField parses "^name", "=name", "@name" or "name".
func ParseSearchField(s string) SearchField {
	switch {
	case strings.HasPrefix(s, "^"):
		return SearchField{Name: s[1:], Op: OpStartsWith}
	case strings.HasPrefix(s, "="):
		return SearchField{Name: s[1:], Op: OpExact}
	case strings.HasPrefix(s, "@"):
		return SearchField{Name: s[1:], Op: OpContains}
	default:
		return SearchField{Name: s, Op: OpContains}
	}
}

// SearchQuery matches entities where every word matches at least one field.
// Matching is case-insensitive.
type SearchQuery struct {
	Fields []SearchField
	Words  []string
	// Limit caps the number of matches; zero means no limit.
	Limit int
}

// Match is one autocomplete suggestion.
type Match struct {
	PK    any
	Label string
}

// Searcher is the data access the autocomplete endpoint needs. Get with the
// field "pk" resolves a primary key.
type Searcher interface {
	Lookup
	Search(ctx context.Context, q SearchQuery) ([]Match, error)
}

// Autocomplete serves the foreignkey_autocomplete/ endpoint of the
// registered models.
type Autocomplete struct {
	limit   int
	log     *zap.Logger
	cache   *expirable.LRU[string, []Match]
	group   singleflight.Group
	metrics *metrics
	mu      sync.RWMutex
	models  map[string]autocompleteModel
}

type autocompleteModel struct {
	store  Searcher
	fields []string
}

// AutocompleteOption configures an Autocomplete.
type AutocompleteOption func(*Autocomplete)

// WithLimit caps the number of suggestions per request.
func WithLimit(n int) AutocompleteOption {
	return func(a *Autocomplete) { a.limit = n }
}

// WithLogger sets the logger of the endpoint.
func WithLogger(log *zap.Logger) AutocompleteOption {
	return func(a *Autocomplete) { a.log = log }
}

// WithCache keeps up to size search results for ttl. Concurrent misses
// for the same search share one store query. Lookups by object_pk are
// never cached.
func WithCache(size int, ttl time.Duration) AutocompleteOption {
	return func(a *Autocomplete) {
		if size > 0 {
			a.cache = expirable.NewLRU[string, []Match](size, nil, ttl)
		}
	}
}

// WithMetrics registers request metrics with reg.
func WithMetrics(reg prometheus.Registerer) AutocompleteOption {
	return func(a *Autocomplete) { a.metrics = newMetrics(reg) }
}

// NewAutocomplete returns an endpoint without models.
func NewAutocomplete(opts ...AutocompleteOption) *Autocomplete {
	a := &Autocomplete{models: make(map[string]autocompleteModel), log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register exposes a model. searchFields are the fields requests may
// search, with optional operator prefixes; they are also the default when
// a request names none.
func (a *Autocomplete) Register(app, model string, store Searcher, searchFields ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.models[app+"."+strings.ToLower(model)] = autocompleteModel{store: store, fields: slices.Clone(searchFields)}
}

// Mount adds the endpoint to a router group rooted at the admin prefix:
//
//	ac.Mount(engine.Group(site.Prefix()))
func (a *Autocomplete) Mount(r gin.IRoutes) {
	r.GET("/:app/:model/"+autocompletePath, a.handle)
}

func (a *Autocomplete) model(app, model string) (autocompleteModel, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.models[app+"."+strings.ToLower(model)]
	return m, ok
}

// handle answers with one "label|pk" line per match for q, or with the
// label of object_pk.
func (a *Autocomplete) handle(c *gin.Context) {
	start := time.Now()
	key := c.Param("app") + "." + strings.ToLower(c.Param("model"))
	m, ok := a.model(c.Param("app"), c.Param("model"))
	if !ok {
		key = "unknown"
	}
	defer func() { a.metrics.observe(key, c.Writer.Status(), start) }()

	query, objectPK := c.Query("q"), c.Query("object_pk")
	if !ok || (query == "" && objectPK == "") {
		c.Status(http.StatusNotFound)
		return
	}
	fields, err := m.searchFields(c.Query("search_fields"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	if query == "" {
		obj, err := m.store.Get(ctx, "pk", objectPK)
		switch {
		case veloxext.IsNotFound(err):
			c.String(http.StatusOK, "")
		case err != nil:
			a.log.Error("autocomplete lookup failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Status(http.StatusInternalServerError)
		default:
			c.String(http.StatusOK, fmt.Sprint(obj))
		}
		return
	}
	matches, err := a.search(ctx, key, m, SearchQuery{
		Fields: fields,
		Words:  strings.Fields(query),
		Limit:  a.limit,
	})
	if err != nil {
		a.log.Error("autocomplete search failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	var b strings.Builder
	for _, match := range matches {
		fmt.Fprintf(&b, "%s|%v\n", match.Label, match.PK)
	}
	c.String(http.StatusOK, b.String())
}

func (a *Autocomplete) search(ctx context.Context, model string, m autocompleteModel, q SearchQuery) ([]Match, error) {
	if a.cache == nil {
		return m.store.Search(ctx, q)
	}
	key := fmt.Sprintf("%s|%v|%q|%d", model, q.Fields, q.Words, q.Limit)
	if matches, ok := a.cache.Get(key); ok {
		a.metrics.hit()
		return matches, nil
	}
	v, err, _ := a.group.Do(key, func() (any, error) {
		matches, err := m.store.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		a.cache.Add(key, matches)
		return matches, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Match), nil
}

// searchFields parses the requested fields, rejecting any that were not
// registered for the model.
func (m autocompleteModel) searchFields(requested string) ([]SearchField, error) {
	allowed := make(map[string]SearchField, len(m.fields))
	defaults := make([]SearchField, 0, len(m.fields))
	for _, f := range m.fields {
		sf := ParseSearchField(f)
		allowed[sf.Name] = sf
		defaults = append(defaults, sf)
	}
	if requested == "" {
		return defaults, nil
	}
	var fields []SearchField
	for _, f := range strings.Split(requested, ",") {
		if f = strings.TrimSpace(f); f == "" {
			continue
		}
		sf := ParseSearchField(f)
		if _, ok := allowed[sf.Name]; !ok {
			return nil, fmt.Errorf("admin: %q is not a search field", sf.Name)
		}
		fields = append(fields, sf)
	}
	if len(fields) == 0 {
		return defaults, nil
	}
	return fields, nil
}
