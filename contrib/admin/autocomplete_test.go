package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeSearcher serves fixed matches and records the last query.
type fakeSearcher struct {
	fakeLookup
	matches []Match
	err     error
	query   SearchQuery
}

func (f *fakeSearcher) Search(_ context.Context, q SearchQuery) ([]Match, error) {
	f.query = q
	return f.matches, f.err
}

func newAutocompleteRouter(t *testing.T, store Searcher, opts ...AutocompleteOption) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ac := NewAutocomplete(opts...)
	ac.Register("shop", "Customer", store, "name", "^email")
	ac.Mount(r.Group("/admin"))
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestAutocompleteSearch(t *testing.T) {
	store := &fakeSearcher{matches: []Match{
		{PK: 1, Label: "Alice Smith"},
		{PK: 2, Label: "Alicia Keys"},
	}}
	r := newAutocompleteRouter(t, store, WithLimit(10))

	w := get(r, "/admin/shop/customer/foreignkey_autocomplete/?q=ali+sm")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice Smith|1\nAlicia Keys|2\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, SearchQuery{
		Fields: []SearchField{{Name: "name", Op: OpContains}, {Name: "email", Op: OpStartsWith}},
		Words:  []string{"ali", "sm"},
		Limit:  10,
	}, store.query)

	t.Run("RequestedFields", func(t *testing.T) {
		w := get(r, "/admin/shop/customer/foreignkey_autocomplete/?q=bob&search_fields=%3Demail")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []SearchField{{Name: "email", Op: OpExact}}, store.query.Fields)
	})

	t.Run("DisallowedField", func(t *testing.T) {
		w := get(r, "/admin/shop/customer/foreignkey_autocomplete/?q=bob&search_fields=password")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"password" is not a search field`)
	})

	t.Run("NoMatches", func(t *testing.T) {
		store.matches = nil
		w := get(r, "/admin/shop/customer/foreignkey_autocomplete/?q=zed")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestAutocompleteObjectPK(t *testing.T) {
	store := &fakeSearcher{fakeLookup: fakeLookup{objects: map[string]any{
		"pk=3": customer{ID: 3, Name: "Alice Smith"},
	}}}
	r := newAutocompleteRouter(t, store)

	w := get(r, "/admin/shop/customer/foreignkey_autocomplete/?object_pk=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice Smith", w.Body.String())
	assert.Equal(t, []string{"pk=3"}, store.calls)

	w = get(r, "/admin/shop/customer/foreignkey_autocomplete/?object_pk=99")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAutocompleteNotFound(t *testing.T) {
	r := newAutocompleteRouter(t, &fakeSearcher{})
	for _, target := range []string{
		"/admin/shop/customer/foreignkey_autocomplete/",
		"/admin/shop/supplier/foreignkey_autocomplete/?q=a",
		"/admin/crm/customer/foreignkey_autocomplete/?q=a",
	} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusNotFound, get(r, target).Code)
		})
	}
}

func TestAutocompleteStoreError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := &fakeSearcher{err: errors.New("connection refused")}
	r := newAutocompleteRouter(t, store, WithLogger(zap.New(core)))

	w := get(r, "/admin/shop/customer/foreignkey_autocomplete/?q=a")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "autocomplete search failed", entry.Message)
	assert.Equal(t, "/admin/shop/customer/foreignkey_autocomplete/", entry.ContextMap()["path"])
}

func TestParseSearchField(t *testing.T) {
	tests := map[string]SearchField{
		"name":   {Name: "name", Op: OpContains},
		"@bio":   {Name: "bio", Op: OpContains},
		"^email": {Name: "email", Op: OpStartsWith},
		"=code":  {Name: "code", Op: OpExact},
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSearchField(in), in)
	}
}

// countingSearcher counts the searches that reach the store.
type countingSearcher struct {
	fakeSearcher
	searches int
}

func (f *countingSearcher) Search(ctx context.Context, q SearchQuery) ([]Match, error) {
	f.searches++
	return f.fakeSearcher.Search(ctx, q)
}

func TestAutocompleteCacheAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &countingSearcher{fakeSearcher: fakeSearcher{matches: []Match{{PK: 1, Label: "Alice"}}}}
	ac := NewAutocomplete(WithCache(16, time.Minute), WithMetrics(prometheus.NewRegistry()))
	ac.Register("shop", "Customer", store, "name")
	r := gin.New()
	ac.Mount(r.Group("/admin"))

	for range 3 {
		w := get(r, "/admin/shop/customer/foreignkey_autocomplete/?q=ali")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Alice|1\n", w.Body.String())
	}
	assert.Equal(t, 1, store.searches)

	get(r, "/admin/shop/customer/foreignkey_autocomplete/?q=bob")
	assert.Equal(t, 2, store.searches, "different words miss the cache")

	get(r, "/admin/shop/order/foreignkey_autocomplete/?q=a")

	assert.Equal(t, float64(4), testutil.ToFloat64(ac.metrics.requests.WithLabelValues("shop.customer", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ac.metrics.requests.WithLabelValues("unknown", "404")))
	assert.Equal(t, float64(2), testutil.ToFloat64(ac.metrics.cacheHit))
}

// blockingSearcher holds every search until release is closed.
type blockingSearcher struct {
	fakeSearcher
	searches atomic.Int32
	started  chan struct{}
	release  chan struct{}
}

func (f *blockingSearcher) Search(context.Context, SearchQuery) ([]Match, error) {
	if f.searches.Add(1) == 1 {
		close(f.started)
	}
	<-f.release
	return []Match{{PK: 1, Label: "Alice"}}, nil
}

func TestAutocompleteConcurrentMisses(t *testing.T) {
	store := &blockingSearcher{started: make(chan struct{}), release: make(chan struct{})}
	ac := NewAutocomplete(WithCache(16, time.Minute))
	ac.Register("shop", "Customer", store, "name")
	m, ok := ac.model("shop", "Customer")
	require.True(t, ok)
	q := SearchQuery{Fields: []SearchField{{Name: "name"}}, Words: []string{"ali"}}

	var wg sync.WaitGroup
	results := make([][]Match, 5)
	search := func(i int) {
		defer wg.Done()
		matches, err := ac.search(context.Background(), "shop.customer", m, q)
		assert.NoError(t, err)
		results[i] = matches
	}
	wg.Add(len(results))
	go search(0)
	<-store.started
	for i := 1; i < len(results); i++ {
		go search(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.Equal(t, int32(1), store.searches.Load())
	for _, matches := range results {
		assert.Equal(t, []Match{{PK: 1, Label: "Alice"}}, matches)
	}
}
