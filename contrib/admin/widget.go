package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"slices"
	"sort"
	"strings"
)

// Lookup resolves a field value of the target model to an entity. The
// entity's fmt string form is used as its label.
type Lookup interface {
	Get(ctx context.Context, field string, value any) (any, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, field string, value any) (any, error)

// Get implements Lookup.
func (f LookupFunc) Get(ctx context.Context, field string, value any) (any, error) {
	return f(ctx, field, value)
}

// Attrs holds HTML attributes of an input element.
type Attrs map[string]string

const (
	// labelWords is the number of words kept in the label of the current value.
	labelWords = 14
	// autocompletePath is joined to the changelist URL to get the search endpoint.
	autocompletePath = "foreignkey_autocomplete/"
	// searchInputTemplate is the file name looked up in the widget template directories.
	searchInputTemplate = "foreignkey_searchinput.html"
	// rawIDClass is the default class of the text input.
	rawIDClass = "vForeignKeyRawIdAdminField"
)

// ForeignKeySearchInput renders a foreign key as an autocomplete search box
// next to the raw id input, instead of a <select>.
type ForeignKeySearchInput struct {
	rel          Relation
	searchFields []string
	searchPath   string
	template     string
	attrs        Attrs
	lookup       Lookup
	reverser     URLReverser
	renderer     Renderer
	static       StaticResolver
}

// Option configures a ForeignKeySearchInput.
type Option func(*ForeignKeySearchInput)

// WithLookup sets the accessor used to resolve the current value.
func WithLookup(l Lookup) Option {
	return func(w *ForeignKeySearchInput) { w.lookup = l }
}

// WithReverser sets the resolver of the changelist URL.
func WithReverser(r URLReverser) Option {
	return func(w *ForeignKeySearchInput) { w.reverser = r }
}

// WithRenderer sets the template renderer. Defaults to DefaultTemplates().
func WithRenderer(r Renderer) Option {
	return func(w *ForeignKeySearchInput) { w.renderer = r }
}

// WithStatic sets the static asset resolver. Defaults to StaticPrefix("/static/").
func WithStatic(s StaticResolver) Option {
	return func(w *ForeignKeySearchInput) { w.static = s }
}

// WithSearchPath overrides the autocomplete endpoint.
func WithSearchPath(p string) Option {
	return func(w *ForeignKeySearchInput) { w.searchPath = p }
}

// WithTemplate renders the widget with the named template only, skipping
// the per-app and per-model lookup.
func WithTemplate(name string) Option {
	return func(w *ForeignKeySearchInput) { w.template = name }
}

// WithAttrs sets default attributes of the text input.
func WithAttrs(attrs Attrs) Option {
	return func(w *ForeignKeySearchInput) { w.attrs = attrs }
}

// NewForeignKeySearchInput returns a search widget for the relation.
// A Lookup and a URLReverser are required.
func NewForeignKeySearchInput(rel Relation, searchFields []string, opts ...Option) (*ForeignKeySearchInput, error) {
	w := &ForeignKeySearchInput{
		rel:          rel,
		searchFields: slices.Clone(searchFields),
	}
	for _, opt := range opts {
		opt(w)
	}
	switch {
	case rel.App == "" || rel.Model == "":
		return nil, errors.New("admin: relation requires an app label and a model")
	case w.lookup == nil:
		return nil, errors.New("admin: search input requires a lookup")
	case w.reverser == nil:
		return nil, errors.New("admin: search input requires a URL reverser")
	}
	if w.renderer == nil {
		w.renderer = DefaultTemplates()
	}
	if w.static == nil {
		w.static = StaticPrefix("/static/")
	}
	return w, nil
}

// Media returns the scripts and stylesheet of the widget. It is resolved on
// every call.
func (w *ForeignKeySearchInput) Media() Media {
	js := make([]string, len(searchInputJS))
	for i, p := range searchInputJS {
		js[i] = w.static.URL(p)
	}
	return Media{
		CSS: map[string][]string{"all": {w.static.URL(searchInputCSS)}},
		JS:  js,
	}
}

// SearchInputContext is the data the widget template is executed with.
type SearchInputContext struct {
	URL          string
	RelatedURL   string
	SearchPath   string
	SearchFields string
	AppLabel     string
	ModelName    string
	Label        string
	Name         string
}

// TemplateNames returns the candidate templates in lookup order.
func (w *ForeignKeySearchInput) TemplateNames() []string {
	if w.template != "" {
		return []string{w.template}
	}
	model := w.rel.ModelName()
	return []string{
		templatePath(w.rel.App, model, searchInputTemplate),
		templatePath(w.rel.App, searchInputTemplate),
		templatePath(searchInputTemplate),
	}
}

func templatePath(elem ...string) string {
	return "veloxext/widgets/" + strings.Join(elem, "/")
}

// Render renders the widget for the field name and its current value. The
// search markup comes first, followed by the raw id text input.
func (w *ForeignKeySearchInput) Render(ctx context.Context, name string, value any, attrs Attrs) (template.HTML, error) {
	relatedURL, err := w.reverser.Reverse(w.rel.ChangelistName())
	if err != nil {
		return "", err
	}
	searchPath := w.searchPath
	if searchPath == "" {
		if searchPath, err = joinURL(relatedURL, autocompletePath); err != nil {
			return "", err
		}
	}
	merged := make(Attrs, len(w.attrs)+len(attrs)+1)
	for k, v := range w.attrs {
		merged[k] = v
	}
	for k, v := range attrs {
		merged[k] = v
	}
	if _, ok := merged["class"]; !ok {
		merged["class"] = rawIDClass
	}
	output := []template.HTML{renderTextInput(name, value, merged)}

	var label string
	if !isEmpty(value) {
		if label, err = w.labelFor(ctx, value); err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	err = w.renderer.Render(&buf, w.TemplateNames(), SearchInputContext{
		URL:          queryString(w.rel.URLParameters()),
		RelatedURL:   relatedURL,
		SearchPath:   searchPath,
		SearchFields: strings.Join(w.searchFields, ","),
		AppLabel:     w.rel.App,
		ModelName:    w.rel.ModelName(),
		Label:        label,
		Name:         name,
	})
	if err != nil {
		return "", err
	}
	output = append(output, template.HTML(buf.String()))
	slices.Reverse(output)
	var b strings.Builder
	for _, o := range output {
		b.WriteString(string(o))
	}
	return template.HTML(b.String()), nil
}

// labelFor resolves value and returns the truncated string form of the entity.
func (w *ForeignKeySearchInput) labelFor(ctx context.Context, value any) (string, error) {
	obj, err := w.lookup.Get(ctx, w.rel.RelatedField(), value)
	if err != nil {
		return "", err
	}
	return TruncateWords(fmt.Sprint(obj), labelWords, "..."), nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case fmt.Stringer:
		return v.String() == ""
	default:
		return false
	}
}

func joinURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("admin: parse changelist url: %w", err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// renderTextInput renders the raw id input; attributes are sorted by name.
func renderTextInput(name string, value any, attrs Attrs) template.HTML {
	var b strings.Builder
	b.WriteString(`<input type="text" name="` + template.HTMLEscapeString(name) + `"`)
	if !isEmpty(value) {
		b.WriteString(` value="` + template.HTMLEscapeString(fmt.Sprint(value)) + `"`)
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" " + template.HTMLEscapeString(k) + `="` + template.HTMLEscapeString(attrs[k]) + `"`)
	}
	b.WriteString(">")
	return template.HTML(b.String())
}
