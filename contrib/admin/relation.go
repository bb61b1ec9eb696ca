package admin

import (
	"net/url"
	"sort"
	"strings"
)

// Relation describes the target of a foreign key.
type Relation struct {
	// App is the application label of the target model, e.g. "shop".
	App string
	// Model is the object name of the target model, e.g. "Customer".
	Model string
	// PK is the primary key field of the target. Defaults to "id".
	PK string
	// ToField is the field the foreign key points at. Defaults to PK.
	ToField string
	// LimitChoicesTo restricts the changelist the lookup link opens.
	LimitChoicesTo map[string]string
}

// ModelName returns the lower-cased model name used in URLs and template paths.
func (r Relation) ModelName() string {
	return strings.ToLower(r.Model)
}

// PKField returns the primary key field name.
func (r Relation) PKField() string {
	if r.PK == "" {
		return "id"
	}
	return r.PK
}

// RelatedField returns the name of the field values are resolved against.
func (r Relation) RelatedField() string {
	if r.ToField == "" {
		return r.PKField()
	}
	return r.ToField
}

// ChangelistName returns the view name of the target's admin changelist.
func (r Relation) ChangelistName() string {
	return ChangelistName(r.App, r.ModelName())
}

// ChangelistName returns the view name of an admin changelist.
func ChangelistName(app, model string) string {
	return "admin:" + app + "_" + strings.ToLower(model) + "_changelist"
}

// toFieldVar is the changelist query parameter naming the related field.
const toFieldVar = "_to_field"

// URLParameters returns the changelist parameters derived from the relation:
// the LimitChoicesTo filters, plus _to_field when the relation does not
// point at the primary key.
func (r Relation) URLParameters() url.Values {
	params := make(url.Values, len(r.LimitChoicesTo)+1)
	for k, v := range r.LimitChoicesTo {
		params.Set(k, v)
	}
	if f := r.RelatedField(); f != r.PKField() {
		params.Set(toFieldVar, f)
	}
	return params
}

// queryString encodes params as "?k=v&k=v" in key order, or "" when empty.
func queryString(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params.Get(k)))
	}
	return "?" + strings.Join(parts, "&")
}
