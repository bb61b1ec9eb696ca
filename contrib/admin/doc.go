// Package admin provides an autocomplete search widget for foreign keys and
// the endpoint it queries.
//
// # Widget
//
// ForeignKeySearchInput replaces the raw id input of a foreign key with a
// search box. Its collaborators are passed in explicitly: a Lookup that
// resolves the current value, a URLReverser for the target's changelist,
// a Renderer for the markup and a StaticResolver for its assets.
//
//	site := admin.NewSite("/admin/")
//	site.Register("shop", "Customer")
//
//	w, err := admin.NewForeignKeySearchInput(
//	    admin.Relation{App: "shop", Model: "Customer"},
//	    []string{"name", "^email"},
//	    admin.WithLookup(customers),
//	    admin.WithReverser(site),
//	)
//	html, err := w.Render(ctx, "customer", order.CustomerID, nil)
//
// The markup comes from the first existing template of
//
//	veloxext/widgets/<app>/<model>/foreignkey_searchinput.html
//	veloxext/widgets/<app>/foreignkey_searchinput.html
//	veloxext/widgets/foreignkey_searchinput.html
//
// unless WithTemplate names one explicitly. TemplatesFS ships the generic one.
//
// # Endpoint
//
// Autocomplete serves <prefix>/<app>/<model>/foreignkey_autocomplete/ on a
// gin router. It answers text/plain "label|pk" lines for ?q=, or the label
// of ?object_pk=.
//
//	ac := admin.NewAutocomplete(admin.WithLimit(20))
//	ac.Register("shop", "Customer", store, "name", "^email")
//	ac.Mount(engine.Group(site.Prefix()))
package admin
