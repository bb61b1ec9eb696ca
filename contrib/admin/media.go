package admin

import (
	"html/template"
	"sort"
	"strings"
)

// StaticResolver turns a static asset path into a URL.
type StaticResolver interface {
	URL(path string) string
}

// StaticPrefix resolves assets under a URL prefix such as "/static/".
type StaticPrefix string

// URL implements StaticResolver.
func (p StaticPrefix) URL(path string) string {
	return strings.TrimSuffix(string(p), "/") + "/" + strings.TrimPrefix(path, "/")
}

// Media lists the assets a widget needs on the page.
type Media struct {
	// CSS maps a media type ("all", "print", ...) to stylesheet URLs.
	CSS map[string][]string
	JS  []string
}

// Render returns the <link> and <script> tags of the media, stylesheets first.
func (m Media) Render() template.HTML {
	var b strings.Builder
	media := make([]string, 0, len(m.CSS))
	for k := range m.CSS {
		media = append(media, k)
	}
	sort.Strings(media)
	for _, k := range media {
		for _, href := range m.CSS[k] {
			b.WriteString(`<link href="` + template.HTMLEscapeString(href) + `" media="` + template.HTMLEscapeString(k) + `" rel="stylesheet">` + "\n")
		}
	}
	for _, src := range m.JS {
		b.WriteString(`<script src="` + template.HTMLEscapeString(src) + `"></script>` + "\n")
	}
	return template.HTML(b.String())
}

// Asset paths of the autocomplete widget, relative to the static root.
var (
	searchInputJS = []string{
		"veloxext/js/jquery.bgiframe.js",
		"veloxext/js/jquery.ajaxQueue.js",
		"veloxext/js/jquery.autocomplete.js",
	}
	searchInputCSS = "veloxext/css/jquery.autocomplete.css"
)
