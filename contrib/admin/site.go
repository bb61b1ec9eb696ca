package admin

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNoReverseMatch is returned when a view name has no registered URL.
var ErrNoReverseMatch = errors.New("admin: no reverse match")

// URLReverser resolves view names such as "admin:shop_customer_changelist"
// to URL paths.
type URLReverser interface {
	Reverse(name string) (string, error)
}

// Site is an admin site: the set of models that have a changelist.
type Site struct {
	prefix string
	mu     sync.RWMutex
	urls   map[string]string
}

// NewSite returns a site rooted at prefix ("/admin/" when empty).
func NewSite(prefix string) *Site {
	if prefix == "" {
		prefix = "/admin/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Site{prefix: prefix, urls: make(map[string]string)}
}

// Prefix returns the URL prefix of the site.
func (s *Site) Prefix() string {
	return s.prefix
}

// Register adds the changelist of a model. The model name is lower-cased.
func (s *Site) Register(app, model string) {
	model = strings.ToLower(model)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[ChangelistName(app, model)] = s.prefix + app + "/" + model + "/"
}

// Reverse implements URLReverser.
func (s *Site) Reverse(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.urls[name]
	if !ok {
		return "", fmt.Errorf("%w: %q is not a registered view", ErrNoReverseMatch, name)
	}
	return u, nil
}

var _ URLReverser = (*Site)(nil)
