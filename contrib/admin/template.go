package admin

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// ErrTemplateDoesNotExist is returned when none of the candidate templates exist.
var ErrTemplateDoesNotExist = errors.New("admin: template does not exist")

// Renderer renders the first existing template of an ordered candidate list.
type Renderer interface {
	Render(w io.Writer, names []string, data any) error
}

//go:embed templates
var embedded embed.FS

// TemplatesFS holds the built-in templates, rooted so that names look like
// "veloxext/widgets/foreignkey_searchinput.html".
var TemplatesFS fs.FS = mustSub(embedded, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplateSet is a Renderer over html/template files looked up in a list
// of file systems. Earlier file systems take precedence, so project
// templates can override the built-in ones:
//
//	set := admin.NewTemplateSet(os.DirFS("templates"), admin.TemplatesFS)
type TemplateSet struct {
	dirs  []fs.FS
	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewTemplateSet returns a TemplateSet searching dirs in order.
func NewTemplateSet(dirs ...fs.FS) *TemplateSet {
	return &TemplateSet{dirs: dirs, cache: make(map[string]*template.Template)}
}

// DefaultTemplates returns a TemplateSet with the built-in templates only.
func DefaultTemplates() *TemplateSet {
	return NewTemplateSet(TemplatesFS)
}

// Select returns the first name that exists in any of the directories,
// trying every directory for a name before moving to the next name.
func (s *TemplateSet) Select(names ...string) (string, error) {
	_, name, err := s.find(names)
	return name, err
}

func (s *TemplateSet) find(names []string) (fs.FS, string, error) {
	for _, name := range names {
		for _, dir := range s.dirs {
			if _, err := fs.Stat(dir, name); err == nil {
				return dir, name, nil
			}
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrTemplateDoesNotExist, strings.Join(names, ", "))
}

// Render implements Renderer.
func (s *TemplateSet) Render(w io.Writer, names []string, data any) error {
	dir, name, err := s.find(names)
	if err != nil {
		return err
	}
	t, err := s.parse(dir, name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

func (s *TemplateSet) parse(dir fs.FS, name string) (*template.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.cache[name]; ok {
		return t, nil
	}
	b, err := fs.ReadFile(dir, name)
	if err != nil {
		return nil, fmt.Errorf("admin: read template %s: %w", name, err)
	}
	t, err := template.New(path.Base(name)).Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("admin: parse template %s: %w", name, err)
	}
	s.cache[name] = t
	return t, nil
}

var _ Renderer = (*TemplateSet)(nil)
