package flow

import (
	"sort"
	"sync"

	"github.com/flowkit/flowkit/dag"
)

// Input declares one of a Template's dependencies: the logical name it is
// bound under when wired into a consuming node, and the name of the
// template (or previously-instantiated alias) that produces it.
type Input struct {
	Name   string // Dependency.Name on the instantiated node
	Source string // template name (or alias key) to resolve the producer from
	Slot   string
	Schema string
}

// Template is a node blueprint: what it depends on and the Func to run
// once those dependencies are wired to concrete node names.
type Template struct {
	Name   string
	Inputs []Input
	Func   dag.Func
}

// Registry is the external collaborator instantiate_with_deps consults:
// named templates, plus named plugins (an ordered list of template names
// whose last entry is substituted when the plugin name is used as an
// instantiation target).
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
	plugins   map[string][]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
		plugins:   make(map[string][]string),
	}
}

// RegisterTemplate adds or replaces a template.
func (r *Registry) RegisterTemplate(tpl *Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tpl.Name] = tpl
}

// RegisterPlugin records an ordered list of template names under name;
// instantiating name substitutes names[len(names)-1].
func (r *Registry) RegisterPlugin(name string, templateNames []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[name] = append([]string(nil), templateNames...)
}

// GetTemplate looks up a template by name.
func (r *Registry) GetTemplate(name string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// HasTemplate reports whether name is a registered template.
func (r *Registry) HasTemplate(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}

// GetPlugin looks up a plugin's template-name list.
func (r *Registry) GetPlugin(name string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names, ok := r.plugins[name]
	return names, ok
}

// HasPlugin reports whether name is a registered plugin.
func (r *Registry) HasPlugin(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[name]
	return ok
}

// TemplateNames returns every registered template name, sorted.
func (r *Registry) TemplateNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
