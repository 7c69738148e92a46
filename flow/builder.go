package flow

import (
	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/dag"
)

// InstantiateWithDeps resolves target against reg and d: if target names
// a plugin, it is first substituted with the plugin's last template name.
// aliases maps a template's declared input Source to an already-resolved
// node or alias name — callers seed it with whatever the surrounding
// DagOpsHandle call already had a handle for. Any Source not present in
// aliases is looked up in reg and instantiated recursively (a DFS guarded
// against cycles), and the fresh result is added to aliases so repeated
// use of the same Source within one call shares a single instance.
//
// Returns the name of the concrete node instantiated for target.
func InstantiateWithDeps(d *dag.Dag, reg *Registry, target string, aliases map[string]string) (string, error) {
	if names, ok := reg.GetPlugin(target); ok {
		if len(names) == 0 {
			return "", apperr.InvalidArgument("plugin " + target + " has no templates")
		}
		target = names[len(names)-1]
	}

	if resolved, ok := aliases[target]; ok {
		return resolved, nil
	}

	b := &builder{dag: d, reg: reg, aliases: aliases, onStack: make(map[string]bool)}
	return b.instantiate(target)
}

type builder struct {
	dag     *dag.Dag
	reg     *Registry
	aliases map[string]string
	onStack map[string]bool
}

func (b *builder) instantiate(name string) (string, error) {
	if resolved, ok := b.aliases[name]; ok {
		return resolved, nil
	}
	if b.onStack[name] {
		return "", apperr.Cycle([]string{name})
	}

	tpl, ok := b.reg.GetTemplate(name)
	if !ok {
		if b.dag.HasNode(name) || b.dag.HasAlias(name) {
			b.aliases[name] = name
			return name, nil
		}
		return "", apperr.NotFound("template", name)
	}

	b.onStack[name] = true
	deps := make([]dag.Dependency, 0, len(tpl.Inputs))
	for _, in := range tpl.Inputs {
		source := in.Source
		if names, ok := b.reg.GetPlugin(source); ok && len(names) > 0 {
			source = names[len(names)-1]
		}
		resolvedSource, err := b.instantiate(source)
		if err != nil {
			b.onStack[name] = false
			return "", err
		}
		deps = append(deps, dag.Dependency{Source: resolvedSource, Name: in.Name, Slot: in.Slot, Schema: in.Schema})
	}
	b.onStack[name] = false

	node := b.dag.AddNode(name, tpl.Func, deps, "")
	b.aliases[name] = node.Name
	return node.Name, nil
}
