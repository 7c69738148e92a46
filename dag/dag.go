package dag

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/seqno"
)

// Dag is the append-only node graph. Safe for concurrent use: a running
// actor may extend it (through a DagOpsHandle) while the scheduler reads
// it to plan the next step.
type Dag struct {
	mu      sync.RWMutex
	seq     *seqno.Generator
	nodes   map[string]*Node
	aliases map[string]*Alias
	order   []string // node names in insertion order, for deterministic iteration
}

// New creates an empty Dag.
func New() *Dag {
	return &Dag{
		seq:     seqno.New(),
		nodes:   make(map[string]*Node),
		aliases: make(map[string]*Alias),
	}
}

// AddNode creates and registers a node named "<base>.<n>" for a fresh
// sequence number n, so repeated calls with the same base never collide.
func (d *Dag) AddNode(base string, fn Func, deps []Dependency, explain string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := fmt.Sprintf("%s.%d", base, d.seq.Next())
	n := &Node{
		Name:         name,
		Func:         fn,
		Dependencies: append([]Dependency(nil), deps...),
		Explain:      explain,
	}
	d.nodes[name] = n
	d.order = append(d.order, name)
	return n
}

// AddValueNode registers a leaf node whose single output is pre-filled
// with data, closed, and considered finished as soon as it is scheduled —
// no Func ever runs for it.
func (d *Dag) AddValueNode(base string, data []byte, explain string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := fmt.Sprintf("%s.%d", base, d.seq.Next())
	n := &Node{Name: name, Explain: explain, IsValue: true, ValueData: append([]byte(nil), data...)}
	d.nodes[name] = n
	d.order = append(d.order, name)
	return n
}

// CreateOpenValueNode registers a leaf node whose output pipe is created
// open rather than pre-filled: the node stays active until some external
// writer (typically reached via DagOpsHandle.OpenWritePipe) closes it.
func (d *Dag) CreateOpenValueNode(base, explain string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := fmt.Sprintf("%s.%d", base, d.seq.Next())
	n := &Node{Name: name, Explain: explain, IsOpenValue: true}
	d.nodes[name] = n
	d.order = append(d.order, name)
	return n
}

// GetNode returns the node registered under name.
func (d *Dag) GetNode(name string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[name]
	return n, ok
}

// HasNode reports whether name is a registered node.
func (d *Dag) HasNode(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.nodes[name]
	return ok
}

// GetNodeNames returns every registered node name, in registration order.
func (d *Dag) GetNodeNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}

// Depend appends deps to target. If target names a node, the node's
// dependency list grows (the node itself is replaced in the map with a
// copy carrying the longer list — an immutable rewrite, not an in-place
// mutation, so any goroutine holding the old *Node still sees the
// dependency set it started with). If target names an alias instead, each
// dep's Source is added to the alias's member list.
func (d *Dag) Depend(target string, deps []Dependency) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if a, ok := d.aliases[target]; ok {
		for _, dep := range deps {
			a.add(dep.Source)
		}
		return nil
	}

	n, ok := d.nodes[target]
	if !ok {
		return apperr.NotFound("node", target)
	}
	rewritten := *n
	rewritten.Dependencies = append(append([]Dependency(nil), n.Dependencies...), deps...)
	d.nodes[target] = &rewritten
	return nil
}

// Alias binds name to node, creating the alias if it does not yet exist.
// Calling Alias(name, "") merely ensures an (possibly empty) alias named
// name exists, for later Depend/Alias calls to extend.
func (d *Dag) Alias(name, node string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.aliases[name]
	if !ok {
		a = newAlias(name)
		d.aliases[name] = a
	}
	if a.Detached() {
		return apperr.InvalidArgument("alias " + name + " is detached")
	}
	if node != "" {
		a.add(node)
	}
	return nil
}

// HasAlias reports whether name is a registered alias.
func (d *Dag) HasAlias(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.aliases[name]
	return ok
}

// DetachFromAlias snapshots alias's current, fully-expanded member list
// into a freshly minted, frozen alias, then rewrites every dependency
// that names alias as its Source to point at that frozen snapshot
// instead. alias itself is left untouched and keeps growing — only
// nodes that already depend on it are insulated from further growth.
func (d *Dag) DetachFromAlias(alias string) error {
	d.mu.RLock()
	_, ok := d.aliases[alias]
	d.mu.RUnlock()
	if !ok {
		return apperr.NotFound("alias", alias)
	}

	members, err := d.ExpandAlias(alias)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	defunc := fmt.Sprintf("defunc.%d.%s", d.seq.Next(), alias)
	frozen := newAlias(defunc)
	frozen.freeze(members)
	d.aliases[defunc] = frozen

	for name, n := range d.nodes {
		var rewritten *Node
		for i, dep := range n.Dependencies {
			if dep.Source != alias {
				continue
			}
			if rewritten == nil {
				cp := *n
				cp.Dependencies = append([]Dependency(nil), n.Dependencies...)
				rewritten = &cp
			}
			rewritten.Dependencies[i].Source = defunc
		}
		if rewritten != nil {
			d.nodes[name] = rewritten
		}
	}
	return nil
}

// ExpandAlias resolves alias transitively into a deduplicated, ordered
// list of concrete node names.
func (d *Dag) ExpandAlias(alias string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.expandAliasLocked(alias, make(map[string]bool))
}

func (d *Dag) expandAliasLocked(name string, seen map[string]bool) ([]string, error) {
	a, ok := d.aliases[name]
	if !ok {
		return nil, apperr.NotFound("alias", name)
	}
	if seen[name] {
		return nil, apperr.Cycle([]string{name})
	}
	seen[name] = true

	var out []string
	for _, member := range a.Nodes {
		if _, isAlias := d.aliases[member]; isAlias {
			sub, err := d.expandAliasLocked(member, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, member)
	}
	return dedupStrings(out), nil
}

// IterDeps returns target's dependencies with every alias-sourced
// dependency expanded transitively into one entry per concrete node, and
// duplicates by (source, name, slot) removed.
func (d *Dag) IterDeps(target string) ([]Dependency, error) {
	d.mu.RLock()
	n, ok := d.nodes[target]
	d.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("node", target)
	}

	var out []Dependency
	seen := make(map[string]bool)
	for _, dep := range n.Dependencies {
		d.mu.RLock()
		_, isAlias := d.aliases[dep.Source]
		d.mu.RUnlock()

		if !isAlias {
			key := dep.Source + "\x00" + dep.Name + "\x00" + dep.Slot
			if !seen[key] {
				seen[key] = true
				out = append(out, dep)
			}
			continue
		}

		members, err := d.ExpandAlias(dep.Source)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			expanded := Dependency{Source: m, Name: dep.Name, Slot: dep.Slot, Schema: dep.Schema}
			key := expanded.Source + "\x00" + expanded.Name + "\x00" + expanded.Slot
			if !seen[key] {
				seen[key] = true
				out = append(out, expanded)
			}
		}
	}
	return out, nil
}

// HashOfNodeNames returns a commutative (order-independent) digest of the
// registered node names, cheap enough for a planner to call every pass to
// detect that the graph grew since the last look.
func (d *Dag) HashOfNodeNames() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var acc uint64
	for name := range d.nodes {
		h := fnv.New64a()
		_, _ = h.Write([]byte(name))
		acc ^= h.Sum64()
	}
	return acc
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// SortedNodeNames returns every registered node name in lexical order, for
// tests and debug output where a deterministic listing matters more than
// registration order.
func (d *Dag) SortedNodeNames() []string {
	names := d.GetNodeNames()
	sort.Strings(names)
	return names
}
