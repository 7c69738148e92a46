package dag

// Alias is a name bound to a list of node names. Resolving an alias is
// transitive: a member may itself be another alias's name.
//
// A frozen alias holds a fixed snapshot of member names and ignores later
// additions. Dag.DetachFromAlias creates one from another alias's current,
// fully-expanded member list and points existing dependents at it, so they
// keep a stable view of "the dependencies I had when I started" while the
// original alias keeps growing.
type Alias struct {
	Name     string
	Nodes    []string
	detached bool
}

func newAlias(name string) *Alias {
	return &Alias{Name: name}
}

func (a *Alias) add(node string) {
	if a.detached {
		return
	}
	for _, n := range a.Nodes {
		if n == node {
			return
		}
	}
	a.Nodes = append(a.Nodes, node)
}

func (a *Alias) freeze(snapshot []string) {
	a.Nodes = append([]string(nil), snapshot...)
	a.detached = true
}

// Detached reports whether this alias is a frozen snapshot created by
// Dag.DetachFromAlias.
func (a *Alias) Detached() bool { return a.detached }
