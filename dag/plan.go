package dag

import "github.com/flowkit/flowkit/apperr"

// Plan returns target and every (transitive, alias-expanded) ancestor it
// depends on, in topological order: every dependency appears before the
// node that consumes it. Value and open-value nodes have no dependencies
// of their own and sort to the front of whatever subtree they sit in.
//
// Planning is a classical DFS postorder walk; a node on the current
// recursion stack being visited again is a dependency cycle and fails
// fast with apperr.Cycle naming the chain.
func (d *Dag) Plan(target string) ([]string, error) {
	var order []string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		if onStack[name] {
			return apperr.Cycle(append(append([]string(nil), stack...), name))
		}
		onStack[name] = true
		stack = append(stack, name)

		deps, err := d.IterDeps(name)
		if err != nil {
			onStack[name] = false
			stack = stack[:len(stack)-1]
			return err
		}
		for _, dep := range deps {
			if err := visit(dep.Source); err != nil {
				onStack[name] = false
				stack = stack[:len(stack)-1]
				return err
			}
		}

		onStack[name] = false
		stack = stack[:len(stack)-1]
		visited[name] = true
		order = append(order, name)
		return nil
	}

	if !d.HasNode(target) {
		return nil, apperr.NotFound("node", target)
	}
	if err := visit(target); err != nil {
		return nil, err
	}
	return order, nil
}
