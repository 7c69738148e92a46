package dag

import (
	"context"
	"testing"
)

func noopFunc(context.Context, NodeRuntime) error { return nil }

func TestAddNode_UniqueNames(t *testing.T) {
	d := New()
	a := d.AddNode("gen", noopFunc, nil, "")
	b := d.AddNode("gen", noopFunc, nil, "")
	if a.Name == b.Name {
		t.Fatalf("expected distinct names, got %q twice", a.Name)
	}
}

func TestPlan_TopologicalOrder(t *testing.T) {
	d := New()
	a := d.AddNode("a", noopFunc, nil, "")
	b := d.AddNode("b", noopFunc, []Dependency{{Source: a.Name, Name: "in"}}, "")
	c := d.AddNode("c", noopFunc, []Dependency{{Source: b.Name, Name: "in"}}, "")

	order, err := d.Plan(c.Name)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	want := []string{a.Name, b.Name, c.Name}
	if len(order) != 3 {
		t.Fatalf("expected 3 nodes, got %v", order)
	}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("position %d: want %s, got %s (full: %v)", i, name, order[i], order)
		}
	}
}

func TestPlan_CycleDetected(t *testing.T) {
	d := New()
	x := d.AddNode("x", noopFunc, nil, "")
	y := d.AddNode("y", noopFunc, []Dependency{{Source: x.Name, Name: "in"}}, "")
	_ = d.Depend(x.Name, []Dependency{{Source: y.Name, Name: "in"}})

	if _, err := d.Plan(y.Name); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestAlias_TransitiveExpansion(t *testing.T) {
	d := New()
	n1 := d.AddNode("n", noopFunc, nil, "")
	n2 := d.AddNode("n", noopFunc, nil, "")

	_ = d.Alias("inner", n1.Name)
	_ = d.Alias("inner", n2.Name)
	_ = d.Alias("outer", "inner")

	members, err := d.ExpandAlias("outer")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(members) != 2 || members[0] != n1.Name || members[1] != n2.Name {
		t.Fatalf("unexpected members: %v", members)
	}
}

func TestIterDeps_ExpandsAliasAndDedupes(t *testing.T) {
	d := New()
	n1 := d.AddNode("n", noopFunc, nil, "")
	n2 := d.AddNode("n", noopFunc, nil, "")
	_ = d.Alias("grp", n1.Name)
	_ = d.Alias("grp", n2.Name)

	consumer := d.AddNode("c", noopFunc, []Dependency{
		{Source: "grp", Name: "in"},
		{Source: "grp", Name: "in"}, // duplicate dependency on the same alias+name
	}, "")

	deps, err := d.IterDeps(consumer.Name)
	if err != nil {
		t.Fatalf("iter deps: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("expected 2 deduped deps, got %d: %v", len(deps), deps)
	}
}

func TestDetachFromAlias_InsulatesExistingDependentsButLeavesAliasGrowable(t *testing.T) {
	d := New()
	n1 := d.AddNode("n", noopFunc, nil, "")
	_ = d.Alias("grp", n1.Name)

	consumer := d.AddNode("c", noopFunc, []Dependency{{Source: "grp", Name: "in"}}, "")

	if err := d.DetachFromAlias("grp"); err != nil {
		t.Fatalf("detach: %v", err)
	}

	// grp itself is untouched and keeps accepting new members.
	n2 := d.AddNode("n", noopFunc, nil, "")
	if err := d.Alias("grp", n2.Name); err != nil {
		t.Fatalf("expected grp to remain growable after detach, got %v", err)
	}
	members, _ := d.ExpandAlias("grp")
	if len(members) != 2 {
		t.Fatalf("expected grp to have grown to 2 members, got %v", members)
	}

	// The consumer that depended on grp before detach is pinned to the
	// pre-detach snapshot, regardless of grp's later growth.
	deps, err := d.IterDeps(consumer.Name)
	if err != nil {
		t.Fatalf("iter deps: %v", err)
	}
	if len(deps) != 1 || deps[0].Source != n1.Name {
		t.Fatalf("expected consumer pinned to [%s], got %v", n1.Name, deps)
	}
}

func TestHashOfNodeNames_ChangesOnGrowthOnly(t *testing.T) {
	d := New()
	d.AddNode("a", noopFunc, nil, "")
	h1 := d.HashOfNodeNames()
	h2 := d.HashOfNodeNames()
	if h1 != h2 {
		t.Fatal("hash should be stable across calls with no growth")
	}
	d.AddNode("b", noopFunc, nil, "")
	h3 := d.HashOfNodeNames()
	if h3 == h1 {
		t.Fatal("hash should change after adding a node")
	}
}

func TestAddValueNode_MarksValueLeaf(t *testing.T) {
	d := New()
	n := d.AddValueNode("val", []byte("hello"), "")
	if !n.IsValue || string(n.ValueData) != "hello" {
		t.Fatalf("expected value node carrying data, got %+v", n)
	}
	if len(n.Dependencies) != 0 {
		t.Fatal("value node should have no dependencies")
	}
}

func TestDepend_AppendsToAliasMembers(t *testing.T) {
	d := New()
	_ = d.Alias("grp", "")
	n := d.AddNode("n", noopFunc, nil, "")

	if err := d.Depend("grp", []Dependency{{Source: n.Name, Name: "in"}}); err != nil {
		t.Fatalf("depend: %v", err)
	}
	members, _ := d.ExpandAlias("grp")
	if len(members) != 1 || members[0] != n.Name {
		t.Fatalf("expected grp to gain member %s, got %v", n.Name, members)
	}
}
