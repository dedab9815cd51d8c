package cellconfig

import "testing"

func TestTableEmptyConfigs(t *testing.T) {
	for _, c := range []Config{0, 255} {
		e := Lookup(c)
		if e.ActiveEdges != 0 || e.NumComponents() != 0 {
			t.Errorf("Lookup(%d) = %+v, want no active edges", c, e)
		}
	}
}

// TestActiveEdgeCountEven checks the standard marching-cubes invariant: the
// active edges of any cube configuration form a set of closed curves on the
// cube's surface, so every face is crossed by an even number (0, 2 or 4) of
// them. The total over the whole cube need not be even (config 1 has 3).
func TestActiveEdgeCountEven(t *testing.T) {
	table := Table()
	for c := 0; c < 256; c++ {
		for fi, f := range Faces {
			n := 0
			for _, e := range f.edges {
				if table[c].ActiveEdges&(1<<uint(e)) != 0 {
					n++
				}
			}
			if n%2 != 0 {
				t.Errorf("config %d (%08b) face %d has odd active edge count %d", c, c, fi, n)
			}
		}
	}
}

// TestComplementSymmetry checks that swapping inside/outside (c -> 255-c)
// leaves the active-edge set unchanged: an edge is active exactly when its
// two corners disagree in sign, which is invariant under flipping every
// corner's sign.
func TestComplementSymmetry(t *testing.T) {
	table := Table()
	for c := 0; c < 256; c++ {
		comp := 255 - c
		if table[c].ActiveEdges != table[comp].ActiveEdges {
			t.Errorf("config %d and its complement %d disagree on active edges: %012b vs %012b",
				c, comp, table[c].ActiveEdges, table[comp].ActiveEdges)
		}
	}
}

// TestComponentsPartitionActiveEdges checks that every active edge belongs
// to exactly one component and no component contains an inactive edge.
func TestComponentsPartitionActiveEdges(t *testing.T) {
	table := Table()
	for c := 0; c < 256; c++ {
		entry := table[c]
		var seen uint16
		for _, comp := range entry.Components {
			if comp&^entry.ActiveEdges != 0 {
				t.Errorf("config %d: component %012b includes an inactive edge", c, comp)
			}
			if comp&seen != 0 {
				t.Errorf("config %d: components overlap", c)
			}
			seen |= comp
		}
		if seen != entry.ActiveEdges {
			t.Errorf("config %d: components %012b don't cover all active edges %012b", c, seen, entry.ActiveEdges)
		}
	}
}

func TestSingleActiveVertexConfigs(t *testing.T) {
	// Config with only corner 0 inside: three edges meet at corner 0's
	// neighborhood and must form a single triangular component.
	e := Lookup(Config(1))
	if e.NumComponents() != 1 {
		t.Fatalf("Lookup(1).NumComponents() = %d, want 1", e.NumComponents())
	}
	n := 0
	for i := 0; i < 12; i++ {
		if e.ActiveEdges&(1<<uint(i)) != 0 {
			n++
		}
	}
	if n != 3 {
		t.Fatalf("Lookup(1) has %d active edges, want 3", n)
	}
}

func TestAmbiguousDiagonalConfig(t *testing.T) {
	// Two diagonally-opposite corners inside (0 and 7): each corner
	// contributes an isolated 3-edge component, so this should report two
	// components of three edges each.
	e := Lookup(Config(1<<0 | 1<<7))
	if e.NumComponents() != 2 {
		t.Fatalf("diagonal config NumComponents() = %d, want 2", e.NumComponents())
	}
	for _, comp := range e.Components {
		n := 0
		for i := 0; i < 12; i++ {
			if comp&(1<<uint(i)) != 0 {
				n++
			}
		}
		if n != 3 {
			t.Errorf("component %012b has %d edges, want 3", comp, n)
		}
	}
}
