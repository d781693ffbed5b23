package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
}

func TestAddNode(t *testing.T) {
	g := New()

	assert.True(t, g.AddNode("a"))
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)

	assert.False(t, g.AddNode("a")) // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
	assert.True(t, g.HasNode("b"))
	assert.False(t, g.HasNode("c"))
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("a", "b") // b depends on a
		require.NoError(t, err)
		require.NoError(t, g.AddEdge("a", "b")) // duplicate edge is a no-op

		assert.Equal(t, []string{"b"}, g.nodes["a"].dependents)
		assert.Equal(t, []string{"a"}, g.nodes["b"].deps)
		assert.Equal(t, []Edge{{From: "a", To: "b"}}, g.Edges())
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestDependenciesAndDependents(t *testing.T) {
	g := New()
	for _, id := range []string{"untar", "eq", "prod", "coh"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("eq", "prod"))
	require.NoError(t, g.AddEdge("prod", "coh"))
	require.NoError(t, g.AddEdge("untar", "coh"))

	deps, err := g.Dependencies("coh")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "untar"}, deps)

	dependents, err := g.Dependents("untar")
	require.NoError(t, err)
	assert.Equal(t, []string{"coh"}, dependents)

	_, err = g.Dependencies("missing")
	assert.ErrorContains(t, err, "node not found")
	_, err = g.Dependents("missing")
	assert.ErrorContains(t, err, "node not found")
}

func TestAncestors(t *testing.T) {
	g := New()
	for _, id := range []string{"untar", "eq", "prod", "ptraj", "coh"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("eq", "prod"))
	require.NoError(t, g.AddEdge("prod", "ptraj"))
	require.NoError(t, g.AddEdge("prod", "coh"))
	require.NoError(t, g.AddEdge("untar", "coh"))

	got, err := g.Ancestors("coh")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"prod": true, "eq": true, "untar": true}, got)
	assert.False(t, got["ptraj"], "siblings are not ancestors")

	got, err = g.Ancestors("untar")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = g.Ancestors("missing")
	assert.Error(t, err)
}

func TestTopologicalOrder(t *testing.T) {
	t.Run("respects edges and insertion order", func(t *testing.T) {
		g := New()
		for _, id := range []string{"untar", "eq_5", "prod_5", "eq_10", "prod_10"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("eq_5", "prod_5"))
		require.NoError(t, g.AddEdge("eq_10", "prod_10"))

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"untar", "eq_5", "prod_5", "eq_10", "prod_10"}, order)
	})

	t.Run("dependency inserted later still comes first", func(t *testing.T) {
		g := New()
		g.AddNode("child")
		g.AddNode("parent")
		require.NoError(t, g.AddEdge("parent", "child"))

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"parent", "child"}, order)
	})

	t.Run("cycle", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		_, err := g.TopologicalOrder()
		assert.ErrorContains(t, err, "contains a cycle")
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // Transitive edge
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a")) // Cycle
		err := g.DetectCycles()
		assert.Error(t, err)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("c", "d"))
		require.NoError(t, g.AddEdge("d", "a")) // Cycle back to the start
		err := g.DetectCycles()
		assert.Error(t, err)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		// Component 1 (valid)
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))

		// Component 2 (has a cycle)
		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y")) // Cycle

		err := g.DetectCycles()
		assert.Error(t, err)
		assert.ErrorContains(t, err, "cycle detected")
	})
}
