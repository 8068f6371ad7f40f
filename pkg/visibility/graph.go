package visibility

import (
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// extrasIdentifier is the expression identifier bound to Context.Extras.
const extrasIdentifier = "extras"

// Resolver maps a condition reference onto a field id. References name a
// field id; a field's logical name is accepted when no id matches.
type Resolver struct {
	byID   map[string]int
	byName map[string]int
}

// NewResolver indexes fields for reference lookup.
func NewResolver(fields []model.FieldDefinition) Resolver {
	r := Resolver{
		byID:   make(map[string]int, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for i, field := range fields {
		if _, exists := r.byID[field.ID]; !exists {
			r.byID[field.ID] = i
		}
		if name := strings.TrimSpace(field.Name); name != "" {
			if _, exists := r.byName[name]; !exists {
				r.byName[name] = i
			}
		}
	}
	return r
}

// Resolve returns the array position of the referenced field.
func (r Resolver) Resolve(ref string) (int, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, false
	}
	if idx, ok := r.byID[ref]; ok {
		return idx, true
	}
	idx, ok := r.byName[ref]
	return idx, ok
}

// ExpressionIdentifiers returns the distinct top-level identifiers an
// expression reads, in first-seen order. Member access such as
// `extras.role` contributes only its root identifier.
func ExpressionIdentifiers(source string) ([]string, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	collector := &identifierCollector{seen: make(map[string]struct{})}
	ast.Walk(&tree.Node, collector)
	return collector.names, nil
}

type identifierCollector struct {
	seen  map[string]struct{}
	names []string
}

func (c *identifierCollector) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}
	if _, exists := c.seen[ident.Value]; exists {
		return
	}
	c.seen[ident.Value] = struct{}{}
	c.names = append(c.names, ident.Value)
}

// Graph is the dependency graph of a schema: an edge from A to B means A's
// condition reads B's value.
type Graph struct {
	ids   []string
	edges map[string][]string
}

// Edge is a resolved condition reference.
type Edge struct {
	From string
	To   string
}

// NewGraph builds a graph from field ids and resolved edges. Duplicate edges
// are collapsed.
func NewGraph(ids []string, edges []Edge) *Graph {
	g := &Graph{
		ids:   append([]string(nil), ids...),
		edges: make(map[string][]string, len(ids)),
	}
	seen := make(map[Edge]struct{}, len(edges))
	for _, edge := range edges {
		if _, dup := seen[edge]; dup {
			continue
		}
		seen[edge] = struct{}{}
		g.edges[edge.From] = append(g.edges[edge.From], edge.To)
	}
	return g
}

// Dependencies returns the ids a field's condition reads.
func (g *Graph) Dependencies(id string) []string {
	return append([]string(nil), g.edges[id]...)
}

// Cycles returns every dependency cycle: strongly connected components with
// more than one member plus single fields that reference themselves. Members
// are sorted and cycles are ordered by their first member.
func (g *Graph) Cycles() [][]string {
	t := tarjan{
		graph:   g,
		index:   make(map[string]int, len(g.ids)),
		lowlink: make(map[string]int, len(g.ids)),
		onStack: make(map[string]bool, len(g.ids)),
	}
	for _, id := range g.ids {
		if _, visited := t.index[id]; !visited {
			t.connect(id)
		}
	}

	var cycles [][]string
	for _, component := range t.components {
		if len(component) == 1 && !g.hasSelfLoop(component[0]) {
			continue
		}
		sort.Strings(component)
		cycles = append(cycles, component)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

func (g *Graph) hasSelfLoop(id string) bool {
	for _, to := range g.edges[id] {
		if to == id {
			return true
		}
	}
	return false
}

// tarjan finds strongly connected components. Recursion depth is bounded by
// the number of fields.
type tarjan struct {
	graph      *Graph
	counter    int
	index      map[string]int
	lowlink    map[string]int
	onStack    map[string]bool
	stack      []string
	components [][]string
}

func (t *tarjan) connect(id string) {
	t.index[id] = t.counter
	t.lowlink[id] = t.counter
	t.counter++
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	for _, next := range t.graph.edges[id] {
		if _, visited := t.index[next]; !visited {
			t.connect(next)
			t.lowlink[id] = min(t.lowlink[id], t.lowlink[next])
		} else if t.onStack[next] {
			t.lowlink[id] = min(t.lowlink[id], t.index[next])
		}
	}

	if t.lowlink[id] != t.index[id] {
		return
	}
	var component []string
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[top] = false
		component = append(component, top)
		if top == id {
			break
		}
	}
	t.components = append(t.components, component)
}
