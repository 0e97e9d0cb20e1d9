package palette

// DependencyGraph is the directed graph of variables referencing other variables
type DependencyGraph struct {
	// adjacency list: variable -> variables its value references
	dependencies map[string][]string
	// reverse lookup: variable -> variables whose values reference it
	dependents map[string][]string
	// nodes in declaration order, so traversals are deterministic
	nodes []string
}

// BuildDependencyGraph builds the reference graph of a palette.
// References to undeclared variables are not part of the graph.
func BuildDependencyGraph(p Palette) *DependencyGraph {
	graph := &DependencyGraph{
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
		nodes:        p.Variables(),
	}

	seen := make(map[string]bool)
	for _, e := range p {
		if seen[e.Variable] {
			continue
		}
		seen[e.Variable] = true
		for _, dep := range References(e.Value) {
			if !p.Has(dep) {
				continue
			}
			graph.dependencies[e.Variable] = append(graph.dependencies[e.Variable], dep)
			graph.dependents[dep] = append(graph.dependents[dep], e.Variable)
		}
	}
	return graph
}

// References returns the $variables mentioned in value, in order
func References(value string) []string {
	return VariablePattern.FindAllString(value, -1)
}

// GetDependencies returns the variables the given variable references
func (g *DependencyGraph) GetDependencies(name string) []string {
	return g.dependencies[name]
}

// GetDependents returns the variables that reference the given variable
func (g *DependencyGraph) GetDependents(name string) []string {
	return g.dependents[name]
}

// FindCycle returns the cycle path if one exists, or nil if no cycle
func (g *DependencyGraph) FindCycle() []string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for _, node := range g.nodes {
		if cycle := g.findCycleDFS(node, visited, recStack, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}

func (g *DependencyGraph) findCycleDFS(node string, visited, recStack map[string]bool, path []string) []string {
	if recStack[node] {
		for i, n := range path {
			if n == node {
				return append(append([]string(nil), path[i:]...), node)
			}
		}
		return []string{node, node}
	}
	if visited[node] {
		return nil
	}

	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	recStack[node] = false
	return nil
}

// TopologicalSort returns variables in dependency order (dependencies first).
// Returns a *CircularReferenceError if the graph contains a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, NewCircularReferenceError(cycle)
	}

	visited := make(map[string]bool)
	result := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		if !visited[node] {
			g.topologicalSortDFS(node, visited, &result)
		}
	}
	return result, nil
}

func (g *DependencyGraph) topologicalSortDFS(node string, visited map[string]bool, stack *[]string) {
	visited[node] = true
	for _, dep := range g.dependencies[node] {
		if !visited[dep] {
			g.topologicalSortDFS(dep, visited, stack)
		}
	}
	*stack = append(*stack, node)
}
