package obsolete

// Classify returns a reason for every graph file outside reachable.
func Classify(g *Graph, reachable *ReachableSet) map[string]Reason {
	out := make(map[string]Reason)
	for _, file := range g.Files {
		if reachable.Contains(file) {
			continue
		}
		out[file] = classifyFile(g, reachable, file)
	}
	return out
}

func classifyFile(g *Graph, reachable *ReachableSet, file string) Reason {
	importers, ok := g.ImportedBy(file)
	switch {
	case !ok:
		return ReasonUnimportedNotEntry
	case len(importers) == 0:
		return ReasonUnimported
	}
	for _, imp := range importers {
		if reachable.Contains(imp) {
			return ReasonUnreachable
		}
	}
	return ReasonOnlyObsoleteUsers
}
