package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeFindObsoleteFiles() string {
	return `Finds source files in a web project that no framework entry point reaches through imports.

USE WHEN:
- Cleaning up a Next.js (or similar) project after features were removed
- Checking whether a component or helper is still used anywhere
- Preparing a list of files to move out of the active tree

INTERPRETING RESULTS:
- Entry points are files under app/, pages/, public/ or styles/, or whose name contains
  page, layout, loading, error, not-found, route or template
- "not imported by any file and not an entry point": nothing references the file at all
- "imported only by other obsolete files": only dead code depends on it; it becomes
  unreferenced once its importers are removed
- "not reachable from any entry point": it sits in an import chain or cycle that no entry
  point leads into
- Dynamic or computed import paths are invisible, so verify before deleting
- Package imports (react, next/link) never create edges

METRICS RETURNED:
- obsolete: list of {path, reason}
- empty_dirs: directories with no files (unless skip_empty_dirs is set)
- summary: total_files, entry_points, reachable_files, obsolete_files, edges, warnings
- warnings: files that could not be read`
}

func describeListEmptyDirs() string {
	return `Lists directories in the project that contain no files.

USE WHEN:
- Tidying up after moving obsolete files out of the tree
- Spotting leftover scaffolding folders

INTERPRETING RESULTS:
- A directory counts as empty when it has no files and no non-excluded subdirectories
- Dependency, build, VCS, dot-prefixed and quarantine directories are never reported
- The project root is never reported

METRICS RETURNED:
- empty_dirs: project-relative paths, sorted`
}

func describeDependencyGraph() string {
	return `Builds the file import graph of the project and reports its structure.

USE WHEN:
- Understanding which files the rest of the project depends on most
- Finding import cycles that keep dead code looking alive
- Producing a diagram of the obsolete part of the project

INTERPRETING RESULTS:
- pagerank: higher means more of the project depends on the file, directly or transitively
- in_degree: number of files importing it; out_degree: number of files it imports
- cycles: groups of files importing each other; a cycle of obsolete files is reported as
  "not reachable from any entry point"
- components: weakly connected groups of files; isolated obsolete files form their own
- status is entry, reachable or obsolete

METRICS RETURNED:
- summary: total_nodes, total_edges, obsolete_nodes, components, largest_component,
  cycle_count, cycles, max_in_degree, max_out_degree
- top: most depended-upon files by PageRank
- mermaid: flowchart source when requested`
}

func describeResolveImport() string {
	return `Resolves one import specifier the way the analyzer does, from a given importing file.

USE WHEN:
- Explaining why a file is or is not linked to its importer
- Checking tsconfig/jsconfig path aliases

INTERPRETING RESULTS:
- Relative specifiers are resolved against the importer's directory
- Alias prefixes (longest first) are replaced by their configured target
- Specifiers without an extension try .ts, .tsx, .js, .jsx and then an index file
- resolved=false for package imports, missing files or paths leaving the project

METRICS RETURNED:
- resolved: whether a project file matched
- target: the matched project-relative path
- aliases: the alias table in effect`
}
