package obsolete

import (
	"iter"
	"regexp"
)

// importPatterns match the literal path of static imports, call-style
// import/require and re-exports. Computed or concatenated paths are not seen.
var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:import|from|require)\s+['"]([^'"]*)['"]`),
	regexp.MustCompile(`(?:import|require)\(['"]([^'"]*?)['"]\)`),
	regexp.MustCompile(`export\s+.*\s+from\s+['"]([^'"]*)['"]`),
}

// Extract yields each distinct import literal found in content.
func Extract(content []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, re := range importPatterns {
			for _, m := range re.FindAllSubmatch(content, -1) {
				literal := string(m[1])
				if literal == "" {
					continue
				}
				if _, dup := seen[literal]; dup {
					continue
				}
				seen[literal] = struct{}{}
				if !yield(literal) {
					return
				}
			}
		}
	}
}

// ExtractAll collects Extract into a slice in discovery order.
func ExtractAll(content []byte) []string {
	literals := []string{}
	for l := range Extract(content) {
		literals = append(literals, l)
	}
	return literals
}
