package obsolete

import (
	"errors"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// Alias maps an import prefix to a project-relative replacement.
type Alias struct {
	Prefix string `json:"prefix" toon:"prefix" yaml:"prefix"`
	Target string `json:"target" toon:"target" yaml:"target"`
}

// AliasTable is an ordered alias list, longest prefix first.
type AliasTable []Alias

// DefaultAliases is used when no alias config provides paths.
func DefaultAliases() AliasTable {
	return AliasTable{{Prefix: "@", Target: "."}}
}

// NewAliasTable builds a table from a prefix map, ordering it longest prefix
// first so the most specific alias wins.
func NewAliasTable(m map[string]string) AliasTable {
	t := make(AliasTable, 0, len(m))
	for prefix, target := range m {
		t = append(t, Alias{Prefix: prefix, Target: target})
	}
	sort.Slice(t, func(i, j int) bool {
		if len(t[i].Prefix) != len(t[j].Prefix) {
			return len(t[i].Prefix) > len(t[j].Prefix)
		}
		return t[i].Prefix < t[j].Prefix
	})
	return t
}

// Match returns the literal with the first matching alias substituted.
func (t AliasTable) Match(literal string) (string, bool) {
	for _, a := range t {
		if strings.HasPrefix(literal, a.Prefix) {
			return a.Target + literal[len(a.Prefix):], true
		}
	}
	return "", false
}

// DefaultAliasConfigs are the config files searched for compilerOptions.paths.
var DefaultAliasConfigs = []string{"tsconfig.json", "jsconfig.json"}

// aliasDelim keeps alias keys containing dots intact inside koanf.
const aliasDelim = "::"

// AliasOption configures LoadAliases.
type AliasOption func(*aliasOptions)

type aliasOptions struct {
	baseURL bool
}

// WithBaseURL joins compilerOptions.baseUrl in front of every alias target.
func WithBaseURL(enabled bool) AliasOption {
	return func(o *aliasOptions) {
		o.baseURL = enabled
	}
}

// LoadAliases reads compilerOptions.paths from the first candidate under root
// that exists and parses. Missing or malformed candidates are skipped; a
// parsed config without a usable paths table yields DefaultAliases. It never
// fails.
func LoadAliases(fs afero.Fs, root string, candidates []string, opts ...AliasOption) AliasTable {
	var o aliasOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(candidates) == 0 {
		candidates = DefaultAliasConfigs
	}
	for _, name := range candidates {
		k, err := loadAliasConfig(fs, filepath.Join(root, name))
		if err != nil {
			continue
		}
		if t := aliasesFrom(k, o); len(t) > 0 {
			return t
		}
		return DefaultAliases()
	}
	return DefaultAliases()
}

func loadAliasConfig(fs afero.Fs, file string) (*koanf.Koanf, error) {
	k := koanf.New(aliasDelim)
	if err := k.Load(jsoncProvider(fs, file), json.Parser()); err != nil {
		return nil, err
	}
	return k, nil
}

// aliasesFrom builds the table from compilerOptions.paths, mapping each key
// to its first target.
func aliasesFrom(k *koanf.Koanf, o aliasOptions) AliasTable {
	raw, ok := k.Get("compilerOptions" + aliasDelim + "paths").(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	var baseURL string
	if o.baseURL {
		baseURL = k.String("compilerOptions" + aliasDelim + "baseUrl")
	}

	m := make(map[string]string, len(raw))
	for key, v := range raw {
		targets, ok := v.([]any)
		if !ok || len(targets) == 0 {
			continue
		}
		first, ok := targets[0].(string)
		if !ok {
			continue
		}
		target := trimWildcard(first)
		if baseURL != "" {
			target = path.Join(baseURL, target)
		}
		m[trimWildcard(key)] = target
	}
	if len(m) == 0 {
		return nil
	}
	return NewAliasTable(m)
}

// trimWildcard strips trailing "*" and "/" characters, so "@/*" becomes "@".
func trimWildcard(s string) string {
	return strings.TrimRight(s, "/*")
}

// jsonc is a koanf provider reading a file from afero with comments and
// trailing commas removed.
type jsonc struct {
	fs   afero.Fs
	path string
}

func jsoncProvider(fs afero.Fs, path string) *jsonc {
	return &jsonc{fs: fs, path: path}
}

// ReadBytes reads the file and returns plain JSON.
func (j *jsonc) ReadBytes() ([]byte, error) {
	data, err := afero.ReadFile(j.fs, j.path)
	if err != nil {
		return nil, err
	}
	return StripJSONC(data), nil
}

// Read is not supported; koanf uses ReadBytes with a parser.
func (j *jsonc) Read() (map[string]any, error) {
	return nil, errors.New("jsonc provider does not support this method")
}

// StripJSONC removes // and /* */ comments and trailing commas outside of
// string literals.
func StripJSONC(data []byte) []byte {
	noComments := make([]byte, 0, len(data))
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			noComments = append(noComments, c)
			if c == '\\' && i+1 < len(data) {
				i++
				noComments = append(noComments, data[i])
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			noComments = append(noComments, c)
			continue
		}
		if c == '/' && i+1 < len(data) {
			switch data[i+1] {
			case '/':
				for i < len(data) && data[i] != '\n' {
					i++
				}
				if i < len(data) {
					noComments = append(noComments, '\n')
				}
				continue
			case '*':
				end := strings.Index(string(data[i+2:]), "*/")
				if end < 0 {
					i = len(data)
				} else {
					i += 2 + end + 1
				}
				noComments = append(noComments, ' ')
				continue
			}
		}
		noComments = append(noComments, c)
	}

	out := make([]byte, 0, len(noComments))
	inString = false
	for i := 0; i < len(noComments); i++ {
		c := noComments[i]
		if inString {
			out = append(out, c)
			if c == '\\' && i+1 < len(noComments) {
				i++
				out = append(out, noComments[i])
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' && closesNext(noComments[i+1:]) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func closesNext(rest []byte) bool {
	for _, c := range rest {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}
