package obsolete

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/panbanda/orphan/internal/cache"
	"github.com/panbanda/orphan/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextFixture is a small Next.js app with one reachable chain, one file
// used only by an obsolete file and one file nobody imports.
var nextFixture = map[string]string{
	"app/page.tsx": `import Button from '@/components/Button'
import React from 'react'
import { helper } from '../lib/helper'
`,
	"components/Button.tsx": `import styles from './Button.module.css'
import { cn } from '@/lib/cn'
`,
	"components/Button.module.css": `.btn { color: red; }`,
	"lib/cn.ts":                    `export const cn = () => ''`,
	"lib/helper.ts":                `export const helper = 1`,
	"lib/unused.ts":                `import { old } from './old'`,
	"lib/old.ts":                   `export const old = 1`,
	"lib/orphan.ts":                `export {}`,
}

// sourceFiles lists the fixture files, skipping the manifest.
func sourceFiles(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var files []string
	for _, f := range testutil.ListFiles(t, fs, root) {
		if f == "package.json" || strings.HasSuffix(f, ".json") {
			continue
		}
		files = append(files, f)
	}
	return files
}

func buildFixtureGraph(t *testing.T, fixture map[string]string) (*Graph, []FileError) {
	t.Helper()
	fs, root := testutil.NewProject(t, fixture)
	r := NewResolver(fs, root, DefaultAliases())
	return BuildGraph(context.Background(), fs, root, sourceFiles(t, fs, root), r, GraphOptions{})
}

func assertConsistent(t *testing.T, g *Graph) {
	t.Helper()
	for from, deps := range g.Forward {
		for _, to := range deps {
			importers, ok := g.Reverse[to]
			require.True(t, ok, "missing reverse entry for %s", to)
			assert.Contains(t, importers, from)
		}
	}
	for to, importers := range g.Reverse {
		for _, from := range importers {
			assert.Contains(t, g.Forward[from], to)
		}
	}
}

func TestBuildGraph(t *testing.T) {
	g, warnings := buildFixtureGraph(t, nextFixture)
	assert.Empty(t, warnings)

	assert.Equal(t, map[string][]string{
		"app/page.tsx":                 {"components/Button.tsx", "lib/helper.ts"},
		"components/Button.tsx":        {"components/Button.module.css", "lib/cn.ts"},
		"components/Button.module.css": {},
		"lib/cn.ts":                    {},
		"lib/helper.ts":                {},
		"lib/unused.ts":                {"lib/old.ts"},
		"lib/old.ts":                   {},
		"lib/orphan.ts":                {},
	}, g.Forward)

	assert.Equal(t, map[string][]string{
		"components/Button.tsx":        {"app/page.tsx"},
		"lib/helper.ts":                {"app/page.tsx"},
		"components/Button.module.css": {"components/Button.tsx"},
		"lib/cn.ts":                    {"components/Button.tsx"},
		"lib/old.ts":                   {"lib/unused.ts"},
	}, g.Reverse)

	assert.Equal(t, 5, g.EdgeCount())
	assert.True(t, sort.StringsAreSorted(g.Files))
	assertConsistent(t, g)
}

func TestBuildGraph_BareImportDoesNotBlockOthers(t *testing.T) {
	g, warnings := buildFixtureGraph(t, map[string]string{
		"src/a.ts": `import x from 'some-external-package'
import y from './y'
import z from "lodash/fp"`,
		"src/y.ts": ``,
	})
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"src/y.ts"}, g.Imports("src/a.ts"))
	assertConsistent(t, g)
}

func TestBuildGraph_OnlyEnumeratedTargets(t *testing.T) {
	fs, root := testutil.NewProject(t, map[string]string{
		"app/page.tsx": `import a from '@/lib/a'
import b from '@/lib/ignored'`,
		"lib/a.ts":       ``,
		"lib/ignored.ts": ``,
	})
	files := []string{"app/page.tsx", "lib/a.ts"}

	g, _ := BuildGraph(context.Background(), fs, root, files, NewResolver(fs, root, nil), GraphOptions{})

	assert.Equal(t, []string{"lib/a.ts"}, g.Imports("app/page.tsx"))
	_, ok := g.Forward["lib/ignored.ts"]
	assert.False(t, ok)
	_, ok = g.ImportedBy("lib/ignored.ts")
	assert.False(t, ok)
}

func TestBuildGraph_PerFileFailures(t *testing.T) {
	fs, root := testutil.NewProject(t, map[string]string{
		"app/page.tsx": `import a from './a'`,
		"app/a.ts":     `import b from './b'`,
		"app/b.ts":     ``,
	})
	testutil.WriteFile(t, fs, filepath.Join(root, "app", "binary.js"), "import x from './b'\xff\xfe")

	files := []string{"app/a.ts", "app/b.ts", "app/binary.js", "app/gone.ts", "app/page.tsx"}
	g, warnings := BuildGraph(context.Background(), fs, root, files, NewResolver(fs, root, nil), GraphOptions{Workers: 2})

	require.Len(t, warnings, 2)
	assert.Equal(t, "app/binary.js", warnings[0].Path)
	assert.Equal(t, ErrInvalidUTF8.Error(), warnings[0].Message)
	assert.Equal(t, "app/gone.ts", warnings[1].Path)

	assert.Equal(t, []string{}, g.Forward["app/binary.js"])
	assert.Equal(t, []string{}, g.Forward["app/gone.ts"])
	assert.Equal(t, []string{"app/a.ts"}, g.Imports("app/page.tsx"))
	assert.Equal(t, []string{"app/b.ts"}, g.Imports("app/a.ts"))
	assertConsistent(t, g)
}

func TestBuildGraph_DuplicateTargetsCollapse(t *testing.T) {
	g, _ := buildFixtureGraph(t, map[string]string{
		"src/a.ts": `import x from './b'
import y from './b.ts'
const z = require('@/src/b')`,
		"src/b.ts": ``,
	})
	assert.Equal(t, []string{"src/b.ts"}, g.Imports("src/a.ts"))
	assert.Equal(t, []string{"src/a.ts"}, g.Reverse["src/b.ts"])
}

func TestBuildGraph_Cache(t *testing.T) {
	fs, root := testutil.NewProject(t, map[string]string{
		"app/page.tsx": `import a from './a'`,
		"app/a.ts":     ``,
		"app/b.ts":     ``,
	})
	c, err := cache.New(fs, filepath.Join(root, ".orphan", "cache"), 24, true)
	require.NoError(t, err)

	files := []string{"app/a.ts", "app/b.ts", "app/page.tsx"}
	r := NewResolver(fs, root, nil)

	first, _ := BuildGraph(context.Background(), fs, root, files, r, GraphOptions{Cache: c})
	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)

	second, _ := BuildGraph(context.Background(), fs, root, files, r, GraphOptions{Cache: c})
	assert.Equal(t, first.Forward, second.Forward)

	testutil.WriteFile(t, fs, filepath.Join(root, "app", "page.tsx"), `import a from './a'
import b from './b'`)
	third, _ := BuildGraph(context.Background(), fs, root, files, r, GraphOptions{Cache: c})
	assert.Equal(t, []string{"app/a.ts", "app/b.ts"}, third.Imports("app/page.tsx"))
}

func TestBuildGraph_Progress(t *testing.T) {
	fs, root := testutil.NewProject(t, nextFixture)
	files := sourceFiles(t, fs, root)

	var ticks atomic.Int32
	_, _ = BuildGraph(context.Background(), fs, root, files, NewResolver(fs, root, nil), GraphOptions{
		Workers:    1,
		OnProgress: func() { ticks.Add(1) },
	})
	assert.Equal(t, int32(len(files)), ticks.Load())
}

func TestNewGraph(t *testing.T) {
	g := NewGraph([]string{"b.ts", "a.ts"})
	assert.Equal(t, []string{"a.ts", "b.ts"}, g.Files)
	assert.Equal(t, []string{}, g.Forward["a.ts"])
	assert.Empty(t, g.Reverse)
}
