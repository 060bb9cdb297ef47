package analysis

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/panbanda/orphan/internal/testutil"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/panbanda/orphan/pkg/config"
	"github.com/panbanda/orphan/pkg/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = map[string]string{
	"tsconfig.json":             `{"compilerOptions": {"paths": {"@/*": ["./*"]}}}`,
	"app/layout.tsx":            `import '@/styles/globals.css'`,
	"app/page.tsx":              `import { Hero } from '@/components/Hero'`,
	"components/Hero.tsx":       `export * from './hero/parts'`,
	"components/hero/parts.ts":  ``,
	"components/Legacy.tsx":     `import { Hero } from './Hero'`,
	"lib/dead.ts":               `import x from './deader'`,
	"lib/deader.ts":             ``,
	"styles/globals.css":        ``,
	"node_modules/pkg/index.js": `require('../../lib/dead')`,
}

func newService(t *testing.T, files map[string]string) (*Service, string) {
	t.Helper()
	fs, root := testutil.NewProject(t, files)
	return New(WithFs(fs), WithConfig(config.DefaultConfig())), root
}

func TestOpen(t *testing.T) {
	svc, root := newService(t, fixture)

	p, err := svc.Open(filepath.Join(root, "components", "hero"))
	require.NoError(t, err)
	assert.Equal(t, root, p.Root)
	assert.Equal(t, filepath.Join(root, ".orphan-ignore"), p.IgnorePath())
	assert.Equal(t, filepath.Join(root, "obsolete"), p.QuarantineDir())
	assert.Equal(t, 0, p.Ignore.Len())
}

func TestOpen_NoManifest(t *testing.T) {
	fs := testutil.MemFS()
	testutil.WriteFile(t, fs, "/loose/a.ts", "")

	_, err := New(WithFs(fs), WithConfig(config.DefaultConfig())).Open("/loose")
	assert.ErrorIs(t, err, project.ErrManifestNotFound)
}

func TestAnalyze(t *testing.T) {
	svc, root := newService(t, fixture)
	p, err := svc.Open(root)
	require.NoError(t, err)

	var total int
	report, err := svc.Analyze(context.Background(), p, Options{
		OnStart: func(n int) { total = n },
	})
	require.NoError(t, err)

	assert.Equal(t, 8, total)
	assert.Equal(t, []obsolete.ObsoleteFile{
		{Path: "components/Legacy.tsx", Reason: obsolete.ReasonUnimportedNotEntry},
		{Path: "lib/dead.ts", Reason: obsolete.ReasonUnimportedNotEntry},
		{Path: "lib/deader.ts", Reason: obsolete.ReasonOnlyObsoleteUsers},
	}, report.Obsolete)
	assert.Equal(t, []string{}, report.EmptyDirs)
	assert.Equal(t, 5, report.Summary.ReachableFiles)
}

func TestAnalyze_IgnoreListAndEmptyDirs(t *testing.T) {
	files := map[string]string{".orphan-ignore": "lib/dead.ts\n"}
	for k, v := range fixture {
		files[k] = v
	}
	fs, root := testutil.NewProject(t, files)
	testutil.MkdirAll(t, fs, root, "components/old")

	svc := New(WithFs(fs), WithConfig(config.DefaultConfig()))
	p, err := svc.Open(root)
	require.NoError(t, err)

	report, err := svc.Analyze(context.Background(), p, Options{})
	require.NoError(t, err)

	reasons := report.Reasons()
	assert.NotContains(t, reasons, "lib/dead.ts")
	assert.Equal(t, obsolete.ReasonUnimportedNotEntry, reasons["lib/deader.ts"], "its only importer is ignored")
	assert.NotContains(t, report.Graph.Forward, "lib/dead.ts")
	assert.Equal(t, []string{"components/old"}, report.EmptyDirs)

	report, err = svc.Analyze(context.Background(), p, Options{SkipEmptyDirs: true})
	require.NoError(t, err)
	assert.Empty(t, report.EmptyDirs)
}

func TestAnalyze_Cache(t *testing.T) {
	svc, root := newService(t, fixture)
	p, err := svc.Open(root)
	require.NoError(t, err)

	first, err := svc.Analyze(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.True(t, testutil.DirExists(svc.fs, filepath.Join(root, ".orphan", "cache")))

	second, err := svc.Analyze(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Obsolete, second.Obsolete)

	require.NoError(t, svc.ClearCache(p))
	assert.False(t, testutil.DirExists(svc.fs, filepath.Join(root, ".orphan", "cache")))
}

func TestAnalyze_NoCache(t *testing.T) {
	fs, root := testutil.NewProject(t, fixture)
	svc := New(WithFs(fs), WithConfig(config.DefaultConfig()), WithNoCache(), WithWorkers(1))
	p, err := svc.Open(root)
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.False(t, testutil.DirExists(fs, filepath.Join(root, ".orphan", "cache")))
}

func TestResolver(t *testing.T) {
	svc, root := newService(t, fixture)
	p, err := svc.Open(root)
	require.NoError(t, err)

	got, ok := svc.Resolver(p).Resolve("@/components/Hero", "app/page.tsx")
	assert.True(t, ok)
	assert.Equal(t, "components/Hero.tsx", got)
}
