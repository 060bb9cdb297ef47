package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/panbanda/orphan/internal/vcs"
	"github.com/panbanda/orphan/pkg/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// writeProject lays out a small Next.js project on disk.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"package.json": `{"name": "fixture"}`,
		"app/page.tsx": `import { a } from '../lib/a'`,
		"lib/a.ts":     `export const a = 1`,
		"lib/old.ts":   `export const old = 2`,
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "components", "empty"), 0o755))
	return root
}

// runApp runs the CLI with stdin input and returns stdout.
func runApp(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(input)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"orphan", "--no-progress", "--no-cache"}, args...))
	return stdout.String(), err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestGetPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args defaults to current dir", nil, "."},
		{"positional path", []string{"/srv/app"}, "/srv/app"},
		{"root flag wins", []string{"--root", "/srv/other", "/srv/app"}, "/srv/other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			app := &cli.App{
				Flags: []cli.Flag{&cli.StringFlag{Name: "root"}},
				Action: func(c *cli.Context) error {
					got = getPath(c)
					return nil
				},
			}
			require.NoError(t, app.Run(append([]string{"test"}, tt.args...)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectRelative(t *testing.T) {
	root := t.TempDir()

	rel, err := projectRelative(root, filepath.Join(root, "lib", "old.ts"))
	require.NoError(t, err)
	assert.Equal(t, "lib/old.ts", rel)

	_, err = projectRelative(root, root)
	assert.Error(t, err)

	_, err = projectRelative(root, filepath.Dir(root))
	assert.Error(t, err)
}

func TestPrompter(t *testing.T) {
	tests := []struct {
		input string
		want  answer
	}{
		{"y\n", answerYes},
		{"S\n", answerYes},
		{"n\n", answerNo},
		{"\n", answerNo},
		{"i\n", answerIgnore},
		{"q\n", answerQuit},
		{"", answerQuit},
		{"maybe\nyes\n", answerYes},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := newPrompter(strings.NewReader(tt.input), &out)
			assert.Equal(t, tt.want, p.ask("? "))
		})
	}
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "", "--format", "json", "analyze", root)
	require.NoError(t, err)

	var report obsolete.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, root, report.Root)
	assert.Equal(t, []obsolete.ObsoleteFile{
		{Path: "lib/old.ts", Reason: obsolete.ReasonUnimportedNotEntry},
	}, report.Obsolete)
	assert.Equal(t, []string{"components/empty"}, report.EmptyDirs)
	assert.Equal(t, 3, report.Summary.TotalFiles)
}

func TestAnalyzeCmd_DefaultCommandText(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Obsolete Files")
	assert.Contains(t, out, "lib/old.ts")
	assert.Contains(t, out, "components/empty")
}

func TestAnalyzeCmd_NoManifest(t *testing.T) {
	_, err := runApp(t, "", "analyze", t.TempDir())
	assert.ErrorIs(t, err, project.ErrManifestNotFound)
}

func TestCleanCmd_All(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "", "clean", "--all", root)
	require.NoError(t, err)
	assert.Contains(t, out, "lib/old.ts")

	assert.False(t, exists(filepath.Join(root, "lib", "old.ts")))
	assert.True(t, exists(filepath.Join(root, "obsolete", "lib", "old.ts")))
	assert.True(t, exists(filepath.Join(root, "lib", "a.ts")))
	assert.False(t, exists(filepath.Join(root, "components", "empty")))
	assert.True(t, exists(filepath.Join(root, "obsolete", "components", "empty")))
}

func TestCleanCmd_InteractiveIgnore(t *testing.T) {
	root := writeProject(t)

	// Ignore the file, then decline the empty directory move.
	_, err := runApp(t, "i\nn\n", "clean", root)
	require.NoError(t, err)

	assert.True(t, exists(filepath.Join(root, "lib", "old.ts")))
	assert.True(t, exists(filepath.Join(root, "components", "empty")))

	data, err := os.ReadFile(filepath.Join(root, ".orphan-ignore"))
	require.NoError(t, err)
	assert.Equal(t, "lib/old.ts\n", string(data))

	out, err := runApp(t, "", "--format", "json", "analyze", root)
	require.NoError(t, err)
	var report obsolete.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.Obsolete)
}

func TestCleanCmd_InteractiveMove(t *testing.T) {
	root := writeProject(t)

	_, err := runApp(t, "y\ny\n", "clean", root)
	require.NoError(t, err)

	assert.True(t, exists(filepath.Join(root, "obsolete", "lib", "old.ts")))
	assert.False(t, exists(filepath.Join(root, "components", "empty")))
}

func TestCleanCmd_DryRun(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "", "clean", "--dry-run", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Would move 1 file(s)")
	assert.True(t, exists(filepath.Join(root, "lib", "old.ts")))
	assert.True(t, exists(filepath.Join(root, "components", "empty")))
	assert.False(t, exists(filepath.Join(root, "obsolete")))
}

// commitAll puts the project under git with everything committed.
func commitAll(t *testing.T, root string) {
	t.Helper()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, w.AddWithOptions(&git.AddOptions{All: true}))
	_, err = w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestCleanCmd_DirtyWorktree(t *testing.T) {
	root := writeProject(t)
	commitAll(t, root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "a.ts"), []byte("export const a = 3"), 0o644))

	_, err := runApp(t, "", "clean", "--all", root)
	assert.ErrorIs(t, err, vcs.ErrDirtyWorkingDir)
	assert.True(t, exists(filepath.Join(root, "lib", "old.ts")))

	out, err := runApp(t, "", "clean", "--all", "--force", root)
	require.NoError(t, err)
	assert.Contains(t, out, "uncommitted change(s)")
	assert.False(t, exists(filepath.Join(root, "lib", "old.ts")))
}

func TestIgnoreCmd(t *testing.T) {
	root := writeProject(t)

	_, err := runApp(t, "", "--root", root, "ignore", filepath.Join(root, "lib", "old.ts"), filepath.Join(root, "lib", "old.ts"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, ".orphan-ignore"))
	require.NoError(t, err)
	assert.Equal(t, "lib/old.ts\n", string(data))

	out, err := runApp(t, "", "--root", root, "--format", "json", "ignore", "--list")
	require.NoError(t, err)
	var entries []string
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, []string{"lib/old.ts"}, entries)

	_, err = runApp(t, "", "--root", root, "ignore")
	assert.Error(t, err)
}

func TestEmptyDirsCmd(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "", "--format", "json", "empty-dirs", root)
	require.NoError(t, err)

	var dirs []string
	require.NoError(t, json.Unmarshal([]byte(out), &dirs))
	assert.Equal(t, []string{"components/empty"}, dirs)
}

func TestGraphCmd(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "", "--format", "json", "graph", root)
	require.NoError(t, err)
	var result graphResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Summary.TotalNodes)
	assert.Equal(t, 1, result.Summary.TotalEdges)
	assert.Equal(t, 1, result.Summary.ObsoleteNodes)
	require.NotEmpty(t, result.Top)
	assert.Equal(t, "lib/a.ts", result.Top[0].NodeID)

	out, err = runApp(t, "", "graph", "--dot", root)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph imports")

	out, err = runApp(t, "", "graph", "--mermaid", root)
	require.NoError(t, err)
	assert.Contains(t, out, "```mermaid")
	assert.Contains(t, out, "app_page_tsx --> lib_a_ts")

	out, err = runApp(t, "", "--format", "json", "graph", "--cycles", root)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestReportCmd(t *testing.T) {
	root := writeProject(t)
	path := filepath.Join(t.TempDir(), "report.html")

	_, err := runApp(t, "", "--output", path, "report", root)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "lib/old.ts")
	assert.Contains(t, html, "components/empty")
	assert.Contains(t, html, "Import Graph")

	saved, err := runApp(t, "", "--format", "json", "analyze", root)
	require.NoError(t, err)
	from := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, os.WriteFile(from, []byte(saved), 0o644))

	out, err := runApp(t, "", "report", "--from", from)
	require.NoError(t, err)
	assert.Contains(t, out, "lib/old.ts")
	assert.NotContains(t, out, "Import Graph")
}

func TestConfigCmds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orphan.toml")

	out, err := runApp(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	require.True(t, exists(path))

	_, err = runApp(t, "", "config", "init", path)
	assert.Error(t, err)

	_, err = runApp(t, "", "config", "init", "--force", path)
	require.NoError(t, err)

	out, err = runApp(t, "", "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")

	out, err = runApp(t, "", "config", "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: "+path)
	assert.Contains(t, out, "node_modules")

	bad := filepath.Join(t.TempDir(), "orphan.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[scan]\nunknown_key = true\n"), 0o644))
	_, err = runApp(t, "", "config", "validate", bad)
	assert.Error(t, err)
}

func TestCacheClearCmd(t *testing.T) {
	root := writeProject(t)

	out, err := runApp(t, "", "cache", "clear", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared cache")
}

func TestMCPManifestCmd(t *testing.T) {
	out, err := runApp(t, "", "mcp", "manifest", "--image", "example.com/orphan")
	require.NoError(t, err)
	assert.Contains(t, out, `"identifier": "example.com/orphan:dev"`)
}
