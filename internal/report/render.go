// Package report renders an analysis as a standalone HTML page.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panbanda/orphan/pkg/analyzer/graph"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/panbanda/orphan/pkg/stats"
)

//go:embed template.html
var templateFS embed.FS

// rootDirectory groups files that sit directly in the project root.
const rootDirectory = "."

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a new renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"reachClass": reachClass,
		"lower":      strings.ToLower,
		"title":      cases.Title(language.English).String,
		"truncatePath": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			parts := strings.Split(s, "/")
			if len(parts) <= 2 {
				return s[:n-3] + "..."
			}
			filename := parts[len(parts)-1]
			if len(filename) >= n-3 {
				return "..." + filename[len(filename)-n+3:]
			}
			remaining := max(n-len(filename)-4, 0)
			prefix := strings.Join(parts[:len(parts)-1], "/")
			if len(prefix) > remaining {
				prefix = prefix[len(prefix)-remaining:]
			}
			return ".../" + prefix + "/" + filename
		},
		"percent": func(a, b int) float64 {
			if b == 0 {
				return 0
			}
			return float64(a) / float64(b) * 100
		},
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
		"num": func(n any) string {
			p := message.NewPrinter(language.English)
			switch v := n.(type) {
			case int:
				return p.Sprintf("%d", v)
			case int64:
				return p.Sprintf("%d", v)
			case float64:
				return p.Sprintf("%d", int64(v))
			default:
				return "0"
			}
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

// reachClass grades the obsolete share of a project.
func reachClass(obsoletePercent float64) string {
	if obsoletePercent <= 5 {
		return "good"
	}
	if obsoletePercent <= 20 {
		return "warning"
	}
	return "danger"
}

// Render writes the report for an analysis. The import graph section is
// included when the report still carries its graph.
func (r *Renderer) Render(w io.Writer, meta Metadata, report *obsolete.Report, top int) error {
	return r.tmpl.Execute(w, BuildData(meta, report, top))
}

// RenderFile renders a report from analysis JSON previously written with
// --format json.
func (r *Renderer) RenderFile(w io.Writer, meta Metadata, jsonPath string, top int) error {
	var report obsolete.Report
	if err := loadJSON(jsonPath, &report); err != nil {
		return fmt.Errorf("read analysis %s: %w", jsonPath, err)
	}
	if meta.Project == "" {
		meta.Project = report.Root
	}
	return r.Render(w, meta, &report, top)
}

// BuildData derives the template data from an analysis.
func BuildData(meta Metadata, report *obsolete.Report, top int) *RenderData {
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}
	if meta.Project == "" {
		meta.Project = report.Root
	}

	data := &RenderData{
		Metadata:    meta,
		Analysis:    report,
		Reasons:     countReasons(report.Obsolete),
		Directories: countDirectories(report.Obsolete),
	}
	if report.Summary.TotalFiles > 0 {
		data.ObsoletePercent = float64(report.Summary.ObsoleteFiles) / float64(report.Summary.TotalFiles) * 100
	}
	data.ReachClass = reachClass(data.ObsoletePercent)

	if report.Graph != nil {
		metrics := graph.CalculateMetrics(graph.FromReport(report))
		fanIn := make([]int, len(metrics.NodeMetrics))
		for i, nm := range metrics.NodeMetrics {
			fanIn[i] = nm.InDegree
		}
		data.Graph = &GraphData{
			Summary: metrics.Summary,
			Top:     metrics.TopByPageRank(top),
			FanIn:   stats.Summarize(fanIn),
		}
	}
	return data
}

// countReasons tallies obsolete files per reason, most frequent first.
func countReasons(files []obsolete.ObsoleteFile) []ReasonCount {
	counts := make(map[obsolete.Reason]int)
	for _, f := range files {
		counts[f.Reason]++
	}
	out := make([]ReasonCount, 0, len(counts))
	for reason, n := range counts {
		out = append(out, ReasonCount{Reason: reason, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// countDirectories tallies obsolete files per top-level directory, most
// affected first.
func countDirectories(files []obsolete.ObsoleteFile) []DirectoryCount {
	counts := make(map[string]int)
	for _, f := range files {
		dir, _, found := strings.Cut(path.Clean(f.Path), "/")
		if !found {
			dir = rootDirectory
		}
		counts[dir]++
	}
	out := make([]DirectoryCount, 0, len(counts))
	for dir, n := range counts {
		out = append(out, DirectoryCount{Directory: dir, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Directory < out[j].Directory
	})
	return out
}

func loadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(v)
}
