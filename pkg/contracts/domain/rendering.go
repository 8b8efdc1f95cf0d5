package domain

import (
	"time"
)

// ChartRenderResult summarizes one chart figure: the HTML page is always
// written, the PNG only when a browser was available to capture it.
type ChartRenderResult struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	HTMLFile  string `json:"html_file"`
	ImageFile string `json:"image_file,omitempty"`
	Rendered  bool   `json:"rendered"`
}

// RenderResult is the complete outcome of a renderer run. It feeds the
// operation snapshot and the console summary.
type RenderResult struct {
	StartedAt     time.Time           `json:"started_at"`
	CompletedAt   time.Time           `json:"completed_at"`
	Charts        []ChartRenderResult `json:"charts"`
	ImagesSkipped bool                `json:"images_skipped,omitempty"`
	SkipReason    string              `json:"skip_reason,omitempty"`
}

// RenderedCount returns how many charts made it to PNG.
func (r *RenderResult) RenderedCount() int {
	count := 0
	for _, c := range r.Charts {
		if c.Rendered {
			count++
		}
	}
	return count
}
