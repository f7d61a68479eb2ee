// Package viz renders terminal plots for training runs: loss curves,
// trajectory overlays against a reference, and ensemble fans. Charts are
// drawn with asciigraph and styled with lipgloss.
package viz
