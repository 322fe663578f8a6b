package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// ImportProgress tracks a multi-file import on the terminal.
type ImportProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	files  int
	saved  int
	dupes  int
}

// NewImportProgress creates a progress bar sized for total files.
func NewImportProgress(w io.Writer, total int) *ImportProgress {
	p := &ImportProgress{writer: w}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing statements...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// FileDone advances the bar by one file and records its counts.
func (p *ImportProgress) FileDone(inserted, duplicates int) {
	p.files++
	p.saved += inserted
	p.dupes += duplicates
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Summary renders the totals collected so far in a box.
func (p *ImportProgress) Summary() string {
	content := fmt.Sprintf("  • Files processed: %d\n", p.files) +
		fmt.Sprintf("  • Transactions imported: %d\n", p.saved) +
		fmt.Sprintf("  • Duplicates skipped: %d", p.dupes)
	return RenderBox("Import Complete", content)
}

// Finish completes the bar and prints the summary.
func (p *ImportProgress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	if _, err := fmt.Fprintln(p.writer, p.Summary()); err != nil {
		slog.Warn("Failed to write import summary", "error", err)
	}
}
