// Package waybar formats device snapshots as Waybar custom-module JSON and
// writes them line by line to the status bar's input stream.
package waybar

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/Guliveer/powerbar/internal/models"
)

// Format builds the output record for one device. The class is set when the
// percentage is at or below lowPercentage; an empty model yields no tooltip.
func Format(percentage float64, model string, lowPercentage float64, lowClass string) models.Output {
	out := models.Output{
		Text:       strconv.FormatFloat(percentage, 'f', -1, 64) + "%",
		Percentage: &percentage,
	}
	if model != "" {
		out.Tooltip = &model
	}
	if percentage <= lowPercentage {
		out.Class = &lowClass
	}
	return out
}

// Writer emits one JSON record per line. It is safe for concurrent use,
// although the scheduler only writes from one goroutine.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer on top of w, usually os.Stdout.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serializes out and terminates it with a newline.
func (w *Writer) Write(out models.Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Blank writes the empty line Waybar interprets as "nothing to show".
func (w *Writer) Blank() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
