package waybar

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Guliveer/powerbar/internal/models"
)

func strp(s string) *string { return &s }

func TestFormat(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		model      string
		wantText   string
		wantTip    *string
		wantClass  *string
	}{
		{"low", 15, "ModelX", "15%", strp("ModelX"), strp("low")},
		{"high", 85, "ModelX", "85%", strp("ModelX"), nil},
		{"at threshold", 20, "ModelX", "20%", strp("ModelX"), strp("low")},
		{"no model", 50, "", "50%", nil, nil},
		{"fractional", 42.5, "Buds", "42.5%", strp("Buds"), nil},
		{"empty battery", 0, "Buds", "0%", strp("Buds"), strp("low")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Format(tt.percentage, tt.model, 20, "low")
			if out.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", out.Text, tt.wantText)
			}
			if !equalPtr(out.Tooltip, tt.wantTip) {
				t.Errorf("Tooltip = %v, want %v", deref(out.Tooltip), deref(tt.wantTip))
			}
			if !equalPtr(out.Class, tt.wantClass) {
				t.Errorf("Class = %v, want %v", deref(out.Class), deref(tt.wantClass))
			}
			if out.Percentage == nil || *out.Percentage != tt.percentage {
				t.Errorf("Percentage = %v, want %v", out.Percentage, tt.percentage)
			}
		})
	}
}

func TestWriter_OmitsAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Write(Format(50, "", 20, "low")); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "{\"text\":\"50%\",\"percentage\":50}\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriter_FullRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Write(Format(15, "ModelX", 20, "critical")); err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"text":       "15%",
		"tooltip":    "ModelX",
		"class":      "critical",
		"percentage": 15.0,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestWriter_Blank(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Blank(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n" {
		t.Errorf("output = %q, want a single newline", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriter_PropagatesErrors(t *testing.T) {
	w := NewWriter(failingWriter{})
	if err := w.Write(models.Output{Text: "1%"}); err == nil {
		t.Error("Write: expected error")
	}
	if err := w.Blank(); err == nil {
		t.Error("Blank: expected error")
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
