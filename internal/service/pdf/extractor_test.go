package pdf

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

// buildPDF writes a minimal document with one Helvetica text line per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	var kids []string
	for _, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		contentRef := len(objects)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentRef))
		kids = append(kids, fmt.Sprintf("%d 0 R", len(objects)))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractJoinsPages(t *testing.T) {
	data := buildPDF(t, "Enzyme basics", "Gut health")

	doc, err := NewExtractor(zap.NewNop()).Extract(context.Background(), "guide.pdf", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if doc.Pages != 2 || doc.Name != "guide.pdf" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if !strings.Contains(doc.Text, "Enzyme basics") || !strings.Contains(doc.Text, "Gut health") {
		t.Fatalf("page text missing: %q", doc.Text)
	}
	if doc.Truncated {
		t.Fatalf("short document should not be truncated")
	}
}

func TestExtractCapsRunes(t *testing.T) {
	data := buildPDF(t, "Hello world from page one", "second page never read")

	doc, err := NewExtractor(nil).WithMaxRunes(5).Extract(context.Background(), "long.pdf", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if doc.Text != "Hello" {
		t.Fatalf("expected text capped to 5 runes, got %q", doc.Text)
	}
	if !doc.Truncated {
		t.Fatalf("expected truncated flag")
	}
}

func TestExtractDefaultBudget(t *testing.T) {
	if got := NewExtractor(nil).WithMaxRunes(0).maxRunes; got != 3000 {
		t.Fatalf("expected default budget of 3000 runes, got %d", got)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	data := []byte("just some text")

	_, err := NewExtractor(nil).Extract(context.Background(), "notes.txt", bytes.NewReader(data), int64(len(data)))
	var vErr *errors.ValidationError
	if !stderrors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	data := buildPDF(t, "page")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExtractor(nil).Extract(ctx, "a.pdf", bytes.NewReader(data), int64(len(data))); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brochure.pdf")
	if err := os.WriteFile(path, buildPDF(t, "Probiotics 101"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := NewExtractor(nil).ExtractFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if doc.Name != "brochure.pdf" || !strings.Contains(doc.Text, "Probiotics 101") {
		t.Fatalf("unexpected document: %+v", doc)
	}

	if _, err := NewExtractor(nil).ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
