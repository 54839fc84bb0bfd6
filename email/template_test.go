package email

import (
	"strings"
	"testing"

	"github.com/campusgate/campusgate"
)

func TestRenderVerification(t *testing.T) {
	rendered, err := renderVerification("211110")
	if err != nil {
		t.Fatalf("renderVerification failed: %v", err)
	}

	if rendered.subject == "" {
		t.Fatal("expected a subject")
	}
	if !strings.Contains(rendered.text, "211110") {
		t.Fatalf("text body missing code: %q", rendered.text)
	}
	if !strings.Contains(rendered.html, "<strong>211110</strong>") {
		t.Fatalf("html body missing code: %q", rendered.html)
	}
}

func TestRenderReport(t *testing.T) {
	rendered, err := renderReport(campusgate.ContentReport{
		ContentType:   "comment",
		ContentID:     "42",
		ReportDetails: "spam link",
		ReporterID:    "alice",
	})
	if err != nil {
		t.Fatalf("renderReport failed: %v", err)
	}

	for _, want := range []string{"comment", "42", "spam link", "alice"} {
		if !strings.Contains(rendered.text, want) {
			t.Fatalf("text body missing %q: %q", want, rendered.text)
		}
	}
}

func TestRenderReportEscapesHTML(t *testing.T) {
	rendered, err := renderReport(campusgate.ContentReport{
		ContentType:   "comment",
		ContentID:     "42",
		ReportDetails: "<script>alert(1)</script>",
		ReporterID:    "alice",
	})
	if err != nil {
		t.Fatalf("renderReport failed: %v", err)
	}
	if strings.Contains(rendered.html, "<script>") {
		t.Fatal("report details must be escaped in the html body")
	}
}
