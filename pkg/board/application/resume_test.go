package application

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/openhire/openhire/pkg/kernel"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func TestExtractResumeMetaPDF(t *testing.T) {
	meta, err := ExtractResumeMeta(kernel.NewApplicationID("app-1"), "My Resume (final).pdf", pdfBytes, 1<<20)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if meta.Key != "resumes/app-1/My_Resume_final_.pdf" {
		t.Errorf("key = %q", meta.Key)
	}
	if meta.ContentType != "application/pdf" {
		t.Errorf("content type = %q", meta.ContentType)
	}
	if meta.Size != int64(len(pdfBytes)) {
		t.Errorf("size = %d", meta.Size)
	}

	sum := sha256.Sum256(pdfBytes)
	if meta.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("sha256 = %q", meta.SHA256)
	}
}

func TestExtractResumeMetaText(t *testing.T) {
	meta, err := ExtractResumeMeta(kernel.NewApplicationID("app-1"), "notes.txt", []byte("plain text resume"), 1<<20)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if meta.ContentType != "text/plain" {
		t.Errorf("content type = %q", meta.ContentType)
	}
}

func TestExtractResumeMetaDocx(t *testing.T) {
	// docx files are zip containers; PK is the zip magic.
	data := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)
	meta, err := ExtractResumeMeta(kernel.NewApplicationID("app-1"), "cv.docx", data, 1<<20)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if meta.ContentType != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Errorf("content type = %q", meta.ContentType)
	}
}

func TestExtractResumeMetaRejectsBadExtension(t *testing.T) {
	_, err := ExtractResumeMeta(kernel.NewApplicationID("app-1"), "malware.exe", []byte("MZ"), 1<<20)
	assertCode(t, err, CodeResumeBadType)
}

func TestExtractResumeMetaRejectsMismatchedContent(t *testing.T) {
	// A PNG renamed to .pdf must be refused.
	png := []byte("\x89PNG\r\n\x1a\n0000000000")
	_, err := ExtractResumeMeta(kernel.NewApplicationID("app-1"), "photo.pdf", png, 1<<20)
	assertCode(t, err, CodeResumeTypeMismatch)
}

func TestExtractResumeMetaMaxSize(t *testing.T) {
	_, err := ExtractResumeMeta(kernel.NewApplicationID("app-1"), "big.pdf", pdfBytes, 4)
	assertCode(t, err, CodeResumeTooLarge)
}

func TestExtractResumeMetaEmpty(t *testing.T) {
	_, err := ExtractResumeMeta(kernel.NewApplicationID("app-1"), "empty.pdf", nil, 1<<20)
	assertCode(t, err, CodeResumeEmpty)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":  "passwd",
		"résumé.pdf":        "r_sum_.pdf",
		"  spaced name.doc": "spaced_name.doc",
		"...":               "resume",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
