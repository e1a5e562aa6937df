package application

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/kernel"
)

// ResumeMeta is the extracted metadata of an uploaded resume.
type ResumeMeta struct {
	Key         string
	Filename    string
	Size        int64
	ContentType string
	SHA256      string
}

// allowedResumeExts maps the accepted extensions to the content type stored
// when sniffing is inconclusive. doc/docx sniff as zip/ole containers, so
// the extension decides.
var allowedResumeExts = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename strips path components and collapses anything outside
// the safe character set.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "resume"
	}
	return name
}

var ResumeErrRegistry = errx.NewRegistry("RESUME")

var (
	CodeResumeTooLarge     = ResumeErrRegistry.Register("TOO_LARGE", errx.TypeValidation, http.StatusBadRequest, "Resume exceeds the maximum size")
	CodeResumeBadType      = ResumeErrRegistry.Register("BAD_TYPE", errx.TypeValidation, http.StatusBadRequest, "Resume type not allowed; accepted: pdf, doc, docx, txt")
	CodeResumeEmpty        = ResumeErrRegistry.Register("EMPTY", errx.TypeValidation, http.StatusBadRequest, "Resume file is empty")
	CodeResumeTypeMismatch = ResumeErrRegistry.Register("TYPE_MISMATCH", errx.TypeValidation, http.StatusBadRequest, "Resume content does not match its extension")
)

func ErrResumeTooLarge() *errx.Error { return ResumeErrRegistry.New(CodeResumeTooLarge) }
func ErrResumeBadType() *errx.Error  { return ResumeErrRegistry.New(CodeResumeBadType) }
func ErrResumeEmpty() *errx.Error    { return ResumeErrRegistry.New(CodeResumeEmpty) }

// ExtractResumeMeta validates an uploaded resume and computes its stored
// metadata: sanitized object key, sniffed content type and sha256 digest.
func ExtractResumeMeta(appID kernel.ApplicationID, filename string, data []byte, maxSize int64) (*ResumeMeta, error) {
	if len(data) == 0 {
		return nil, ErrResumeEmpty()
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, ErrResumeTooLarge().
			WithDetail("size", len(data)).
			WithDetail("max_size", maxSize)
	}

	clean := SanitizeFilename(filename)
	ext := strings.ToLower(filepath.Ext(clean))
	fallback, ok := allowedResumeExts[ext]
	if !ok {
		return nil, ErrResumeBadType().WithDetail("extension", ext)
	}

	contentType := sniffContentType(data, ext, fallback)
	if contentType == "" {
		return nil, ResumeErrRegistry.New(CodeResumeTypeMismatch).WithDetail("extension", ext)
	}

	sum := sha256.Sum256(data)

	return &ResumeMeta{
		Key:         fmt.Sprintf("resumes/%s/%s", appID.String(), clean),
		Filename:    clean,
		Size:        int64(len(data)),
		ContentType: contentType,
		SHA256:      hex.EncodeToString(sum[:]),
	}, nil
}

// sniffContentType detects the real content type and cross-checks it
// against the claimed extension. Returns "" on a mismatch.
func sniffContentType(data []byte, ext, fallback string) string {
	sniffed := http.DetectContentType(data)

	switch ext {
	case ".pdf":
		if strings.HasPrefix(sniffed, "application/pdf") {
			return "application/pdf"
		}
		return ""
	case ".txt":
		if strings.HasPrefix(sniffed, "text/plain") {
			return "text/plain"
		}
		return ""
	default:
		// doc sniffs as application/x-ole-storage or octet-stream, docx as
		// application/zip; accept those containers under the extension's
		// declared type.
		switch {
		case strings.HasPrefix(sniffed, "application/zip"),
			strings.HasPrefix(sniffed, "application/x-ole-storage"),
			strings.HasPrefix(sniffed, "application/octet-stream"):
			return fallback
		}
		return ""
	}
}
