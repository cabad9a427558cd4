package analysis

import (
	"strings"
	"unicode/utf8"

	"resume-analyzer/internal/extract"
)

const (
	MinJobDescriptionChars = 50
	MinResumeChars         = 100
	MaxResumeChars         = 4000
	MaxJobDescriptionChars = 2500
)

// ValidateFilename returns the document format named by filename.
func ValidateFilename(filename string) (extract.Format, error) {
	if strings.TrimSpace(filename) == "" {
		return "", newError(KindUnsupportedFormat, "A resume file with a filename is required. Please upload a PDF or DOCX file.", nil)
	}
	format, ok := extract.FormatFromFilename(filename)
	if !ok {
		return "", newError(KindUnsupportedFormat, "Unsupported file format. Please upload a PDF or DOCX file.", nil)
	}
	return format, nil
}

// ValidateJobDescription returns the trimmed job description.
func ValidateJobDescription(jd string) (string, error) {
	trimmed := strings.TrimSpace(jd)
	if utf8.RuneCountInString(trimmed) < MinJobDescriptionChars {
		return "", newError(KindInsufficientInput, "Job description is too short. Please provide at least 50 characters.", nil)
	}
	return trimmed, nil
}

// ValidateResumeText returns the trimmed resume text.
func ValidateResumeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < MinResumeChars {
		return "", newError(KindInsufficientInput, "Could not extract enough text from the resume. The file may be a scanned image or empty. Please upload a text-based PDF or DOCX.", nil)
	}
	return trimmed, nil
}

// Truncate returns the first n characters of s. Word boundaries are ignored.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
