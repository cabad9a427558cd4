package analysis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"resume-analyzer/internal/extract/extracttest"
	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/metrics"
)

// recordingCompleter returns a fixed response and remembers every request.
type recordingCompleter struct {
	mu       sync.Mutex
	requests []llm.Request
	resp     string
	err      error
}

func (r *recordingCompleter) Generate(ctx context.Context, req llm.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return r.resp, r.err
}

func (r *recordingCompleter) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func newTestService(completer llm.Completer) *Service {
	return &Service{
		Completer:      completer,
		Provider:       "groq",
		Model:          "llama-3.3-70b-versatile",
		CredentialName: "GROQ_API_KEY",
		Configured:     true,
		Params:         llm.DefaultParams,
		Metrics:        metrics.NewRegistry(),
	}
}

func bytesOpener(data []byte) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

var (
	sampleResume = []string{
		"Jane Doe",
		"Senior Backend Engineer",
		"5 years Python backend experience building REST APIs with Django and FastAPI",
		"Deployed services on AWS using ECS, Lambda and RDS",
	}
	sampleJobDescription = "We are hiring a backend engineer with strong Python skills and hands-on AWS experience to build scalable APIs."
)

func TestAnalyzeSuccess(t *testing.T) {
	completer := &recordingCompleter{resp: "## 1. MATCH SCORE\nScore: 88/100"}
	svc := newTestService(completer)

	res, err := svc.Analyze(context.Background(), Input{
		Filename:       "jane.docx",
		JobDescription: "  " + sampleJobDescription + "  ",
		Open:           bytesOpener(extracttest.DOCX(sampleResume...)),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Analysis != "## 1. MATCH SCORE\nScore: 88/100" {
		t.Fatalf("expected analysis verbatim, got %q", res.Analysis)
	}
	wantText := strings.Join(sampleResume, "\n")
	if res.Metadata.ResumeLength != utf8.RuneCountInString(wantText) {
		t.Fatalf("unexpected resume_length %d", res.Metadata.ResumeLength)
	}
	if res.Metadata.Filename != "jane.docx" || res.Metadata.ModelUsed != "llama-3.3-70b-versatile" || res.Metadata.Service != "groq" {
		t.Fatalf("unexpected metadata %+v", res.Metadata)
	}

	if completer.calls() != 1 {
		t.Fatalf("expected one completion call, got %d", completer.calls())
	}
	req := completer.requests[0]
	if req.SystemMessage != SystemMessage {
		t.Fatalf("unexpected system message %q", req.SystemMessage)
	}
	if req.Params != llm.DefaultParams {
		t.Fatalf("unexpected params %+v", req.Params)
	}
	if req.Prompt != ComposePrompt(wantText, sampleJobDescription) {
		t.Fatalf("prompt does not match composed template")
	}
	if !strings.Contains(svc.Metrics.Render(), "analyze_succeeded_total 1\n") {
		t.Fatal("expected success counted")
	}
}

func TestAnalyzeTruncatesExactly(t *testing.T) {
	completer := &recordingCompleter{resp: "ok"}
	svc := newTestService(completer)

	longResume := strings.Repeat("é", 3000) + strings.Repeat("x", 2000)
	longJD := strings.Repeat("j", 2400) + strings.Repeat("ü", 300)

	res, err := svc.Analyze(context.Background(), Input{
		Filename:       "long.DOCX",
		JobDescription: longJD,
		Open:           bytesOpener(extracttest.DOCX(longResume)),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Metadata.ResumeLength != MaxResumeChars {
		t.Fatalf("expected resume_length %d, got %d", MaxResumeChars, res.Metadata.ResumeLength)
	}
	wantPrompt := ComposePrompt(
		strings.Repeat("é", 3000)+strings.Repeat("x", 1000),
		strings.Repeat("j", 2400)+strings.Repeat("ü", 100),
	)
	if completer.requests[0].Prompt != wantPrompt {
		t.Fatal("expected prompt built from exactly the first 4000 and 2500 characters")
	}
}

func TestAnalyzeRejections(t *testing.T) {
	opened := false
	trackingOpener := func(data []byte) func() (io.ReadCloser, error) {
		return func() (io.ReadCloser, error) {
			opened = true
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	tests := []struct {
		name       string
		in         Input
		wantKind   Kind
		wantOpened bool
		detail     string
	}{
		{
			name:     "txt file",
			in:       Input{Filename: "resume.txt", JobDescription: sampleJobDescription, Open: trackingOpener([]byte("plain text"))},
			wantKind: KindUnsupportedFormat,
			detail:   "PDF or DOCX",
		},
		{
			name:     "missing filename",
			in:       Input{Filename: "", JobDescription: sampleJobDescription, Open: trackingOpener(nil)},
			wantKind: KindUnsupportedFormat,
		},
		{
			name:     "short job description",
			in:       Input{Filename: "resume.pdf", JobDescription: "   Python dev wanted   ", Open: trackingOpener(nil)},
			wantKind: KindInsufficientInput,
			detail:   "Job description",
		},
		{
			name:       "short resume text",
			in:         Input{Filename: "resume.docx", JobDescription: sampleJobDescription, Open: trackingOpener(extracttest.DOCX("Jane Doe", "Engineer"))},
			wantKind:   KindInsufficientInput,
			wantOpened: true,
			detail:     "scanned",
		},
		{
			name:       "corrupt pdf",
			in:         Input{Filename: "resume.pdf", JobDescription: sampleJobDescription, Open: trackingOpener([]byte("%PDF-garbage"))},
			wantKind:   KindDocumentParse,
			wantOpened: true,
			detail:     "Error reading PDF",
		},
		{
			name:       "docx that is not a zip",
			in:         Input{Filename: "resume.docx", JobDescription: sampleJobDescription, Open: trackingOpener([]byte("hello"))},
			wantKind:   KindDocumentParse,
			wantOpened: true,
			detail:     "Error reading DOCX",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			opened = false
			completer := &recordingCompleter{resp: "unused"}
			svc := newTestService(completer)

			_, err := svc.Analyze(context.Background(), tt.in)
			kind, ok := KindOf(err)
			if !ok || kind != tt.wantKind {
				t.Fatalf("expected kind %v, got %v (%v)", tt.wantKind, kind, err)
			}
			if !kind.ClientError() {
				t.Fatalf("expected client error kind, got status %d", kind.Status())
			}
			if opened != tt.wantOpened {
				t.Fatalf("expected opened=%v, got %v", tt.wantOpened, opened)
			}
			if tt.detail != "" && !strings.Contains(err.Error(), tt.detail) {
				t.Fatalf("expected detail containing %q, got %q", tt.detail, err.Error())
			}
			if completer.calls() != 0 {
				t.Fatalf("expected no completion calls, got %d", completer.calls())
			}
			if !strings.Contains(svc.Metrics.Render(), "analyze_rejected_total 1\n") {
				t.Fatal("expected rejection counted")
			}
		})
	}
}

func TestAnalyzeCompletionFailure(t *testing.T) {
	upstream := errors.New("dial tcp: connection refused")
	completer := &recordingCompleter{err: errors.Join(llm.ErrCompletion, upstream)}
	svc := newTestService(completer)

	_, err := svc.Analyze(context.Background(), Input{
		Filename:       "jane.docx",
		JobDescription: sampleJobDescription,
		Open:           bytesOpener(extracttest.DOCX(sampleResume...)),
	})
	kind, ok := KindOf(err)
	if !ok || kind != KindCompletion {
		t.Fatalf("expected completion error, got %v", err)
	}
	if kind.Status() != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", kind.Status())
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected upstream message in %q", err.Error())
	}
	if !errors.Is(err, upstream) {
		t.Fatal("expected upstream error to be wrapped")
	}
	if completer.calls() != 1 {
		t.Fatalf("expected exactly one attempt, got %d", completer.calls())
	}
}

func TestAnalyzeNotConfigured(t *testing.T) {
	completer := &recordingCompleter{resp: "unused"}
	svc := newTestService(completer)
	svc.Configured = false

	_, err := svc.Analyze(context.Background(), Input{
		Filename:       "jane.docx",
		JobDescription: sampleJobDescription,
		Open:           bytesOpener(extracttest.DOCX(sampleResume...)),
	})
	kind, ok := KindOf(err)
	if !ok || kind != KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "GROQ_API_KEY") {
		t.Fatalf("expected credential name in %q", err.Error())
	}
	if completer.calls() != 0 {
		t.Fatalf("expected no completion calls, got %d", completer.calls())
	}
}

func TestAnalyzeCompleterReportsNotConfigured(t *testing.T) {
	svc := newTestService(&recordingCompleter{err: llm.ErrNotConfigured})

	_, err := svc.Analyze(context.Background(), Input{
		Filename:       "jane.docx",
		JobDescription: sampleJobDescription,
		Open:           bytesOpener(extracttest.DOCX(sampleResume...)),
	})
	if kind, _ := KindOf(err); kind != KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(svc.Metrics.Render(), "analyze_failed_total 1\n") {
		t.Fatal("expected failure counted")
	}
}

func TestAnalyzeUploadTooLarge(t *testing.T) {
	svc := newTestService(&recordingCompleter{resp: "unused"})

	_, err := svc.Analyze(context.Background(), Input{
		Filename:       "jane.pdf",
		JobDescription: sampleJobDescription,
		Open: func() (io.ReadCloser, error) {
			return nil, &http.MaxBytesError{Limit: 10}
		},
	})
	if kind, _ := KindOf(err); kind != KindFileTooLarge {
		t.Fatalf("expected file too large, got %v", err)
	}
}
