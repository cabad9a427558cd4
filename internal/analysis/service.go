package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
)

// Service runs the analyze pipeline: validate, extract, truncate, compose,
// complete. It holds no per-request state.
type Service struct {
	Completer llm.Completer
	// Provider and Model are reported in results and health checks.
	Provider string
	Model    string
	// CredentialName is the setting an operator must supply when Configured is false.
	CredentialName string
	Configured     bool
	Params         llm.Params
	Metrics        *metrics.Registry
}

// Analyze validates the request, extracts the resume text and returns the
// model's critique. Failures are *Error values.
func (s *Service) Analyze(ctx context.Context, in Input) (*Result, error) {
	s.Metrics.IncRequests()
	res, err := s.analyze(ctx, in)
	if err != nil {
		return nil, s.countFailure(err)
	}
	s.Metrics.IncSucceeded()
	return res, nil
}

// Reject records an analyze request refused before it reached Analyze, such
// as a malformed multipart body, and returns err unchanged.
func (s *Service) Reject(err error) error {
	s.Metrics.IncRequests()
	return s.countFailure(err)
}

func (s *Service) countFailure(err error) error {
	if kind, ok := KindOf(err); ok && kind.ClientError() {
		s.Metrics.IncRejected()
	} else {
		s.Metrics.IncFailed()
	}
	return err
}

func (s *Service) analyze(ctx context.Context, in Input) (*Result, error) {
	format, err := ValidateFilename(in.Filename)
	if err != nil {
		return nil, err
	}
	jobDescription, err := ValidateJobDescription(in.JobDescription)
	if err != nil {
		return nil, err
	}

	data, err := readUpload(in.Open)
	if err != nil {
		return nil, err
	}

	text, err := extract.Text(ctx, data, format)
	if err != nil {
		if errors.Is(err, extract.ErrParse) {
			return nil, newError(KindDocumentParse, err.Error(), err)
		}
		return nil, fmt.Errorf("extract %s: %w", in.Filename, err)
	}
	resumeText, err := ValidateResumeText(text)
	if err != nil {
		return nil, err
	}

	resumeText = Truncate(resumeText, MaxResumeChars)
	jobDescription = Truncate(jobDescription, MaxJobDescriptionChars)

	analysis, err := s.complete(ctx, ComposePrompt(resumeText, jobDescription))
	if err != nil {
		return nil, err
	}

	return &Result{
		Analysis: analysis,
		Metadata: Metadata{
			ResumeLength: utf8.RuneCountInString(resumeText),
			Filename:     in.Filename,
			ModelUsed:    s.Model,
			Service:      s.Provider,
		},
	}, nil
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	if !s.Configured || s.Completer == nil {
		return "", newError(KindConfiguration, s.notConfiguredDetail(), llm.ErrNotConfigured)
	}

	start := time.Now()
	text, err := s.Completer.Generate(ctx, llm.Request{
		Prompt:        prompt,
		SystemMessage: SystemMessage,
		Model:         s.Model,
		Params:        s.Params,
	})
	s.Metrics.ObserveCompletion(time.Since(start))
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", newError(KindConfiguration, s.notConfiguredDetail(), err)
		}
		telemetry.Error("analysis.completion_failed", map[string]any{
			"provider": s.Provider,
			"model":    s.Model,
			"error":    err,
		})
		return "", newError(KindCompletion, "Error analyzing resume: "+err.Error(), err)
	}
	return text, nil
}

func (s *Service) notConfiguredDetail() string {
	name := s.CredentialName
	if name == "" {
		name = "API key"
	}
	return name + " environment variable is not set"
}

func readUpload(open func() (io.ReadCloser, error)) ([]byte, error) {
	if open == nil {
		return nil, newError(KindMissingFile, "A resume file is required.", nil)
	}
	rc, err := open()
	if err != nil {
		return nil, uploadError(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, uploadError(err)
	}
	return data, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return newError(KindFileTooLarge, fmt.Sprintf("Resume file exceeds the %d byte limit.", tooLarge.Limit), err)
	}
	return newError(KindMissingFile, "Unable to read the uploaded resume file.", err)
}
