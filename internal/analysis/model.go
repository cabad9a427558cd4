package analysis

import "io"

// Input is one analyze request. Open is called only after the filename and
// job description pass validation.
type Input struct {
	Filename       string
	JobDescription string
	Open           func() (io.ReadCloser, error)
}

// Result is the model's critique plus request metadata.
type Result struct {
	Analysis string   `json:"analysis"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes how a Result was produced.
type Metadata struct {
	ResumeLength int    `json:"resume_length"`
	Filename     string `json:"filename"`
	ModelUsed    string `json:"model_used"`
	Service      string `json:"service"`
}
