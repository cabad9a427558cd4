package analysis

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
)

const (
	// Version is reported by the info route.
	Version = "1.0.0"

	maxUploadSize   = 10 << 20 // 10MB
	multipartMemory = 10 << 20
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the info, health and analyze routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.info)
	r.GET("/health", h.health)
	r.POST("/analyze", h.analyze)
}

func (h *Handler) info(c *gin.Context) {
	respond.OK(c, gin.H{
		"message": "Resume Analyzer API",
		"version": Version,
		"status":  "running",
		"endpoints": gin.H{
			"/analyze": "POST - Analyze resume against job description",
			"/health":  "GET - Health check and API status",
			"/metrics": "GET - Analysis metrics in Prometheus text format",
		},
	})
}

// HealthResponse reports whether the completion credential is configured.
// Upstream reachability is not checked.
type HealthResponse struct {
	Status        string `json:"status"`
	APIConfigured bool   `json:"api_configured"`
	Service       string `json:"service"`
	Model         string `json:"model"`
	Message       string `json:"message"`
}

func (h *Handler) health(c *gin.Context) {
	resp := HealthResponse{
		Status:        "healthy",
		APIConfigured: h.Svc.Configured,
		Service:       h.Svc.Provider,
		Model:         h.Svc.Model,
		Message:       "API is ready",
	}
	if !h.Svc.Configured {
		resp.Status = "unhealthy"
		resp.Message = h.Svc.notConfiguredDetail()
	}
	respond.OK(c, resp)
}

// AnalyzeResponse is the success body of POST /analyze.
type AnalyzeResponse struct {
	Success  bool     `json:"success"`
	Analysis string   `json:"analysis"`
	Metadata Metadata `json:"metadata"`
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, h.Svc.Reject(uploadError(err)))
			return
		}
		h.fail(c, h.Svc.Reject(newError(KindMissingFile, "Request must be multipart/form-data with a resume file and a job_description field.", err)))
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		h.fail(c, h.Svc.Reject(newError(KindMissingFile, "A resume file is required.", err)))
		return
	}
	c.Set(middleware.FilenameKey, fileHeader.Filename)

	result, err := h.Svc.Analyze(c.Request.Context(), Input{
		Filename:       fileHeader.Filename,
		JobDescription: c.PostForm("job_description"),
		Open: func() (io.ReadCloser, error) {
			return fileHeader.Open()
		},
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond.OK(c, AnalyzeResponse{
		Success:  true,
		Analysis: result.Analysis,
		Metadata: result.Metadata,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	var e *Error
	if errors.As(err, &e) {
		respond.Error(c, e.Kind.Status(), e.Kind.Code(), e.Detail)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected error while analyzing resume")
}
