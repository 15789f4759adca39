package api

import "github.com/poiesic/rensou/core"

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorCode identifies an error class in error responses.
type ErrorCode string

const (
	CodeKeywordRequired  ErrorCode = "KEYWORD_REQUIRED"
	CodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
	CodeKeywordNotFound  ErrorCode = "KEYWORD_NOT_FOUND"
	CodeModelLoadError   ErrorCode = "MODEL_LOAD_ERROR"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// DefaultThreshold applies when a request omits threshold.
const DefaultThreshold = core.DefaultThreshold

// AssociateRequest is the body of POST /api/v1/associate.
type AssociateRequest struct {
	Keyword    string   `json:"keyword" validate:"required,max=100"`
	Generation int      `json:"generation" validate:"required,gte=2,lte=5"`
	Threshold  *float64 `json:"threshold,omitempty" validate:"omitnil,gte=0,lte=1"`
}

// threshold returns the requested threshold or DefaultThreshold.
func (r *AssociateRequest) threshold() float64 {
	if r.Threshold == nil {
		return DefaultThreshold
	}
	return *r.Threshold
}

// AssociateResponse is the success body of POST /api/v1/associate.
type AssociateResponse struct {
	Status      string                `json:"status"`
	Keyword     string                `json:"keyword"`
	Generation  int                   `json:"generation"`
	Generations []core.GenerationNode `json:"generations"`
	TotalCount  int                   `json:"total_count"`
}

// ModelInfoResponse is the body of GET /api/v1/model/info.
type ModelInfoResponse struct {
	Status    string         `json:"status"`
	ModelInfo core.ModelInfo `json:"model_info"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// BannerResponse is the body of GET /.
type BannerResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Status    string    `json:"status"`
	ErrorCode ErrorCode `json:"error_code"`
	Message   string    `json:"message"`
}
