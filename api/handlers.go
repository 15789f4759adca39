package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/rensou/core"
)

func (s *Server) associate(w http.ResponseWriter, r *http.Request) {
	var req AssociateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeInvalidParameter, "request body must be a JSON object")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeValidationError(w, err)
		return
	}
	if !s.svc.Ready() {
		s.writeError(w, http.StatusServiceUnavailable, CodeModelLoadError, "model is not available")
		return
	}

	s.logger.Info("expansion requested", "keyword", req.Keyword, "generation", req.Generation, "threshold", req.threshold())
	result, err := s.svc.Expand(r.Context(), req.Keyword, req.Generation, req.threshold())
	if err != nil {
		s.writeServiceError(w, req.Keyword, err)
		return
	}

	s.writeJSON(w, http.StatusOK, AssociateResponse{
		Status:      StatusSuccess,
		Keyword:     req.Keyword,
		Generation:  req.Generation,
		Generations: result.Nodes,
		TotalCount:  result.TotalCount,
	})
}

func (s *Server) modelInfo(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Ready() {
		s.writeError(w, http.StatusServiceUnavailable, CodeModelLoadError, "model is not available")
		return
	}
	s.writeJSON(w, http.StatusOK, ModelInfoResponse{
		Status:    StatusSuccess,
		ModelInfo: s.svc.ModelInfo(),
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Ready() {
		s.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Message: "model is not loaded"})
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Message: "API is running"})
}

func (s *Server) banner(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, BannerResponse{Message: "Word Association API", Version: s.version})
}

func (s *Server) writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		s.writeError(w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
		return
	}
	fe := verrs[0]
	if fe.Field() == "keyword" && fe.Tag() == "required" {
		s.writeError(w, http.StatusBadRequest, CodeKeywordRequired, "keyword is required")
		return
	}
	s.writeError(w, http.StatusBadRequest, CodeInvalidParameter, validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, keyword string, err error) {
	switch {
	case errors.Is(err, core.ErrKeywordRequired):
		s.writeError(w, http.StatusBadRequest, CodeKeywordRequired, "keyword is required")
	case errors.Is(err, core.ErrInvalidParameter):
		s.writeError(w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
	case errors.Is(err, core.ErrKeywordNotFound):
		s.writeError(w, http.StatusNotFound, CodeKeywordNotFound, fmt.Sprintf("keyword %q is not in the model vocabulary", keyword))
	case errors.Is(err, core.ErrOracleUnavailable):
		s.logger.Error("oracle unavailable", "err", err)
		s.writeError(w, http.StatusServiceUnavailable, CodeModelLoadError, "model is not available")
	default:
		s.logger.Error("expansion failed", "keyword", keyword, "err", err)
		s.writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to retrieve associations")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	s.writeJSON(w, status, ErrorResponse{Status: StatusError, ErrorCode: code, Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "status", status, "err", err)
	}
}
