package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/cloudstore/internal/common"
)

// Numeric error codes returned alongside the message, kept stable for the
// frontend contract.
const (
	codeBadCredentials    = 1001
	codeInvalidInputData  = 1002
	codeFileAlreadyExists = 1003
	codeUnauthorized      = 2001
	codeServerError       = 3001
	codeFileSystemError   = 3002
)

// ErrorResponse is the JSON error body: {"message": ..., "id": ...}.
type ErrorResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to transport status and body. Validation
// and uniqueness failures surface their message; storage failures surface a
// generic message only, the cause having been logged by the service.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorMissingToken) || errors.Is(err, common.ErrorInvalidToken):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: err.Error(), ID: codeUnauthorized})
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error(), ID: codeBadCredentials})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error(), ID: codeFileAlreadyExists})
	case errors.Is(err, common.ErrorUsernameTaken) || errors.Is(err, common.ErrorEmailTaken):
		// registration conflicts are reported as invalid input, not as
		// the file-exists code
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error(), ID: codeInvalidInputData})
	case errors.Is(err, common.ErrorNotFound):
		// existence is not leaked across owners, so a miss is reported
		// as bad input rather than a dedicated not-found status
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "file not found or access denied", ID: codeInvalidInputData})
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error(), ID: codeInvalidInputData})
	case errors.Is(err, common.ErrorStorage):
		s.logger.Error(r.Context(), "storage failure", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: err.Error(), ID: codeFileSystemError})
	default:
		s.logger.Error(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal server error", ID: codeServerError})
	}
}
