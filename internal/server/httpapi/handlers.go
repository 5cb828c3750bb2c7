package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/cloudstore/internal/common"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth-token"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", common.ErrorValidation))
		return
	}

	s.logger.Info(r.Context(), "login request", "login", req.Login)
	token, err := s.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AuthToken: token})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", common.ErrorValidation))
		return
	}

	s.logger.Info(r.Context(), "register request", "username", req.Username)
	if err := s.auth.Register(r.Context(), req.Username, req.Password, req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), r.Header.Get(common.AuthTokenHeaderName)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	filename := r.URL.Query().Get("filename")

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: file part is missing", common.ErrorValidation))
		return
	}
	defer file.Close()

	s.logger.Info(r.Context(), "upload file", "owner", owner, "filename", filename)
	mimeType := header.Header.Get("Content-Type")
	if err := s.files.Upload(r.Context(), owner, filename, file, header.Size, mimeType); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	filename := r.URL.Query().Get("filename")
	s.logger.Info(r.Context(), "download file", "owner", owner, "filename", filename)

	meta, rc, err := s.files.Download(r.Context(), owner, filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+meta.Filename+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	if _, err := io.Copy(w, rc); err != nil {
		// headers are gone, nothing to do but log
		s.logger.Error(r.Context(), "error streaming file", "owner", owner, "filename", filename, "error", err)
	}
}

func (s *HTTPServer) handleRename(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", common.ErrorValidation))
		return
	}

	filename := r.URL.Query().Get("filename")
	s.logger.Info(r.Context(), "rename file", "owner", owner, "from", filename, "to", req.Name)

	if err := s.files.Rename(r.Context(), owner, filename, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	filename := r.URL.Query().Get("filename")
	s.logger.Info(r.Context(), "delete file", "owner", owner, "filename", filename)

	if err := s.files.Delete(r.Context(), owner, filename); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.resolveOwner(w, r)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: limit must be an integer", common.ErrorValidation))
		return
	}

	items, err := s.files.List(r.Context(), owner, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
