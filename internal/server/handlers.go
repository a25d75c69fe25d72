package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quenault/pathmine/internal/capability"
	"github.com/quenault/pathmine/internal/catalog"
	"github.com/quenault/pathmine/internal/pathquery"
)

// maxBodyBytes caps request bodies. Queries and environment documents are
// small; anything near this limit is abuse, not data.
const maxBodyBytes = 1 << 20

type parseResponse struct {
	Query       *pathquery.Query `json:"query"`
	Fingerprint string           `json:"fingerprint"`
}

type matchResponse struct {
	Tool     capability.ToolConfig `json:"tool"`
	Entities capability.EntitySet  `json:"entities"`
}

type saveRequest struct {
	Name string `json:"name"`
	XML  string `json:"xml"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Tools   int    `json:"tools"`
	Release string `json:"release,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Tools:   s.registry.Count(),
		Release: s.release,
	})
}

func (s *Server) handleParseQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "", "cannot read request body")
		return
	}

	q, err := pathquery.Parse(body)
	if err != nil {
		writeParseError(w, err)
		return
	}

	fingerprint, err := pathquery.Fingerprint(q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{Query: q, Fingerprint: fingerprint})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.All())
}

func (s *Server) handleMatchTools(w http.ResponseWriter, r *http.Request) {
	var env capability.Environment
	if err := decodeJSON(r, &env); err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	matches := s.registry.Match(env)
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchResponse{Tool: m.Tool, Entities: m.Entities})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	queries, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, queries)
}

func (s *Server) handleSaveQuery(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "", "name is required")
		return
	}

	saved, created, err := s.catalog.Save(r.Context(), req.Name, []byte(req.XML))
	if err != nil {
		var parseErr *pathquery.ParseError
		if errors.As(err, &parseErr) {
			writeParseError(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	saved, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("invalid json payload")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure here means the
	// client hung up, and there is nothing useful left to send.
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeParseError renders a query parse failure with its stable code.
func writeParseError(w http.ResponseWriter, err error) {
	var parseErr *pathquery.ParseError
	if errors.As(err, &parseErr) {
		writeError(w, http.StatusBadRequest, parseErr.Code, parseErr.Message)
		return
	}
	writeError(w, http.StatusBadRequest, "", err.Error())
}
