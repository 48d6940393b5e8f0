package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const pageTitle = "📧 Email SpamGuard AI"

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Label        int    `json:"label"`
	Spam         bool   `json:"spam"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	ProcessingID string `json:"processing_id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) newPage() pageData {
	page := pageData{Title: pageTitle}
	if err := s.service.LoadError(); err != nil {
		page.LoadError = err.Error()
	}
	return page
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, pageTemplate, page); err != nil {
		s.logger.Error("Failed to render page",
			zap.Error(err),
			zap.String("request_id", requestIDFrom(r.Context())))
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.newPage())
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	page := s.newPage()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		page.Error = "Could not read the submitted email: " + err.Error()
		s.render(w, r, status, page)
		return
	}

	page.Input = r.PostFormValue("message")

	verdict, err := s.service.AnalyzeText(r.Context(), page.Input)
	if err != nil {
		f := describeError(err)
		status := f.status
		if f.warning {
			page.Warning = f.message
			status = http.StatusOK
		} else {
			page.Error = f.message
		}
		s.render(w, r, status, page)
		return
	}

	result := renderResult(verdict)
	page.Result = &result
	page.ProcessingID = verdict.ProcessingID
	s.render(w, r, http.StatusOK, page)
}

func (s *Server) apiAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}

	verdict, err := s.service.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		f := describeError(err)
		respondJSON(w, f.status, errorResponse{Error: f.message, Kind: f.kind})
		return
	}

	result := renderResult(verdict)
	respondJSON(w, http.StatusOK, analyzeResponse{
		Label:        int(verdict.Label),
		Spam:         verdict.IsSpam,
		Title:        result.Title,
		Message:      result.Message,
		ProcessingID: verdict.ProcessingID,
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if !s.service.Ready() {
		body := map[string]string{"status": "not ready"}
		if err := s.service.LoadError(); err != nil {
			body["error"] = err.Error()
		}
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
