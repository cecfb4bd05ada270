package score

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"scoreboard/internal/app/apiresp"
	"scoreboard/internal/dataset"

	"github.com/go-chi/chi/v5"
)

const studentTokenHeader = "X-Student-Token"

type Handler struct {
	svc scoreService
}

type scoreService interface {
	ListStudents(ctx context.Context) ([]dataset.Student, error)
	ViewByID(ctx context.Context, id string) (*StudentView, error)
	ViewByToken(ctx context.Context, token string) (*StudentView, error)
	SeriesByID(ctx context.Context, id string, subject Subject) ([]Point, error)
	SeriesByToken(ctx context.Context, token string, subject Subject) ([]Point, error)
}

type response struct {
	OK    bool
	Data  interface{}
	Error string
	Code  string
}

func NewHandler(svc scoreService) *Handler {
	return &Handler{svc: svc}
}

// MyScores serves the caller's own view, identified by their roster token.
func (h *Handler) MyScores(w http.ResponseWriter, r *http.Request) {
	token := readStudentToken(r)
	if token == "" {
		writeJSON(w, r, http.StatusUnauthorized, response{Error: "student token is required"})
		return
	}
	view, err := h.svc.ViewByToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	// Roster metadata is for staff only.
	view.Student = view.Student.Public()
	writeJSON(w, r, http.StatusOK, response{OK: true, Data: view})
}

func (h *Handler) MySeries(w http.ResponseWriter, r *http.Request) {
	token := readStudentToken(r)
	if token == "" {
		writeJSON(w, r, http.StatusUnauthorized, response{Error: "student token is required"})
		return
	}
	subject, err := ParseSubject(subjectParam(r))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, response{Error: err.Error()})
		return
	}
	points, err := h.svc.SeriesByToken(r.Context(), token, subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, response{OK: true, Data: points})
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListStudents(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q != "" {
		filtered := make([]dataset.Student, 0, len(items))
		for _, s := range items {
			if strings.Contains(strings.ToLower(s.ID), q) || strings.Contains(strings.ToLower(s.Name), q) {
				filtered = append(filtered, s)
			}
		}
		items = filtered
	}
	writeJSON(w, r, http.StatusOK, response{OK: true, Data: items})
}

func (h *Handler) StudentScores(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeJSON(w, r, http.StatusBadRequest, response{Error: "invalid student id"})
		return
	}
	view, err := h.svc.ViewByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, response{OK: true, Data: view})
}

func (h *Handler) StudentSeries(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeJSON(w, r, http.StatusBadRequest, response{Error: "invalid student id"})
		return
	}
	subject, err := ParseSubject(subjectParam(r))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, response{Error: err.Error()})
		return
	}
	points, err := h.svc.SeriesByID(r.Context(), id, subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, response{OK: true, Data: points})
}

// WriteServiceError maps service errors to responses. The report handler
// shares it so both surfaces answer the same way.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, err)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dataset.ErrStudentNotFound):
		writeJSON(w, r, http.StatusNotFound, response{Error: err.Error()})
	case errors.Is(err, ErrNoScoreData):
		writeJSON(w, r, http.StatusNotFound, response{Error: err.Error(), Code: "no_score_data"})
	case errors.Is(err, ErrUnknownSubject):
		writeJSON(w, r, http.StatusBadRequest, response{Error: err.Error()})
	case errors.Is(err, ErrDatasetUnavailable):
		log.Printf("dataset load failed: %v", err)
		writeJSON(w, r, http.StatusBadGateway, response{Error: "dataset load failed"})
	default:
		log.Printf("score request failed: %v", err)
		writeJSON(w, r, http.StatusInternalServerError, response{Error: "internal error"})
	}
}

// subjectParam decodes the path segment so Korean labels such as 국어 work.
func subjectParam(r *http.Request) string {
	raw := chi.URLParam(r, "subject")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func readStudentToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(studentTokenHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("t"))
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload response) {
	if payload.OK {
		apiresp.WriteOK(w, r, code, payload.Data)
		return
	}
	apiresp.WriteErrorCode(w, r, code, payload.Code, payload.Error)
}
