package report

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"scoreboard/internal/app/apiresp"
	"scoreboard/internal/dataset"
	"scoreboard/internal/score"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc reportService
}

type reportService interface {
	StudentWorkbook(ctx context.Context, studentID string) ([]byte, dataset.Student, error)
}

func NewHandler(svc reportService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ExportStudent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid student id")
		return
	}

	b, student, err := h.svc.StudentWorkbook(r.Context(), id)
	if err != nil {
		score.WriteServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("scores_%s.xlsx", student.ID)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
