package univ

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"scoreboard/internal/app/apiresp"
)

type Handler struct {
	svc univService
}

type univService interface {
	Search(ctx context.Context, q string, limit int) ([]Program, error)
}

func NewHandler(svc univService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := MaxResults
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apiresp.WriteError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	items, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, ErrDirectoryUnavailable) {
			log.Printf("univ directory load failed: %v", err)
			apiresp.WriteError(w, r, http.StatusBadGateway, "데이터 로딩 실패: univ_info.json 파일명/경로 확인 필요")
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, items)
}
