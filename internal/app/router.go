package app

import (
	"database/sql"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"scoreboard/internal/app/observability"
	"scoreboard/internal/dataset"
	"scoreboard/internal/report"
	"scoreboard/internal/score"
	"scoreboard/internal/univ"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(cfg Config, src dataset.Source, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	collector := observability.NewCollector(db)
	r.Use(collector.Middleware)

	tmpl := template.Must(template.ParseGlob(filepath.Join(cfg.TemplateDir, "layout", "*.html")))
	template.Must(tmpl.ParseGlob(filepath.Join(cfg.TemplateDir, "pages", "*.html")))

	scoreSvc := score.NewService(src, score.Files{
		Scores:   cfg.ScoresFile,
		Students: cfg.StudentsFile,
	}, cfg.RecentWindow)
	scoreHandler := score.NewHandler(scoreSvc)

	univHandler := univ.NewHandler(univ.NewService(src, cfg.UnivFile))
	reportHandler := report.NewHandler(report.NewService(scoreSvc))

	limiter := NewIPRateLimiter(cfg.RateLimitPerMin, time.Minute)
	adminGate := NewAdminGate(cfg.AdminTokenHash)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", collector.MetricsHandler)

	page := func(name, title string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			data := map[string]any{
				"Title": title,
				"Env":   cfg.AppEnv,
			}
			if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
	r.Get("/", page("home", "성적 조회"))
	r.Get("/student", page("student", "내 성적"))
	r.Get("/univ", page("univ", "대학 학과 검색"))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Student-Token", adminTokenHeader},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
		api.Use(RateLimitMiddleware(limiter))

		api.Get("/univ", univHandler.Search)
		api.Get("/me/scores", scoreHandler.MyScores)
		api.Get("/me/scores/series/{subject}", scoreHandler.MySeries)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(adminGate.Middleware)
			admin.Get("/students", scoreHandler.ListStudents)
			admin.Get("/students/{id}/scores", scoreHandler.StudentScores)
			admin.Get("/students/{id}/scores/series/{subject}", scoreHandler.StudentSeries)
			admin.Get("/students/{id}/scores/export.xlsx", reportHandler.ExportStudent)
		})
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	return r
}
