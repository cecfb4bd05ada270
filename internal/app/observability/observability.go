package observability

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const prefix = "scoreboard_"

type routeKey struct {
	Method string
	Route  string
	Status int
}

type routeStat struct {
	Count   int64
	Bytes   int64
	TotalMS float64
	MaxMS   float64
}

// Collector keeps per-route request counters and writes one JSON access-log
// line per request.
type Collector struct {
	db        *sql.DB
	startedAt time.Time

	mu     sync.Mutex
	routes map[routeKey]routeStat
}

func NewCollector(db *sql.DB) *Collector {
	return &Collector{
		db:        db,
		startedAt: time.Now(),
		routes:    make(map[routeKey]routeStat),
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		route := routeOf(r)
		c.record(routeKey{Method: r.Method, Route: route, Status: rec.status}, rec.bytes, elapsed)

		b, _ := json.Marshal(map[string]any{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"route":      route,
			"status":     rec.status,
			"bytes":      rec.bytes,
			"latency_ms": elapsed,
			"student_id": extractStudentID(r.URL.Path),
			"remote_ip":  strings.TrimSpace(r.RemoteAddr),
		})
		log.Printf("%s", b)
	})
}

func (c *Collector) record(k routeKey, bytes int64, ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.routes[k]
	s.Count++
	s.Bytes += bytes
	s.TotalMS += ms
	if ms > s.MaxMS {
		s.MaxMS = ms
	}
	c.routes[k] = s
}

// routeOf prefers the matched chi pattern and falls back to a folded path
// for requests no route matched.
func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" && p != "/*" {
			return p
		}
	}
	return normalizedPath(r.URL.Path)
}

func (c *Collector) snapshot() ([]routeKey, map[routeKey]routeStat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := make(map[routeKey]routeStat, len(c.routes))
	keys := make([]routeKey, 0, len(c.routes))
	for k, v := range c.routes {
		stats[k] = v
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Route != keys[j].Route {
			return keys[i].Route < keys[j].Route
		}
		if keys[i].Method != keys[j].Method {
			return keys[i].Method < keys[j].Method
		}
		return keys[i].Status < keys[j].Status
	})
	return keys, stats
}

// MetricsHandler writes the counters in the Prometheus text format.
func (c *Collector) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	keys, stats := c.snapshot()

	var sb strings.Builder
	mw := metricWriter{w: &sb}
	mw.gauge("uptime_seconds", "", strconv.FormatFloat(time.Since(c.startedAt).Seconds(), 'f', 0, 64))

	var upstreamErrors int64
	mw.typeLine("http_requests_total", "counter")
	for _, k := range keys {
		mw.sample("http_requests_total", k.labels(), strconv.FormatInt(stats[k].Count, 10))
		if k.Status == http.StatusBadGateway {
			upstreamErrors += stats[k].Count
		}
	}
	mw.typeLine("http_response_bytes_total", "counter")
	for _, k := range keys {
		mw.sample("http_response_bytes_total", k.labels(), strconv.FormatInt(stats[k].Bytes, 10))
	}
	mw.typeLine("http_request_latency_ms_avg", "gauge")
	for _, k := range keys {
		s := stats[k]
		mw.sample("http_request_latency_ms_avg", k.labels(), fmt.Sprintf("%.3f", s.TotalMS/float64(max(s.Count, 1))))
	}
	mw.typeLine("http_request_latency_ms_max", "gauge")
	for _, k := range keys {
		mw.sample("http_request_latency_ms_max", k.labels(), fmt.Sprintf("%.3f", stats[k].MaxMS))
	}
	mw.gauge("dataset_upstream_errors_total", "counter", strconv.FormatInt(upstreamErrors, 10))

	if c.db != nil {
		dbs := c.db.Stats()
		mw.gauge("db_open_connections", "", strconv.Itoa(dbs.OpenConnections))
		mw.gauge("db_in_use_connections", "", strconv.Itoa(dbs.InUse))
		mw.gauge("db_idle_connections", "", strconv.Itoa(dbs.Idle))
		mw.gauge("db_wait_count", "counter", strconv.FormatInt(dbs.WaitCount, 10))
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, sb.String())
}

func (k routeKey) labels() string {
	return fmt.Sprintf("method=%q,route=%q,status=\"%d\"", k.Method, k.Route, k.Status)
}

type metricWriter struct {
	w io.Writer
}

func (m metricWriter) typeLine(name, kind string) {
	fmt.Fprintf(m.w, "# TYPE %s%s %s\n", prefix, name, kind)
}

func (m metricWriter) sample(name, labels, value string) {
	if labels == "" {
		fmt.Fprintf(m.w, "%s%s %s\n", prefix, name, value)
		return
	}
	fmt.Fprintf(m.w, "%s%s{%s} %s\n", prefix, name, labels, value)
}

// gauge writes a single unlabelled sample. kind defaults to gauge.
func (m metricWriter) gauge(name, kind, value string) {
	if kind == "" {
		kind = "gauge"
	}
	m.typeLine(name, kind)
	m.sample(name, "", value)
}

// normalizedPath folds student ids and subject names into placeholders so
// unmatched paths keep the metric key space bounded.
func normalizedPath(path string) string {
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" || i == 0 {
			continue
		}
		switch parts[i-1] {
		case "students":
			parts[i] = "{id}"
		case "series":
			parts[i] = "{subject}"
		default:
			if _, err := strconv.ParseInt(p, 10, 64); err == nil {
				parts[i] = "{id}"
			}
		}
	}
	return strings.Join(parts, "/")
}

// extractStudentID returns the id from admin paths like
// /api/v1/admin/students/{id}/scores, or "" for anything else.
func extractStudentID(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "students" {
			return parts[i+1]
		}
	}
	return ""
}
