package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	healthTimeout    = 5 * time.Second
	readinessTimeout = 2 * time.Second
)

// HealthChecker is one dependency the service needs to answer requests
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// PingDatabase checks the submissions database connection
func PingDatabase(db *sql.DB) HealthChecker {
	return CheckFunc(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
		defer cancel()
		return db.PingContext(ctx)
	})
}

// HealthStatus is the /health body
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// runChecks runs every checker concurrently and collects the failures
func runChecks(ctx context.Context, checkers map[string]HealthChecker) map[string]error {
	var (
		mu     sync.Mutex
		failed = map[string]error{}
		g      errgroup.Group
	)
	for name, c := range checkers {
		g.Go(func() error {
			if err := c.Check(ctx); err != nil {
				mu.Lock()
				failed[name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

// HealthHandler reports every dependency with its error message
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		failed := runChecks(ctx, checkers)
		health := HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]CheckStatus, len(checkers)),
		}
		for name := range checkers {
			if err, bad := failed[name]; bad {
				health.Status = "unhealthy"
				health.Checks[name] = CheckStatus{Status: "unhealthy", Message: err.Error()}
				continue
			}
			health.Checks[name] = CheckStatus{Status: "healthy"}
		}

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		_ = WriteJSON(w, statusCode, health)
	}
}

type readiness struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Failing   []string  `json:"failing,omitempty"`
}

// ReadinessHandler answers 503 while the database or evidence bucket is
// unreachable. Only the failing names are exposed, not the errors.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		out := readiness{Status: "ready", Timestamp: time.Now().UTC()}
		for name := range runChecks(ctx, checkers) {
			out.Failing = append(out.Failing, name)
		}
		if len(out.Failing) > 0 {
			sort.Strings(out.Failing)
			out.Status = "not_ready"
			_ = WriteJSON(w, http.StatusServiceUnavailable, out)
			return
		}
		_ = WriteJSON(w, http.StatusOK, out)
	}
}

// LivenessHandler only proves the process is serving
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
