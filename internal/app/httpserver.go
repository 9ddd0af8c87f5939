package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/metrics"
)

// Pinger — то, что проверяет /healthz; *sql.DB подходит. nil — проверка без БД (STORE=memory).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	srv *http.Server
}

func newMux(db Pinger, level http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
			defer cancel()
			t0 := time.Now()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
			metrics.ObserveDBPing(time.Since(t0))
		}
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	if level != nil {
		mux.Handle("/loglevel", level)
	}
	return mux
}

// StartHTTP поднимает /healthz, /metrics и /loglevel (если level задан).
func StartHTTP(ctx context.Context, addr string, db Pinger, level http.Handler, log *zap.Logger) *HTTPServer {
	srv := &http.Server{Addr: addr, Handler: newMux(db, level), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
