package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/shipment-cli/internal/model"
	"github.com/sells-group/shipment-cli/internal/store"
)

var (
	servePort    int
	serveOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(serveOffline || cfg.Extract.Offline)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env, st, cfg.Extract.Concurrency),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("extractor", env.Processor.ExtractorName()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "use the offline pattern extractor instead of Claude")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP API: extraction plus run history backed by the store.
func newRouter(env *pipelineEnv, st store.Store, concurrency int) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(chimiddleware.Timeout(5 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/extract", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Emails []model.Email `json:"emails"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(body.Emails) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "emails is required"})
			return
		}

		records, err := env.Processor.ProcessBatch(req.Context(), body.Emails, concurrency)
		if err != nil {
			zap.L().Error("extract request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "extraction failed"})
			return
		}

		resp := struct {
			RunID   string                 `json:"run_id,omitempty"`
			Records []model.ShipmentRecord `json:"records"`
		}{Records: records}

		if req.URL.Query().Get("save") == "true" {
			run, err := persistRun(req.Context(), st, env.Processor.ExtractorName(), records)
			if err != nil {
				zap.L().Error("persist run failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save run"})
				return
			}
			resp.RunID = run.ID
		}

		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/v1/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), store.RunFilter{
			Status: model.RunStatus(req.URL.Query().Get("status")),
		})
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/v1/runs/{runID}", func(w http.ResponseWriter, req *http.Request) {
		runID := chi.URLParam(req, "runID")

		run, err := st.GetRun(req.Context(), runID)
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			zap.L().Error("get run failed", zap.String("run_id", runID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get run"})
			return
		}

		records, err := st.ListRecords(req.Context(), runID)
		if err != nil {
			zap.L().Error("list records failed", zap.String("run_id", runID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list records"})
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Run     *model.Run             `json:"run"`
			Records []model.ShipmentRecord `json:"records"`
		}{run, records})
	})

	return r
}

// persistRun stores a completed extraction run with its records.
func persistRun(ctx context.Context, st store.Store, extractorName string, records []model.ShipmentRecord) (*model.Run, error) {
	run, err := st.CreateRun(ctx, extractorName, len(records))
	if err != nil {
		return nil, eris.Wrap(err, "create run")
	}
	if err := st.SaveRecords(ctx, run.ID, records); err != nil {
		return nil, eris.Wrap(err, "save records")
	}

	flagged := 0
	for _, rec := range records {
		if rec.NeedsReview() {
			flagged++
		}
	}
	if err := st.CompleteRun(ctx, run.ID, flagged); err != nil {
		return nil, eris.Wrap(err, "complete run")
	}
	run.Status = model.RunStatusComplete
	run.Flagged = flagged
	return run, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
