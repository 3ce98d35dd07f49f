package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/triage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the triage HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *triageEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/triage", handleTriage(env))
	r.Post("/outcomes", handleRecordOutcome(env))
	r.Get("/outcomes/{hash}", handleListOutcomes(env))

	return r
}

func handleTriage(env *triageEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req triage.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Lead.Name == "" {
			writeError(w, http.StatusBadRequest, "lead.name is required")
			return
		}

		result, err := env.Engine.Run(r.Context(), req)
		if err != nil {
			zap.L().Error("triage request failed",
				zap.String("lead", req.Lead.Name),
				zap.Error(err),
			)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// outcomeRequest is the POST /outcomes body.
type outcomeRequest struct {
	SummaryHash string            `json:"summary_hash"`
	Type        model.OutcomeType `json:"outcome_type"`
	Data        map[string]any    `json:"outcome_data,omitempty"`
}

func handleRecordOutcome(env *triageEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req outcomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SummaryHash == "" {
			writeError(w, http.StatusBadRequest, "summary_hash is required")
			return
		}
		if !model.ValidOutcomeType(req.Type) {
			writeError(w, http.StatusBadRequest, "unknown outcome_type")
			return
		}

		stored, created, err := env.Store.RecordOutcome(r.Context(), model.Outcome{
			SummaryHash: req.SummaryHash,
			Type:        req.Type,
			Data:        req.Data,
		})
		if err != nil {
			zap.L().Error("record outcome failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "record outcome failed")
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, stored)
	}
}

func handleListOutcomes(env *triageEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := chi.URLParam(r, "hash")

		outcomes, err := env.Store.ListOutcomes(r.Context(), hash)
		if err != nil {
			zap.L().Error("list outcomes failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list outcomes failed")
			return
		}

		writeJSON(w, http.StatusOK, outcomes)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
