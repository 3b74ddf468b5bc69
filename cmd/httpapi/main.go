// Command httpapi serves the thin chi-routed admin surface SPEC_FULL.md
// §6 adds over TriggerConsensus/GetConsensus/GetStatus, for local
// development and integration tests against the out-of-scope HTTP CRUD
// layer. It performs no authentication or input validation of its own.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"swarmconsensus/core"
	"swarmconsensus/internal/eventbus"
	"swarmconsensus/internal/queue"
	"swarmconsensus/internal/store"
	"swarmconsensus/pkg/config"
)

type server struct {
	dispatcher *queue.Dispatcher
	reader     core.ConsensusReader
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("httpapi: no .env file found: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.Fatalf("httpapi: load config: %v", err)
	}

	ctx := context.Background()
	pgStore, err := store.Open(ctx, cfg.Store.DSN, int32(cfg.Store.MaxConns))
	if err != nil {
		logrus.Fatalf("httpapi: open store: %v", err)
	}
	defer pgStore.Close()

	bus := eventbus.NewChannelBus()
	engine := core.NewEngine(pgStore, nil, bus, core.SystemClock{})

	q := queue.New()
	pool := queue.NewPool(q, engine, cfg.Engine.Workers)
	pool.Start(ctx)

	s := &server{dispatcher: queue.NewDispatcher(q, engine), reader: pgStore}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Post("/consensus/{questionId}", s.trigger)
	r.Get("/consensus/{questionId}", s.getConsensus)
	r.Get("/consensus/{questionId}/status", s.getStatus)

	logrus.Infof("httpapi: listening on %s", cfg.HTTPAPI.ListenAddr)
	if err := http.ListenAndServe(cfg.HTTPAPI.ListenAddr, r); err != nil {
		logrus.Fatal(err)
	}
	os.Exit(0)
}

func (s *server) trigger(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionId")
	var body struct {
		Priority       int           `json:"priority"`
		ForceAlgorithm core.Algorithm `json:"forceAlgorithm"`
		RequestedBy    string        `json:"requestedBy"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	result, _ := s.dispatcher.TriggerConsensus(r.Context(), questionID, body.Priority, body.ForceAlgorithm, body.RequestedBy)
	writeJSON(w, http.StatusAccepted, result)
}

func (s *server) getConsensus(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionId")
	summary, err := s.reader.GetConsensus(r.Context(), questionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *server) getStatus(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionId")
	progress, err := s.reader.GetStatus(r.Context(), questionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if state, job := s.dispatcher.Status(questionID); state != "idle" {
		progress.Calculation = state.Calculation()
		if job != nil {
			switch state {
			case queue.StateWaiting:
				progress.Progress = 0
			case queue.StateActive:
				progress.Progress = 0.5
			case queue.StateCompleted, queue.StateFailed:
				progress.Progress = 1
			}
		}
	}

	writeJSON(w, http.StatusOK, progress)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
