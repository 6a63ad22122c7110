package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/OldStager01/energy-forecaster/internal/logger"
)

const maxDays = 366

type ServerConfig struct {
	Port int
	// Now anchors generated series; defaults to time.Now truncated to the hour.
	Now func() time.Time
}

type Server struct {
	config     ServerConfig
	httpServer *http.Server
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Port == 0 {
		cfg.Port = 9100
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC().Truncate(time.Hour) }
	}
	return &Server{config: cfg}
}

func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", cors(s.healthHandler))
	mux.HandleFunc("/patterns", cors(s.patternsHandler))
	mux.HandleFunc("/datasets/{file}", cors(s.datasetHandler))
	return mux
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Infof("Load generator listening on %s", addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Load generator server error: %v", err)
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "load-generator",
	})
}

func (s *Server) patternsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"patterns": PatternNames(),
	})
}

// datasetHandler serves /datasets/{pattern}.csv?days=&base=&step=&seed=
func (s *Server) datasetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file := r.PathValue("file")
	name, ok := strings.CutSuffix(file, ".csv")
	if !ok {
		http.Error(w, "only .csv datasets are served", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	days, err := intParam(q.Get("days"), 30)
	if err != nil || days <= 0 || days > maxDays {
		http.Error(w, "days must be between 1 and 366", http.StatusBadRequest)
		return
	}
	base, err := floatParam(q.Get("base"), 1000)
	if err != nil || base <= 0 {
		http.Error(w, "base must be a positive number", http.StatusBadRequest)
		return
	}
	step := time.Hour
	if v := q.Get("step"); v != "" {
		step, err = time.ParseDuration(v)
		if err != nil || step < time.Minute {
			http.Error(w, "step must be a duration of at least 1m", http.StatusBadRequest)
			return
		}
	}
	seed, err := intParam(q.Get("seed"), 1)
	if err != nil {
		http.Error(w, "seed must be an integer", http.StatusBadRequest)
		return
	}

	end := s.config.Now()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	pattern, err := ParsePattern(name, start, int64(seed))
	if err != nil {
		if errors.Is(err, ErrUnknownPattern) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points, err := Generate(Config{Pattern: pattern, Start: start, Days: days, Step: step, Base: base})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.WithFields(map[string]interface{}{
		"pattern": name,
		"days":    days,
		"points":  len(points),
	}).Debug("Serving generated dataset")

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file}))
	if err := WriteCSV(w, points); err != nil {
		logger.Errorf("Failed to write dataset: %v", err)
	}
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}
