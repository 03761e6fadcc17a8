// Package server exposes the stage sizing engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ChristopherRabotin/stagesizer"
	kitlog "github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

const (
	// MaxSweepPoints bounds the work a single sweep request may ask for.
	MaxSweepPoints = 1000
	// MaxBodySize bounds the size of a request body, in bytes.
	MaxBodySize = 1 << 20
)

// Server handles the calculator API.
type Server struct {
	engine *stagesizer.Engine
	logger kitlog.Logger
	cpus   int
}

// New returns a new Server. Sweeps run on at most cpus goroutines (all CPUs if cpus <= 0).
func New(engine *stagesizer.Engine, logger kitlog.Logger, cpus int) *Server {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Server{engine: engine, logger: kitlog.With(logger, "subsys", "http"), cpus: cpus}
}

// Router returns the API routes. The limiter may be nil.
func (s *Server) Router(limiter *ClientRateLimiter) *mux.Router {
	// Routes hang off the root router so that a wrong method yields 405 and not 404.
	router := mux.NewRouter()
	router.Use(s.logRequests)
	if limiter != nil {
		router.Use(limiter.Middleware)
	}
	router.HandleFunc("/api/stage/calc", s.Calc).Methods("POST")
	router.HandleFunc("/api/stage/report.pdf", s.ReportPDF).Methods("POST")
	router.HandleFunc("/api/stage/sweep", s.Sweep).Methods("POST")
	router.HandleFunc("/api/stage/sweep.xlsx", s.SweepXLSX).Methods("POST")
	router.HandleFunc("/api/catalog/{kind}", s.Catalog).Methods("GET")
	return router
}

type errorPayload struct {
	Error      string  `json:"error"`
	Kind       string  `json:"kind"`
	Field      string  `json:"field,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	LastGuess  float64 `json:"last_guess,omitempty"`
}

// SweepRequest is the body of the sweep endpoints.
type SweepRequest struct {
	Inputs    stagesizer.Inputs         `json:"inputs"`
	Parameter stagesizer.SweepParameter `json:"parameter"`
	From      float64                   `json:"from"`
	To        float64                   `json:"to"`
	Points    int                       `json:"points"`
}

// Calc sizes the stage described by the JSON inputs.
func (s *Server) Calc(w http.ResponseWriter, r *http.Request) {
	var in stagesizer.Inputs
	if !decode(w, r, &in) {
		return
	}
	rslt, err := s.engine.Calculate(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rslt)
}

// ReportPDF sizes the stage and returns the PDF report.
func (s *Server) ReportPDF(w http.ResponseWriter, r *http.Request) {
	var in stagesizer.Inputs
	if !decode(w, r, &in) {
		return
	}
	rslt, err := s.engine.Calculate(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"stage-report.pdf\"")
	if err := stagesizer.WritePDF(w, r.URL.Query().Get("title"), in, rslt); err != nil {
		s.logger.Log("level", "critical", "op", "pdf", "err", err)
	}
}

// Sweep returns the JSON sweep.
func (s *Server) Sweep(w http.ResponseWriter, r *http.Request) {
	sweep, ok := s.sweep(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sweep)
}

// SweepXLSX returns the sweep as a workbook.
func (s *Server) SweepXLSX(w http.ResponseWriter, r *http.Request) {
	sweep, ok := s.sweep(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"sweep-%s.xlsx\"", sweep.Parameter))
	if err := stagesizer.WriteSweepXLSX(w, sweep); err != nil {
		s.logger.Log("level", "critical", "op", "xlsx", "err", err)
	}
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) (stagesizer.Sweep, bool) {
	var req SweepRequest
	if !decode(w, r, &req) {
		return stagesizer.Sweep{}, false
	}
	if req.Points > MaxSweepPoints {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: fmt.Sprintf("at most %d points per sweep", MaxSweepPoints), Kind: "request", Field: "points"})
		return stagesizer.Sweep{}, false
	}
	sweep, err := s.engine.Sweep(req.Inputs, req.Parameter, req.From, req.To, req.Points, s.cpus)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error(), Kind: "request"})
		return stagesizer.Sweep{}, false
	}
	return sweep, true
}

// Catalog lists the thrusters, propellants or materials known to the sizer.
func (s *Server) Catalog(w http.ResponseWriter, r *http.Request) {
	switch kind := mux.Vars(r)["kind"]; kind {
	case "thrusters":
		writeJSON(w, http.StatusOK, stagesizer.Thrusters())
	case "propellants":
		writeJSON(w, http.StatusOK, stagesizer.Propellants())
	case "materials":
		writeJSON(w, http.StatusOK, stagesizer.Materials())
	default:
		writeJSON(w, http.StatusNotFound, errorPayload{Error: fmt.Sprintf("unknown catalog `%s`", kind), Kind: "request"})
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		verr *stagesizer.ValidationError
		cerr *stagesizer.ConvergenceError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload{Error: err.Error(), Kind: "validation", Field: verr.Field})
	case errors.As(err, &cerr):
		last := cerr.LastGuess
		if cerr.Diverged {
			last = cerr.PreviousGuess
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload{Error: err.Error(), Kind: "convergence", Iterations: cerr.Iterations, LastGuess: last})
	default:
		s.logger.Log("level", "critical", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: err.Error(), Kind: "domain"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorPayload{Error: err.Error(), Kind: "request"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request payload: " + err.Error(), Kind: "request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Log("level", "info", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}
