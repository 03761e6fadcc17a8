package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChristopherRabotin/stagesizer"
	"github.com/ChristopherRabotin/stagesizer/internal/server"
	kitlog "github.com/go-kit/kit/log"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

var (
	addr       string
	numCPUs    int
	reqPerSec  float64
	burst      int
	ultraDebug bool
)

func init() {
	flag.StringVar(&addr, "addr", "", "listen address (defaults to $STAGESIZER_ADDR or :8080)")
	flag.IntVar(&numCPUs, "cpus", -1, "number of CPUs per sweep (set to 0 for max CPUs)")
	flag.Float64Var(&reqPerSec, "rate", 5, "requests per second per client")
	flag.IntVar(&burst, "burst", 10, "request burst per client")
	flag.BoolVar(&ultraDebug, "debug", false, "log every iteration")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log("level", "warning", "subsys", "conf", "err", err)
	}
	if addr == "" {
		addr = os.Getenv("STAGESIZER_ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine := stagesizer.NewEngine(stagesizer.WithLogger(logger), stagesizer.WithDebug(ultraDebug))
	api := server.New(engine, logger, numCPUs)
	limiter := server.NewClientRateLimiter(rate.Limit(reqPerSec), burst)
	go limiter.PruneEvery(ctx, time.Minute, 10*time.Minute)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Router(limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log("level", "notice", "subsys", "http", "status", "listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log("level", "critical", "subsys", "http", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Log("level", "notice", "subsys", "http", "status", "shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log("level", "critical", "subsys", "http", "err", err)
		os.Exit(1)
	}
}
