package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ChristopherRabotin/stagesizer"
	kitlog "github.com/go-kit/kit/log"
	"github.com/joho/godotenv"
)

const defaultScenario = "~~unset~~"

var (
	scenarioPath string
	numCPUs      int
	ultraDebug   bool
)

func init() {
	flag.StringVar(&scenarioPath, "scenario", defaultScenario, "stage scenario TOML file (defaults to $STAGESIZER_SCENARIO)")
	flag.IntVar(&numCPUs, "cpus", -1, "number of CPUs to use for sweeps (set to 0 for max CPUs)")
	flag.BoolVar(&ultraDebug, "debug", false, "log every iteration")
}

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warning] .env: %s", err)
	}
	if scenarioPath == defaultScenario {
		scenarioPath = os.Getenv("STAGESIZER_SCENARIO")
	}
	if scenarioPath == "" {
		log.Fatal("no scenario provided (use -scenario or STAGESIZER_SCENARIO)")
	}

	scenario, err := stagesizer.LoadScenario(scenarioPath)
	if err != nil {
		log.Fatalf("[conf] %s", err)
	}
	if scenario.Verbose {
		log.Printf("[conf] scenario: %s", scenario.Name)
		log.Printf("[conf] output: %s", scenario.Export.OutputDir)
		log.Printf("[conf] tolerance: %g kg, at most %d iterations", scenario.Tolerance, scenario.MaxIterations)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "scenario", scenario.Name)
	engine := scenario.Engine(logger, ultraDebug)

	rslt, err := engine.Calculate(scenario.Inputs)
	if err != nil {
		var verr *stagesizer.ValidationError
		var cerr *stagesizer.ConvergenceError
		switch {
		case errors.As(err, &verr):
			log.Fatalf("[error] invalid `%s`: %s", verr.Field, verr.Reason)
		case errors.As(err, &cerr):
			log.Fatalf("[error] infeasible design point: %s", cerr)
		default:
			log.Fatalf("[error] %s", err)
		}
	}
	fmt.Print(stagesizer.Report(scenario.Inputs, rslt))

	if !scenario.Export.IsUseless() {
		paths, err := stagesizer.Export(scenario.Export, scenario.Inputs, rslt)
		if err != nil {
			log.Fatalf("[error] export: %s", err)
		}
		for _, path := range paths {
			log.Printf("[info] saved %s", path)
		}
	} else {
		log.Printf("[info] no export requested")
	}

	if scenario.Sweep == nil {
		return
	}
	sc := scenario.Sweep
	sweep, err := engine.Sweep(scenario.Inputs, sc.Parameter, sc.From, sc.To, sc.Points, numCPUs)
	if err != nil {
		log.Fatalf("[error] sweep: %s", err)
	}
	log.Printf("[info] sweep of %s: %d points, %d failed", sc.Parameter, len(sweep.Points), sweep.Failures())
	if scenario.Export.AsXLSX {
		path, err := stagesizer.ExportSweep(scenario.Export, sweep)
		if err != nil {
			log.Fatalf("[error] sweep export: %s", err)
		}
		log.Printf("[info] saved %s", path)
		return
	}
	for _, pt := range sweep.Points {
		if pt.Err != nil {
			fmt.Printf("%s=%g\t%s\n", sc.Parameter, pt.Value, pt.Err)
			continue
		}
		fmt.Printf("%s=%g\tstage wet mass = %.4f kg\t(%d iterations)\n", sc.Parameter, pt.Value, pt.Result.StageWetMass, pt.Result.Iterations)
	}
}
