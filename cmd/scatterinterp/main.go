package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"scatterinterp/pkg/config"
	"scatterinterp/pkg/csvio"
)

func main() {
	configPath := flag.String("config", "scatterinterp.yaml", "Job configuration file")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file and exit")
	flag.Parse()

	if *initConfig {
		if err := config.Save(config.Default(), *configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	samples, err := csvio.ReadSamples(cfg.Input, len(cfg.Grid))
	if err != nil {
		log.Fatalf("Failed to read samples: %v", err)
	}

	dom, err := cfg.Domain()
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}
	solverCfg, err := cfg.SolverConfig()
	if err != nil {
		log.Fatalf("Failed to resolve solver options: %v", err)
	}
	solver, err := cfg.Solver(func(variable string, done, total int) {
		if done == 0 {
			fmt.Printf("Estimating %q at %d locations...\n", variable, total)
		} else {
			fmt.Printf("Finished %q\n", variable)
		}
	})
	if err != nil {
		log.Fatalf("Failed to create solver: %v", err)
	}

	fmt.Printf("Running %s over %d variables (%d samples, %d grid locations)\n",
		cfg.Estimator, len(samples.Variables()), samples.Len(), dom.Len())

	start := time.Now()
	fields, err := solver.Solve(samples, dom, solverCfg)
	if err != nil {
		log.Fatalf("Estimation failed: %v", err)
	}
	elapsed := time.Since(start)

	if err := csvio.WriteResults(cfg.Output, dom, fields); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}

	fmt.Printf("\nEstimation completed in %.2f seconds\n", elapsed.Seconds())
	fmt.Printf("Results written to: %s\n", cfg.Output)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, values := samples.Samples(name)
		fmt.Printf("- %s: %d samples -> %d estimates\n", name, len(values), len(fields[name].Estimates))
	}
}
