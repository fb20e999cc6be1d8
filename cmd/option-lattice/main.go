package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/contactkeval/option-lattice/internal/convergence"
	"github.com/contactkeval/option-lattice/internal/lattice"
	"github.com/contactkeval/option-lattice/internal/logger"
	"github.com/contactkeval/option-lattice/internal/report"
	"github.com/contactkeval/option-lattice/internal/scenario"
)

func main() {
	spot := flag.Float64("spot", 100, "spot price of the underlying")
	strike := flag.Float64("strike", 100, "strike price of the contract")
	maturity := flag.Float64("maturity", 1.0, "time to expiry in years")
	rate := flag.Float64("rate", 0.05, "continuously compounded annual risk-free rate")
	vol := flag.Float64("vol", 0.2, "annualized volatility")
	optType := flag.String("type", "call", "option type: call or put")
	steps := flag.Int("steps", 4, "number of lattice steps")
	maxSteps := flag.Int("max-steps", scenario.DefaultMaxSteps, "upper bound on lattice steps")
	batch := flag.String("batch", "", "path to a JSON scenario file to price in batch")
	converge := flag.Bool("converge", false, "run a convergence study from -steps doubling up to -max-steps")
	outDir := flag.String("out", "./out", "directory for batch/convergence reports")
	rest := flag.Bool("rest", false, "run as REST server (accept pricing requests)")
	port := flag.String("port", ":8080", "REST server listen address")
	verbosity := flag.Int("v", 1, "verbosity: 0=errors 1=info 2=debug 3=trace")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	kind, err := lattice.ParseOptionType(*optType)
	if err != nil {
		log.Fatalf("invalid -type: %v", err)
	}

	switch {
	case *rest:
		runServer(*port, *maxSteps)

	case *batch != "":
		runBatch(*batch, *outDir)

	case *converge:
		runConvergence(*spot, *strike, *maturity, *rate, *vol, kind, *steps, *maxSteps, *outDir)

	default:
		if *steps > *maxSteps {
			log.Fatalf("-steps %d exceeds -max-steps %d", *steps, *maxSteps)
		}
		price, err := lattice.Price(*spot, *strike, *maturity, *rate, *vol, kind, *steps)
		if err != nil {
			log.Fatalf("pricing failed: %v", err)
		}
		fmt.Printf("Option Value: %.3f\n", price)
	}
}

func runBatch(path, outDir string) {
	f, err := scenario.Load(path)
	if err != nil {
		log.Fatalf("loading scenarios: %v", err)
	}

	start := time.Now()
	results, err := scenario.RunBatch(context.Background(), f)
	if err != nil {
		log.Fatalf("batch failed: %v", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("could not create output dir %s: %v", outDir, err)
	}
	if err := report.WriteBatchJSON(results, outDir); err != nil {
		logger.Errorf("writing prices.json: %v", err)
	}
	if err := report.WriteBatchCSV(results, outDir); err != nil {
		logger.Errorf("writing prices.csv: %v", err)
	}

	for _, r := range results {
		fmt.Printf("%-16s %-4s strike=%-8.2f steps=%-5d value=%.3f\n",
			r.Name, r.OptionType, r.Strike, r.Steps, r.Price)
	}
	logger.Infof("priced %d scenarios in %v, reports in %s", len(results), time.Since(start), outDir)
}

func runConvergence(spot, strike, maturity, rate, vol float64, kind lattice.OptionType, minSteps, maxSteps int, outDir string) {
	sum, err := convergence.Study(spot, strike, maturity, rate, vol, kind, minSteps, maxSteps)
	if err != nil {
		log.Fatalf("convergence study failed: %v", err)
	}

	fmt.Printf("Black-Scholes limit: %.6f\n", sum.Limit)
	fmt.Printf("%8s %12s %12s\n", "steps", "price", "abs error")
	for _, r := range sum.Rows {
		fmt.Printf("%8d %12.6f %12.6f\n", r.Steps, r.Price, r.AbsError)
	}
	fmt.Printf("max abs error %.6f, mean abs error %.6f\n", sum.MaxAbsError, sum.MeanAbsError)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("could not create output dir %s: %v", outDir, err)
	}
	if err := report.WriteConvergenceJSON(sum, outDir); err != nil {
		logger.Errorf("writing convergence.json: %v", err)
	}
	if err := report.WriteConvergenceCSV(sum, outDir); err != nil {
		logger.Errorf("writing convergence.csv: %v", err)
	}
}

// priceRequest is the JSON body accepted by POST /price.
type priceRequest struct {
	Spot       float64 `json:"spot"`
	Strike     float64 `json:"strike"`
	Maturity   float64 `json:"maturity"`
	Rate       float64 `json:"rate"`
	Vol        float64 `json:"vol"`
	OptionType string  `json:"option_type"`
	Steps      int     `json:"steps"`
}

type priceResponse struct {
	Price float64 `json:"price"`
}

func runServer(addr string, maxSteps int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		var req priceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
		// Grids are O(steps^2); the bound keeps worst-case latency and
		// memory predictable for a shared server.
		if req.Steps > maxSteps {
			http.Error(w, fmt.Sprintf("steps %d exceed limit %d", req.Steps, maxSteps), http.StatusBadRequest)
			return
		}

		kind, err := lattice.ParseOptionType(req.OptionType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		price, err := lattice.Price(req.Spot, req.Strike, req.Maturity, req.Rate, req.Vol, kind, req.Steps)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, lattice.ErrInvalidParameters) || errors.Is(err, lattice.ErrUnsupportedOptionType) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}

		logger.Debugf("event=price_served spot=%.2f strike=%.2f steps=%d price=%.6f",
			req.Spot, req.Strike, req.Steps, price)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(priceResponse{Price: price})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logger.Infof("starting REST server on %s (max steps %d)", addr, maxSteps)
	log.Fatal(http.ListenAndServe(addr, mux))
}
