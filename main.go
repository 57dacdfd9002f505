package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duskfield/fieldcore/internal/kvstore"
	"github.com/duskfield/fieldcore/internal/rfpath"
	"github.com/duskfield/fieldcore/internal/sstv"
	"github.com/duskfield/fieldcore/internal/telemetry"
)

// DebugMode mirrors the source's global debug flag.
var DebugMode bool

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	DebugMode = *debug
	if v := os.Getenv("DEBUG"); v != "" {
		DebugMode = v == "true" || v == "1" || v == "yes"
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)

	store, err := kvstore.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open data store: %v", err)
	}

	codec, err := sstv.NewCodec(cfg.Decoder, store, logger)
	if err != nil {
		log.Fatalf("failed to initialize sstv codec: %v", err)
	}

	elevation := rfpath.NewHTTPElevationProvider(cfg.ElevationEndpoint, nil)
	analyzer := rfpath.NewAnalyzer(elevation, cfg.RFPath)

	registry := telemetry.NewRegistry()
	codec.SetMetrics(sstv.NewMetrics(registry))
	analyzer.SetMetrics(rfpath.NewMetrics(registry))

	cfg.Pushgateway.Callsign = cfg.Station.Callsign
	cfg.Pushgateway.GridSquare = cfg.Station.GridSquare
	pushCtx, cancelPush := context.WithCancel(context.Background())
	registry.StartPushgatewayWorker(pushCtx, cfg.Pushgateway)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz)
	if cfg.Prometheus.Enabled {
		mux.Handle("/metrics", promhttp.HandlerFor(registry.Registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/api/sstv/history", handleSSTVHistory(codec))
	mux.HandleFunc("/api/sstv/decode", handleSSTVDecode(cfg))
	mux.HandleFunc("/api/rfpath/analyze", handlePathAnalyze(analyzer))
	mux.HandleFunc("/api/rfpath/relay", handleRelayAnalyze(analyzer))
	mux.HandleFunc("/api/rfpath/viewshed", handleViewshed(analyzer))

	server := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: mux,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("shutting down")
		cancelPush()
		codec.StopReceive()
		if err := server.Close(); err != nil {
			log.Printf("error closing server: %v", err)
		}
	}()

	log.Printf("fieldcore listening on %s", cfg.Server.Listen)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func handleSSTVHistory(codec *sstv.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(codec.History())
	}
}

type decodeRequest struct {
	SampleRate float64   `json:"sample_rate"`
	Samples    []float64 `json:"samples"`
}

func handleSSTVDecode(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req decodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		decCfg := cfg.Decoder
		if req.SampleRate > 0 {
			decCfg.SampleRate = req.SampleRate
		}
		decoder := sstv.NewDecoder(decCfg, log.New(os.Stdout, "", log.LstdFlags), nil)
		events := decoder.Feed(req.Samples)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"state":       decoder.State(),
			"event_count": len(events),
		})
	}
}

type analyzeRequest struct {
	From rfpath.Endpoint `json:"from"`
	To   rfpath.Endpoint `json:"to"`
}

func handlePathAnalyze(analyzer *rfpath.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err := analyzer.AnalyzePath(r.Context(), req.From, req.To)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

type relayRequest struct {
	Waypoints []rfpath.Endpoint `json:"waypoints"`
}

func handleRelayAnalyze(analyzer *rfpath.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req relayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		chain, err := rfpath.AnalyzeRelay(r.Context(), analyzer, req.Waypoints)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chain)
	}
}

func handleViewshed(analyzer *rfpath.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req rfpath.ViewshedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err := analyzer.ComputeViewshed(r.Context(), req, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
