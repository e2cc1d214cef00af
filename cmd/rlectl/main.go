// rlectl runs a self-contained RLE transmitter/receiver pair over a
// synthetic traffic generator, serving the resulting counters on a
// Prometheus /metrics endpoint until interrupted.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mellowdrifter/rle/internal/config"
	"github.com/mellowdrifter/rle/internal/logging"
	"github.com/mellowdrifter/rle/internal/metrics"
	"github.com/mellowdrifter/rle/rle"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, "rle")

	rleCfg, err := cfg.RLEConfig()
	if err != nil {
		logger.Fatalf("invalid RLE config: %v", err)
	}

	tx := rle.NewTransmitter(rleCfg, rle.WithTransmitterLogger(logger.With("role", "transmitter")))
	rx := rle.NewReceiver(rleCfg, rle.WithReceiverLogger(logger.With("role", "receiver")))

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(tx, rx))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ":9090", Handler: mux}

	go func() {
		logger.Infof("serving metrics on %s/metrics", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server failed: %v", err)
		}
	}()

	stopGen := make(chan struct{})
	go runTrafficGenerator(tx, rx, cfg.BurstBudget, logger, stopGen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Infof("signal received: %s, shutting down gracefully...", sig)

	close(stopGen)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown error: %v", err)
		return
	}
	logger.Info("rlectl shut down cleanly")
}

// runTrafficGenerator round-trips synthetic SDUs across all eight
// frag_id slots until stop is closed, exercising the full
// encapsulate/fragment/decap path the way a real link driver would.
func runTrafficGenerator(tx *rle.Transmitter, rx *rle.Receiver, budget int, logger rle.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	fragID := uint8(0)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sdu := rle.SDU{
				Bytes:        make([]byte, 200+rand.Intn(1200)),
				ProtocolType: rle.ProtoTypeIPv4,
			}
			if err := tx.Encapsulate(sdu, fragID); err != nil {
				logger.Warnf("encapsulate on frag_id %d: %v", fragID, err)
				fragID = (fragID + 1) % rle.NumContexts
				continue
			}
			for {
				ppdu, remaining, err := tx.Fragment(fragID, budget)
				if err != nil {
					logger.Warnf("fragment on frag_id %d: %v", fragID, err)
					break
				}
				if _, err := rx.Decap(ppdu); err != nil {
					logger.Warnf("decap on frag_id %d: %v", fragID, err)
				}
				if remaining == 0 {
					break
				}
			}
			fragID = (fragID + 1) % rle.NumContexts
		}
	}
}
