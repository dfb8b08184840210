// Command tierra runs a standalone VM ecology simulation: seed the soup
// with a self-replicator, step it forward, and optionally serve live
// observation snapshots over a websocket.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tlinden-labs/tierrasoup/server"
	"github.com/tlinden-labs/tierrasoup/simulator"
)

type opts struct {
	memorySize    int
	mutationRate  float64
	maxPopulation int
	timeSlice     int
	steps         int
	serve         bool
	addr          string
	seed          int64
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "tierra",
		Short: "Run a Tierra-style self-replicating VM ecology",
		Long: `tierra seeds a byte-addressable soup with a minimal self-replicating
organism and steps the simulation forward, reporting population and
allocation statistics. With --serve it also exposes a websocket endpoint
that broadcasts periodic population snapshots to any connected observer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}

	root.Flags().IntVar(&o.memorySize, "memory-size", 65536, "soup size in cells")
	root.Flags().Float64Var(&o.mutationRate, "mutation-rate", 0.001, "per-cell copy mutation probability")
	root.Flags().IntVar(&o.maxPopulation, "max-population", 200, "maximum live organism count")
	root.Flags().IntVar(&o.timeSlice, "time-slice", 25, "instructions granted per organism per turn")
	root.Flags().IntVar(&o.steps, "steps", 0, "number of steps to run (0 = run until Ctrl-C)")
	root.Flags().BoolVar(&o.serve, "serve", false, "serve live observation snapshots over websocket")
	root.Flags().StringVar(&o.addr, "addr", ":8080", "address to serve observation on, when --serve is set")
	root.Flags().Int64Var(&o.seed, "seed", 0, "RNG seed (0 = time-seeded)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if o.mutationRate < 0 || o.mutationRate > 1 {
		return fmt.Errorf("mutation-rate must be in [0,1]")
	}
	if o.timeSlice <= 0 {
		return fmt.Errorf("time-slice must be > 0")
	}

	cfg := simulator.Config{
		MemorySize:    o.memorySize,
		MutationRate:  o.mutationRate,
		MaxPopulation: o.maxPopulation,
		TimeSlice:     o.timeSlice,
		Seed:          o.seed,
	}
	sim := simulator.New(cfg, simulator.WithLogger(logger))
	sim.InitializeWithAncestor()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hub *server.Hub
	const broadcastInterval = 250 * time.Millisecond
	if o.serve {
		hub = server.NewHub(logger)
		go hub.Run()

		mux := http.NewServeMux()
		server.ServeObservation(mux, hub, logger)

		httpSrv := &http.Server{Addr: o.addr, Handler: mux}
		go func() {
			logger.Info().Str("addr", o.addr).Msg("serving observation snapshots")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("observation server stopped")
			}
		}()

		go func() {
			<-ctx.Done()
			httpSrv.Shutdown(context.Background())
		}()
	}

	logger.Info().Int("memory_size", o.memorySize).Float64("mutation_rate", o.mutationRate).
		Int("max_population", o.maxPopulation).Msg("simulation started")

	// Stepping and snapshotting both happen here, on this one goroutine, so
	// a broadcast snapshot never reads sim's state concurrently with a step
	// mutating it.
	lastBroadcast := time.Time{}
	stepOnce := func() {
		sim.Step()
		if hub == nil || time.Since(lastBroadcast) < broadcastInterval {
			return
		}
		lastBroadcast = time.Now()
		if payload, err := server.MarshalView(sim.View()); err == nil {
			server.Publish(hub, payload)
		}
	}

	if o.steps > 0 {
		for i := 0; i < o.steps && ctx.Err() == nil; i++ {
			stepOnce()
		}
	} else {
		for ctx.Err() == nil {
			stepOnce()
		}
	}

	printSummary(sim)
	return nil
}

func printSummary(sim *simulator.Simulator) {
	fmt.Printf("population: %d\n", len(sim.Population))
	fmt.Printf("total births: %d\n", sim.Stats.TotalOrganismsCreated)
	fmt.Printf("total deaths: %d\n", sim.Stats.TotalOrganismsDied)
	fmt.Printf("replication success rate: %.2f%%\n", sim.Stats.ReplicationSuccessRate()*100)
	fmt.Printf("memory usage: %.2f%%\n", sim.Stats.MemoryUsagePercent())
	fmt.Printf("highest generation: %d\n", sim.Stats.HighestGeneration())
}
