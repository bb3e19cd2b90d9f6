// Command componentwalk is a diagnostic CLI for the componentstore engine.
// Unlike arena-cache-inspect (which talks to a running service over HTTP),
// componentstore has no network surface: componentwalk instead builds a
// synthetic graph of string components in-process, drives a few rounds of
// create/clone/release/sync against it, and prints the resulting stats as
// JSON to stdout.
//
// Flags:
//
//	-n       number of components to create (default 1000)
//	-cycles  number of clone/release/sync rounds to run (default 10)
//	-watch   re-run the whole walk every second until interrupted
//
// © 2025 componentstore authors. MIT License.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	cs "github.com/Voskan/componentstore/pkg/componentstore"
)

type options struct {
	n      int
	cycles int
	watch  bool
}

func parseFlags() *options {
	opts := &options{}
	flag.IntVar(&opts.n, "n", 1000, "number of components to create")
	flag.IntVar(&opts.cycles, "cycles", 10, "number of clone/release/sync rounds")
	flag.BoolVar(&opts.watch, "watch", false, "repeat the walk every second until interrupted")
	flag.Parse()
	return opts
}

type snapshot struct {
	Slots          int            `json:"slots"`
	LiveHandles    int            `json:"live_handles"`
	EpochHistogram map[string]int `json:"epoch_histogram"`
	ElapsedMS      float64        `json:"elapsed_ms"`
}

func main() {
	opts := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.watch {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			if err := walkOnce(opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := walkOnce(opts); err != nil {
		fatal(err)
	}
}

func walkOnce(opts *options) error {
	start := time.Now()

	s := cs.NewWithCapacity[string](opts.n)
	rng := rand.New(rand.NewSource(1))

	handles := make([]*cs.Handle[string], 0, opts.n)
	for i := 0; i < opts.n; i++ {
		handles = append(handles, s.Create(fmt.Sprintf("component-%d", i)))
	}

	for round := 0; round < opts.cycles; round++ {
		if len(handles) == 0 {
			break
		}
		switch rng.Intn(2) {
		case 0:
			i := rng.Intn(len(handles))
			handles = append(handles, handles[i].Clone())
		default:
			i := rng.Intn(len(handles))
			handles[i].Release()
			handles = append(handles[:i], handles[i+1:]...)
		}
		s.SyncPending()
	}

	snap := snapshot{
		Slots:          s.Len(),
		LiveHandles:    s.Iter().Count(),
		EpochHistogram: epochHistogram(s),
		ElapsedMS:      float64(time.Since(start).Microseconds()) / 1000,
	}

	for _, h := range handles {
		h.Release()
	}
	s.SyncPending()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// epochHistogram buckets live items by the epoch of the handle pinned to
// them, so callers can see how much recycling churn a storage has seen.
func epochHistogram(s *cs.Storage[string]) map[string]int {
	hist := make(map[string]int)
	it := s.Iter()
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		h := s.Pin(item)
		hist[fmt.Sprintf("%d", h.Key().Epoch())]++
		h.Release()
	}
	s.SyncPending()
	return hist
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "componentwalk:", err)
	os.Exit(1)
}
