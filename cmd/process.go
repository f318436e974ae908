package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"grimm.is/instanced/internal/config"
	"grimm.is/instanced/internal/generate"
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/store"
)

// ErrNoPendingUpdate is surfaced so main can map it to the dedicated
// "nothing to do" exit status that schedulers treat as a non-error no-op.
var ErrNoPendingUpdate = generate.ErrNoPendingUpdate

// RunProcess regenerates the artifacts from the registry.
func RunProcess(args []string) error {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	force := fs.Bool("force", false, "process even if an update is not detected")
	fs.BoolVar(force, "f", false, "process even if an update is not detected (shorthand)")
	diff := fs.Bool("diff", false, "print unified diffs against the previous artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.WithComponent("process")
	cfg, err := config.Load(logger)
	if err != nil {
		return err
	}
	paths := cfg.Paths()
	st := store.New(paths.Registry, paths.Lock, cfg.LockTimeout)
	marker := store.NewMarker(paths.Marker)

	gen := generate.New(st, marker, cfg, logger)
	res, err := gen.Process(generate.Options{Force: *force, Diff: *diff})
	if err != nil {
		if errors.Is(err, generate.ErrNoPendingUpdate) {
			logger.Debug("No pending update")
		}
		return err
	}

	if *diff {
		printDiffs(res.Diffs)
	}
	return nil
}

func printDiffs(diffs map[string]string) {
	paths := make([]string, 0, len(diffs))
	for path := range diffs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		fmt.Fprint(os.Stderr, diffs[path])
	}
}
