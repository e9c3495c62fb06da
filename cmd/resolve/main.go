// Command resolve loads a manifest, builds an Index from a snapshot file,
// and runs the solver Driver against it, printing the resulting
// InstallPlan or explaining why no plan exists.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pkgsolve/modsolve/cache"
	"github.com/pkgsolve/modsolve/config"
	"github.com/pkgsolve/modsolve/solver"
)

var log = logrus.New()

func main() {
	manifestPath := flag.String("manifest", "modsolve.toml", "path to the manifest TOML file")
	snapshotPath := flag.String("snapshot", "index.json", "path to a JSON snapshot of installed/source packages")
	cachePath := flag.String("cache", "", "path to a bbolt cache database (empty disables caching)")
	verbose := flag.Bool("v", false, "log each search step")
	flag.Parse()

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(*manifestPath, *snapshotPath, *cachePath); err != nil {
		log.WithError(err).Error("resolve failed")
		os.Exit(1)
	}
}

func run(manifestPath, snapshotPath, cachePath string) error {
	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		return errors.Wrap(err, "loading manifest")
	}

	snapshot, err := loadSnapshot(snapshotPath)
	if err != nil {
		return errors.Wrap(err, "loading snapshot")
	}

	targets, err := manifest.ResolveTargets()
	if err != nil {
		return errors.Wrap(err, "resolving targets")
	}
	cm, err := manifest.BuildConstraintModel()
	if err != nil {
		return errors.Wrap(err, "building constraint model")
	}
	opts := manifest.Options.ToSolverOptions()

	var store *cache.Store
	var key string
	if cachePath != "" {
		store, err = cache.Open(cachePath)
		if err != nil {
			return errors.Wrap(err, "opening cache")
		}
		defer store.Close()
		manifestRaw, err := os.ReadFile(manifestPath)
		if err != nil {
			return errors.Wrapf(err, "reading manifest %s", manifestPath)
		}
		manifestSum := sha256.Sum256(manifestRaw)
		key = cache.Key(targets, opts, snapshot.fingerprint+"+"+hex.EncodeToString(manifestSum[:]))
		if plan, ok, err := store.Get(key); err != nil {
			log.WithError(err).Warn("cache read failed, resolving fresh")
		} else if ok {
			log.Info("cache hit")
			return printPlan(plan)
		}
	}

	idx := solver.NewIndex(snapshot.Installed, snapshot.Source)
	driver := solver.NewDriver(idx, cm, snapshot.Compiler, snapshot.PkgConfigDb(), opts)
	driver.SetTraceSink(&traceLogger{log: log})

	outcome := driver.Solve(targets)
	switch outcome.Kind {
	case solver.OutcomeSuccess:
		if store != nil {
			if err := store.Put(key, outcome.Plan); err != nil {
				log.WithError(err).Warn("failed to populate cache")
			}
		}
		return printPlan(outcome.Plan)
	case solver.OutcomeBudgetExhausted:
		return errors.Errorf("backjump budget exhausted after %d attempts: %s", outcome.Attempts, outcome.Err)
	default:
		return errors.Errorf("no install plan: %s", outcome.Err)
	}
}

func printPlan(plan *solver.InstallPlan) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// traceLogger adapts solver.TraceSink to logrus, the wiring the core
// package's trace.go deliberately leaves to a caller.
type traceLogger struct {
	log *logrus.Logger
}

func (t *traceLogger) Emit(e solver.TraceEvent) {
	switch e.Kind {
	case solver.TraceTryPackage:
		t.log.WithField("package", e.Package).Debug("trying package")
	case solver.TraceTryFlag:
		t.log.WithField("flag", e.FlagVar).WithField("value", e.FlagValue).Debug("trying flag")
	case solver.TraceTryStanza:
		t.log.WithField("stanza", e.StanzaVar).WithField("value", e.StanzaValue).Debug("trying stanza")
	case solver.TraceFail:
		t.log.WithField("error", e.Err).Debug("branch failed")
	case solver.TraceBackjump:
		t.log.WithField("package", e.Package).Debug("backjumping")
	case solver.TraceDone:
		t.log.Debug("solution found")
	}
}
