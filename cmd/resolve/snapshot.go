package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/pkgsolve/modsolve/solver"
)

// snapshotFile is the on-disk JSON shape a caller supplies to describe
// everything the Index needs: installed packages, source package
// versions, the target compiler, and any pkg-config facts.
type snapshotFile struct {
	Installed []solver.InstalledPackage `json:"installed"`
	Source    []solver.SourcePackage    `json:"source"`
	Compiler  solver.CompilerInfo       `json:"compiler"`
	PkgConfig map[string]solver.Version `json:"pkg_config"`

	fingerprint string
}

func loadSnapshot(path string) (*snapshotFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading snapshot %s", path)
	}
	var s snapshotFile
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrapf(err, "parsing snapshot %s", path)
	}
	sum := sha256.Sum256(raw)
	s.fingerprint = hex.EncodeToString(sum[:])
	return &s, nil
}

// PkgConfigDb adapts the snapshot's flat map into solver.PkgConfigDb.
func (s *snapshotFile) PkgConfigDb() solver.PkgConfigDb {
	return solver.StaticPkgConfigDb(s.PkgConfig)
}
