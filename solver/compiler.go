package solver

// CompilerInfo describes the toolchain the plan is being built for: its
// own version, the language editions and extensions it implements. The
// solver never compiles anything itself; this package only ever consults
// CompilerInfo to validate DepLanguage/DepExtension dependencies, matching
// the "accept it as an opaque external fact" shape golang-dep's own
// checks.go gives ctx.GOPATH/ctx.Compiler-equivalent inputs.
type CompilerInfo struct {
	Version    Version
	Languages  map[LanguageName]bool
	Extensions map[ExtensionName]bool
}

// SupportsLanguage reports whether this compiler implements lang.
func (c CompilerInfo) SupportsLanguage(lang LanguageName) bool {
	return c.Languages[lang]
}

// SupportsExtension reports whether this compiler implements ext.
func (c CompilerInfo) SupportsExtension(ext ExtensionName) bool {
	return c.Extensions[ext]
}

// PkgConfigDb is the read-only view of system libraries available via
// pkg-config, queried for DepPkgConfig dependencies. Like CompilerInfo, it
// is supplied by the caller; this package never probes the system itself.
type PkgConfigDb interface {
	// Lookup reports the installed version of lib, if any is registered.
	Lookup(lib string) (Version, bool)
}

// StaticPkgConfigDb is a PkgConfigDb backed by a fixed map, suitable for
// tests and for callers that have already snapshotted `pkg-config --list-all`
// output themselves.
type StaticPkgConfigDb map[string]Version

func (db StaticPkgConfigDb) Lookup(lib string) (Version, bool) {
	v, ok := db[lib]
	return v, ok
}

// Platform names the target operating system and architecture a plan is
// being resolved for. It exists so that, if a future spec revision adds
// platform-conditional dependencies, the validation layer has somewhere to
// read it from; today nothing in this package branches on it.
type Platform struct {
	OS   string
	Arch string
}
