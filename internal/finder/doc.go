// Package finder resolves the location of the runtime launcher.
//
// Resolution tries three sources in a fixed order: the cached path from the
// previous successful run, the bare command looked up on PATH, and a short
// per-OS table of well-known install locations. Every candidate is validated
// before it is trusted. When all three fail and the caller allows it, a
// Prompter asks the user on the console and caches the accepted answer.
//
// A stale cache record that no longer validates is left on disk; only an
// explicit Clear removes it.
package finder
