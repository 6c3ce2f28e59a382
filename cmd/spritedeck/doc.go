// Package main hosts the spritedeck CLI entrypoint and command graph.
//
// Commands resolve configuration, the catalog document, and the source root
// once per invocation through commandContext, then call straight into the
// internal packages. Mutating commands load, change, and save the document in
// one step unless --dry-run is given.
package main
