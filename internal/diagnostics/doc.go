// Package diagnostics reports process and host resource usage for the health
// endpoint and the `version --verbose` command.
//
// Collection is best-effort: a probe that fails on the current platform
// leaves its fields zero instead of failing the whole snapshot.
package diagnostics
