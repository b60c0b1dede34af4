// Package logging sets up scope's structured logs.
//
// Without --debug, warnings and errors go to stderr through a text handler,
// one line per per-file diagnostic. With --debug, JSON records at debug level
// are also written to a size-rotated file under ~/.scope/logs/.
package logging
