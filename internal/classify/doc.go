// Package classify decides whether a file is source code worth indexing.
//
// Two checks are available. The fast one looks at the file extension and
// never leaves the process. The slow one asks an external probe tool for the
// file's MIME type and matches the answer against a list of type suffixes.
//
// The probe tools form a closed set known at build time:
//
//	file      file(1) content sniffing: file -b --mime-type <path>
//	xdg-mime  shared-mime-info lookup:  xdg-mime query filetype <path>
//
// A Registry holds them in preference order and selects the current one once
// at startup, either by name or by the first one whose availability probe
// succeeds. Registry values are read-only after construction and safe to share
// between workers.
package classify
