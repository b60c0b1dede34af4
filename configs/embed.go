// Package configs provides the embedded configuration template for scope.
//
// The template is written by 'scope config init', to the user config path
// by default or to .scope.yaml with --project. Every setting in it is
// commented out, so a fresh copy loads as the defaults.
package configs

import _ "embed"

// ConfigTemplate is the annotated configuration file.
//
//go:embed config.example.yaml
var ConfigTemplate string
