package config

import _ "embed"

// defaultTOML holds the built-in defaults.
//
//go:embed default.toml
var defaultTOML []byte
