package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// The embed_config.yaml file ships the stock defaults; packaging may
// overwrite it with site-specific values before compiling.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
