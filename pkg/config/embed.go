package config

import "embed"

// builtinSetsFS embeds the built-in pattern sets.
//
//go:embed sets/*.yml
var builtinSetsFS embed.FS
