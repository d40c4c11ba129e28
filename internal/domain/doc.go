// Package domain contains the core model for dfkit.
//
// The domain does not know how DataFed is reached: it never spawns processes,
// parses YAML or touches the filesystem. Adapters map client replies and
// configuration files into these types.
package domain
