// Package config loads msgboard configuration from YAML with ${VAR}
// environment expansion and defaults for omitted fields.
package config
