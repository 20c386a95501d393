// Package config loads the YAML configuration for a MeshCore companion
// host: which transport to use, its connection parameters, reliability
// and sync tuning, and where to write the protocol log and persistence
// store. All tuning fields default to the values spec.md §5 pins when
// left zero/empty in the YAML document.
package config
