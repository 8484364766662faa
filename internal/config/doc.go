// Package config loads and validates the TOML configuration shared by the
// postmark CLI and the postmarkd daemon.
package config
