// Package config defines the admingate-server configuration
// structure, its defaults, and validation.
package config
