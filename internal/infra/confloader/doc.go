// Package confloader loads configuration from defaults, an optional
// YAML file, and ADMINGATE_-prefixed environment variables, in that
// order of increasing priority. A fsnotify-based watcher supports
// runtime reload of selected settings.
package confloader
