// Package domain defines the core domain model for AdminGate: the
// administrator record, its invalid sentinel, and the structured error
// taxonomy shared by every layer.
package domain
