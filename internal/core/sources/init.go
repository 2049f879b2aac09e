// Package sources registers all source definitions with the core registry.
// Import this package to ensure all source kinds are registered.
package sources

// This file exists to provide a single import point.
// Each source file uses init() to register its definitions.
