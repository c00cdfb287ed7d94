// Package cli wires the repoport command hierarchy, configuration loading,
// and logger construction into an executable application.
package cli
