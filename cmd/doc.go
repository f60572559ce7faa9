// Package cmd implements the command-line interface for nsKV. It provides a
// hierarchical command structure for working with the items of one namespace
// in a local database file.
//
// The package is organized into several subpackages:
//
//   - item: Commands for item operations (get, set, rm, has, keys, clear, info)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See nskv -help for a list of all commands.
package cmd
