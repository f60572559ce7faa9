package common

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/nsKV/lib/db"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds everything needed to open a database and a namespaced store on it.
type ClientConfig struct {
	// Database backend and its location (ignored for the memory backend)
	DB   db.Implementation
	Path string

	// Bucket used by the bolt backend
	Bucket string

	// Namespace and version of the store
	Namespace string
	Version   string

	// Logging configuration
	LogLevel string

	// Print metrics after each command
	PrintMetrics bool
}

// Validate checks the configuration for obvious mistakes.
// Namespace and version are validated by the store itself.
func (c *ClientConfig) Validate() error {
	if _, ok := db.ParseImplementation(string(c.DB)); !ok {
		return fmt.Errorf("invalid db %q (expected one of: memory, bolt, sqlite)", c.DB)
	}
	if c.DB != db.ImplMemory && strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("a path is required for the %s db", c.DB)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Storage
	addSection("Storage")
	addField("Database", string(c.DB))
	if c.DB != db.ImplMemory {
		addField("Path", c.Path)
	}
	if c.DB == db.ImplBolt {
		addField("Bucket", c.Bucket)
	}

	// Store
	addSection("Store")
	addField("Namespace", c.Namespace)
	addField("Version", c.Version)

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Print Metrics", fmt.Sprintf("%t", c.PrintMetrics))

	return sb.String()
}
