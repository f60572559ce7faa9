package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/nsKV/lib/common"
	"github.com/ValentinKolb/nsKV/lib/db"
	"github.com/ValentinKolb/nsKV/lib/db/engines/bolt"
	"github.com/ValentinKolb/nsKV/lib/db/engines/memory"
	"github.com/ValentinKolb/nsKV/lib/db/engines/sqlite"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the database and store flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "db"
	cmd.PersistentFlags().String(key, string(db.ImplBolt), WrapString("The database backend to use (memory, bolt, sqlite)"))

	key = "path"
	cmd.PersistentFlags().String(key, "nskv.db", WrapString("The database file (ignored for the memory backend)"))

	key = "bucket"
	cmd.PersistentFlags().String(key, bolt.DefaultBucket, WrapString("The bucket holding the entries (only for the bolt backend)"))

	key = "namespace"
	cmd.PersistentFlags().String(key, "default", WrapString("The namespace of the store, must not contain ':'"))

	key = "version-tag"
	cmd.PersistentFlags().String(key, "v1", WrapString("The data version of the store, items written with another version are not visible. Must not contain ':'"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the store metrics in Prometheus text format after the command"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("nskv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		DB:           db.Implementation(strings.ToLower(viper.GetString("db"))),
		Path:         viper.GetString("path"),
		Bucket:       viper.GetString("bucket"),
		Namespace:    viper.GetString("namespace"),
		Version:      viper.GetString("version-tag"),
		LogLevel:     viper.GetString("log-level"),
		PrintMetrics: viper.GetBool("metrics"),
	}
}

// OpenDatabase opens the database backend described by the configuration
func OpenDatabase(conf *common.ClientConfig) (db.KVDB, error) {
	switch conf.DB {
	case db.ImplMemory:
		return memory.NewMemoryDB(), nil
	case db.ImplBolt:
		return bolt.Open(conf.Path, &bolt.DBOptions{Bucket: conf.Bucket})
	case db.ImplSQLite:
		return sqlite.Open(conf.Path)
	default:
		return nil, fmt.Errorf("invalid db %s", conf.DB)
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
