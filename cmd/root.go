package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/nsKV/cmd/item"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "nskv",
		Short: "namespaced, versioned JSON item store",
		Long: fmt.Sprintf(`nsKV (v%s)

A namespaced, versioned key-value item store written in Go.
Items are stored as JSON under "<key>::<version>::<namespace>" in a
shared database (memory, bolt or sqlite).`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nsKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nsKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(item.ItemCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
