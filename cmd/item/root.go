package item

import (
	"os"

	"github.com/ValentinKolb/nsKV/cmd/util"
	"github.com/ValentinKolb/nsKV/lib/common"
	"github.com/ValentinKolb/nsKV/lib/db"
	"github.com/ValentinKolb/nsKV/lib/store"
	"github.com/ValentinKolb/nsKV/lib/store/nsstore"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var (
	log = logger.GetLogger("cli")

	config    *common.ClientConfig
	database  db.KVDB
	itemStore store.IStore

	// ItemCommands represents the item command group
	ItemCommands = &cobra.Command{
		Use:                "item",
		Short:              "Perform namespaced item operations",
		Long:               `Read and write JSON items of one namespace and version. The configuration can be set via command line flags or environment variables. The format of the environment variables is NSKV_<flag> (e.g. NSKV_NAMESPACE=settings)`,
		PersistentPreRunE:  setupStore,
		PersistentPostRunE: teardownStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)
	// Close the database also when a command fails
	cobra.OnFinalize(closeDatabase)

	// Add store flags to the item command
	util.SetupStoreFlags(ItemCommands)

	// Add subcommands
	ItemCommands.AddCommand(getCmd)
	ItemCommands.AddCommand(setCmd)
	ItemCommands.AddCommand(rmCmd)
	ItemCommands.AddCommand(hasCmd)
	ItemCommands.AddCommand(keysCmd)
	ItemCommands.AddCommand(clearCmd)
	ItemCommands.AddCommand(infoCmd)
}

// setupStore opens the database and creates the namespaced store
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config = util.GetClientConfig()
	if err := config.Validate(); err != nil {
		return err
	}
	if err := common.InitLoggers(*config); err != nil {
		return err
	}
	log.Debugf("configuration:%s", config.String())

	var err error
	database, err = util.OpenDatabase(config)
	if err != nil {
		return err
	}

	itemStore, err = nsstore.NewNamespacedStore(database, config.Namespace, config.Version)
	if err != nil {
		_ = database.Close()
		database = nil
		return err
	}
	return nil
}

// teardownStore prints the metrics if requested
func teardownStore(_ *cobra.Command, _ []string) error {
	if config != nil && config.PrintMetrics {
		metrics.WritePrometheus(os.Stdout, false)
	}
	return nil
}

func closeDatabase() {
	if database == nil {
		return
	}
	if err := database.Close(); err != nil {
		log.Errorf("failed to close database: %v", err)
	}
	database = nil
	itemStore = nil
}
