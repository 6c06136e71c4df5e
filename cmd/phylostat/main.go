// Command phylostat reads Newick and NEXUS tree files and reports on their
// contents. Files ending in ".gz" are decompressed on the fly.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("phylostat")

func main() {
	var (
		configFile string
		verbosity  int
		opts       = defaultOptions()
	)

	rootCmd := &cobra.Command{
		Use:           "phylostat",
		Short:         "Inspect phylogenetic tree files (Newick, NEXUS)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(verbosity, nil)
			if configFile == "" {
				return nil
			}
			loaded, err := loadOptions(configFile)
			if err != nil {
				return err
			}
			opts.merge(loaded, cmd.Flags())
			log.Debugf("Using options %+v from %s.", *opts, configFile)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "",
		"options file (.toml, .yaml or .yml)")
	flags.CountVarP(&verbosity, "verbose", "v",
		"log more (repeat for more detail)")
	flags.IntVar(&opts.Workers, "workers", opts.Workers,
		"number of goroutines parsing NEXUS trees")
	flags.BoolVar(&opts.Lenient, "lenient", opts.Lenient,
		"skip trees that fail to parse instead of stopping")

	rootCmd.AddCommand(newSummaryCmd(opts))
	rootCmd.AddCommand(newTaxaCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultOptions() *options {
	return &options{Workers: runtime.NumCPU()}
}
