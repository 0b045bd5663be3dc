package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"amrscan/pkg/detection"
)

// databasesCmd lists the reference databases found in the data directory.
var databasesCmd = &cobra.Command{
	Use:     "databases",
	Short:   "List the reference databases in the data directory",
	Aliases: []string{"db", "dbs"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := viper.GetString("database")

		resfinder, err := detection.ResfinderDatabases(dataDir)
		if err != nil {
			return err
		}

		classes := make([]string, 0, len(resfinder))
		for class := range resfinder {
			classes = append(classes, class)
		}
		sort.Strings(classes)

		fmt.Println("resfinder:")
		for _, class := range classes {
			fmt.Printf("  %s\t%s\n", class, resfinder[class])
		}

		organisms, err := detection.PointfinderOrganisms(dataDir)
		if err != nil {
			// a missing pointfinder directory is fine, the gene screen
			// works without it
			return nil
		}
		sort.Strings(organisms)

		fmt.Println("pointfinder organisms:")
		for _, organism := range organisms {
			fmt.Printf("  %s\n", organism)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(databasesCmd)
}
