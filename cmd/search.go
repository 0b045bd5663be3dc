package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"amrscan/internal/util"
	"amrscan/logger"
	"amrscan/pkg/db"
	"amrscan/pkg/detection"
	"amrscan/pkg/report"
)

const timeFormat = "2006-01-02 15:04:05"

// searchCmd runs the AMR screen over one or more assembly FASTA files.
var searchCmd = &cobra.Command{
	Use:   "search [assembly.fasta...]",
	Short: "Search assemblies for AMR genes and mutations",
	Long: `Search the given assembly FASTA files for AMR genes using the ResFinder-style
databases, and optionally for point mutations using the PointFinder-style
database of --pointfinder-organism.

With --output-dir all result files are written below one new directory.
Without any output flag the summary table is printed to stdout.`,
	Example: `  amrscan search --output-dir out *.fasta
  amrscan search --pointfinder-organism salmonella --output-dir out *.fasta`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()

	f.Float64("pid-threshold", 98.0, "The percent identity threshold")
	f.Float64("percent-length-overlap-resfinder", 60.0, "The percent length overlap for resfinder results")
	f.Float64("percent-length-overlap-pointfinder", 95.0, "The percent length overlap for pointfinder results")
	f.String("pointfinder-organism", "", "The organism to use for pointfinder")
	f.Bool("report-all-blast", false, "Report all blast hits (vs. only top blast hits)")
	f.Bool("exclude-negatives", false, "Exclude negative results (those sensitive to antimicrobials)")
	f.Bool("exclude-resistance-phenotypes", false, "Exclude predicted antimicrobial resistances")
	f.StringP("database", "d", "data", "The directory containing the resfinder/pointfinder databases")
	f.IntP("nprocs", "n", runtime.NumCPU(), "The number of blastn processes to run at once")
	f.StringP("output-dir", "o", "", "The output directory for results. If unset prints the summary to stdout")
	f.String("output-summary", "", "The name of the output file containing the summary results")
	f.String("output-resfinder", "", "The name of the output file containing the resfinder results")
	f.String("output-pointfinder", "", "The name of the output file containing the pointfinder results")
	f.String("output-settings", "", "The name of the output file containing the settings")
	f.String("output-excel", "", "The name of the output file containing the excel results")

	// every search flag can come from an AMRSCAN_* environment variable
	viper.SetEnvPrefix("AMRSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	bindSearchFlags()

	rootCmd.AddCommand(searchCmd)
}

func bindSearchFlags() {
	for _, name := range []string{
		"pid-threshold",
		"percent-length-overlap-resfinder",
		"percent-length-overlap-pointfinder",
		"pointfinder-organism",
		"report-all-blast",
		"exclude-negatives",
		"exclude-resistance-phenotypes",
		"database",
		"nprocs",
		"output-dir",
		"output-summary",
		"output-resfinder",
		"output-pointfinder",
		"output-settings",
		"output-excel",
	} {
		if err := viper.BindPFlag(name, searchCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	for _, file := range args {
		if !util.FileExists(file) {
			return fmt.Errorf("file [%s] does not exist", file)
		}
	}

	dataDir := viper.GetString("database")
	if !util.DirExists(dataDir) {
		return fmt.Errorf("database directory [%s] does not exist", dataDir)
	}

	// Output routing: everything under --output-dir, or individual
	// --output-* files, or the summary to stdout.
	var (
		toStdout bool
		hitsDir  string

		outSummary, outResfinder, outPointfinder string
		outSettings, outExcel                    string
	)

	if outputDir := viper.GetString("output-dir"); outputDir != "" {
		if util.DirExists(outputDir) || util.FileExists(outputDir) {
			return fmt.Errorf("output directory [%s] already exists", outputDir)
		}

		hitsDir = filepath.Join(outputDir, "hits")
		if err := os.MkdirAll(hitsDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		outResfinder = filepath.Join(outputDir, "resfinder.tsv")
		outPointfinder = filepath.Join(outputDir, "pointfinder.tsv")
		outSummary = filepath.Join(outputDir, "summary.tsv")
		outSettings = filepath.Join(outputDir, "settings.txt")
		outExcel = filepath.Join(outputDir, "results.xlsx")

		logger.Info("--output-dir set. All files will be output there", zap.String("dir", outputDir))
	} else if viper.GetString("output-summary") != "" || viper.GetString("output-resfinder") != "" ||
		viper.GetString("output-pointfinder") != "" || viper.GetString("output-excel") != "" {
		outSummary = viper.GetString("output-summary")
		outResfinder = viper.GetString("output-resfinder")
		outPointfinder = viper.GetString("output-pointfinder")
		outSettings = viper.GetString("output-settings")
		outExcel = viper.GetString("output-excel")
	} else {
		logger.Info("no output flags set. Will print summary to stdout")
		toStdout = true
	}

	var drugTable *db.ARGDrugTable
	if !viper.GetBool("exclude-resistance-phenotypes") {
		var err error
		drugTable, err = db.OpenARGDrugTable(filepath.Join(dataDir, "resistance", "arg_drug.db"))
		if err != nil {
			logger.Warn("no drug resistance table, phenotypes will not be predicted", zap.Error(err))
			drugTable = nil
		} else {
			defer drugTable.Close()
			logger.Info("phenotype prediction is enabled. The predictions are for microbiological " +
				"resistance and *not* clinical resistance")
		}
	}

	settings := detection.Settings{
		Database:            dataDir,
		PidThreshold:        viper.GetFloat64("pid-threshold"),
		PlengthResfinder:    viper.GetFloat64("percent-length-overlap-resfinder"),
		PlengthPointfinder:  viper.GetFloat64("percent-length-overlap-pointfinder"),
		PointfinderOrganism: viper.GetString("pointfinder-organism"),
		ReportAll:           viper.GetBool("report-all-blast"),
		IncludeNegatives:    !viper.GetBool("exclude-negatives"),
		HitsDir:             hitsDir,
		Nprocs:              viper.GetInt("nprocs"),
	}

	if settings.PointfinderOrganism != "" {
		organisms, err := detection.PointfinderOrganisms(dataDir)
		if err != nil {
			return err
		}
		if !contains(organisms, settings.PointfinderOrganism) {
			return fmt.Errorf("the only supported pointfinder organisms are %v", organisms)
		}
	}

	detector := detection.NewDetector(settings, drugTable)
	results, err := detector.Run(args)
	if err != nil {
		return err
	}

	minutes := fmt.Sprintf("%0.2f", results.Ended.Sub(results.Started).Minutes())
	logger.Info("finished", zap.String("minutes", minutes))

	if toStdout {
		return results.Summary.WriteTSV(os.Stdout)
	}

	if outResfinder != "" {
		if err := report.WriteTableTSV(results.Resfinder, outResfinder); err != nil {
			return err
		}
	}
	if outPointfinder != "" && results.Pointfinder != nil {
		if err := report.WriteTableTSV(results.Pointfinder, outPointfinder); err != nil {
			return err
		}
	}
	if outSummary != "" {
		if err := report.WriteTableTSV(results.Summary, outSummary); err != nil {
			return err
		}
	}

	settingsRows := settingsListing(results, settings, drugTable)

	if outSettings != "" {
		if err := report.WriteSettings(settingsRows, outSettings); err != nil {
			return err
		}
	}
	if outExcel != "" {
		if err := report.WriteExcel(outExcel, results.Summary, results.Resfinder,
			results.Pointfinder, settingsRows); err != nil {
			return err
		}
	}

	return nil
}

// settingsListing assembles the key/value rows of the settings report.
func settingsListing(results *detection.Results, settings detection.Settings,
	drugTable *db.ARGDrugTable) [][2]string {

	rows := [][2]string{
		{"command_line", strings.Join(os.Args, " ")},
		{"version", Version},
		{"run_id", results.RunID},
		{"start_time", results.Started.Format(timeFormat)},
		{"end_time", results.Ended.Format(timeFormat)},
		{"total_minutes", fmt.Sprintf("%0.2f", results.Ended.Sub(results.Started).Minutes())},
		{"pid_threshold", fmt.Sprintf("%0.2f", settings.PidThreshold)},
		{"plength_threshold_resfinder", fmt.Sprintf("%0.2f", settings.PlengthResfinder)},
		{"plength_threshold_pointfinder", fmt.Sprintf("%0.2f", settings.PlengthPointfinder)},
		{"report_all_blast", fmt.Sprintf("%t", settings.ReportAll)},
		{"database", settings.Database},
	}

	if drugTable != nil {
		info, err := drugTable.Info()
		if err != nil {
			logger.Warn("failed to read drug table info", zap.Error(err))
		} else {
			rows = append(rows, info...)
		}
	}

	return rows
}

func contains(list []string, v string) bool {
	for _, have := range list {
		if have == v {
			return true
		}
	}
	return false
}
