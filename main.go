package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	configFile string
	listLimit  int

	updTitle    string
	updDate     string
	updURL      string
	updArtifact string
)

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Incremental document harvester",
	Long: `Harvests documents from configured websites, renders each into a
PDF artifact and records it, so repeated runs skip already-processed items.`,
}

var runCmd = &cobra.Command{
	Use:   "run [source]",
	Short: "Run one full ingestion pass for a source (or all sources)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := LoadConfig(configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		sources := config.Sources
		if len(args) > 0 {
			src, err := config.Source(args[0])
			if err != nil {
				log.Fatal(err)
			}
			sources = []SourceConfig{*src}
		}

		hardStop := false
		for i := range sources {
			if err := runSource(&sources[i]); err != nil {
				log.Printf("✗ source %s stopped: %v", sources[i].Name, err)
				hardStop = true
			}
		}
		if hardStop {
			os.Exit(1)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list <source>",
	Short: "Show the newest records of a source, newest date first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openSourceStore(args[0])
		defer store.Close()

		recs, err := store.Latest(listLimit)
		if err != nil {
			log.Fatalf("Failed to list records: %v", err)
		}
		for _, r := range recs {
			fmt.Printf("%d\t%s\t%s\t%s\t%s\n", r.Seq, r.Date, r.Title, r.URL, r.ArtifactPath)
		}
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <source> <seq>",
	Short: "Update fields of a record (administrative)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store := openSourceStore(args[0])
		defer store.Close()

		upd := RecordUpdate{}
		if cmd.Flags().Changed("title") {
			upd.Title = &updTitle
		}
		if cmd.Flags().Changed("date") {
			upd.Date = &updDate
		}
		if cmd.Flags().Changed("url") {
			upd.URL = &updURL
		}
		if cmd.Flags().Changed("artifact") {
			upd.ArtifactPath = &updArtifact
		}

		if err := store.Update(parseSeq(args[1]), upd); err != nil {
			log.Fatalf("Failed to update record: %v", err)
		}
		log.Printf("Record %s updated.", args[1])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <source> <seq>",
	Short: "Delete a record (administrative)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store := openSourceStore(args[0])
		defer store.Close()

		if err := store.Delete(parseSeq(args[1])); err != nil {
			log.Fatalf("Failed to delete record: %v", err)
		}
		log.Printf("Record %s deleted.", args[1])
	},
}

// runSource runs one ingestion pass. Per-item failures only show up in
// the summary; the returned error means the source hit a hard stop.
func runSource(cfg *SourceConfig) error {
	driver, err := NewDriver(cfg)
	if err != nil {
		return err
	}
	defer driver.Close()

	summary, err := driver.Run()
	log.Printf("Source %s: %d items (%d recorded, %d skipped, %d failed)",
		summary.Source, summary.Total(), summary.Recorded, summary.Skipped, summary.Failed)
	return err
}

func openSourceStore(sourceName string) *Store {
	config, err := LoadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	src, err := config.Source(sourceName)
	if err != nil {
		log.Fatal(err)
	}
	store, err := OpenStore(src.StorePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	return store
}

func parseSeq(arg string) uint {
	seq, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		log.Fatalf("Invalid sequence number %q", arg)
	}
	return uint(seq)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "sources.yaml", "Path to the sources configuration file")

	listCmd.Flags().IntVar(&listLimit, "limit", 10, "Maximum number of records to show")

	updateCmd.Flags().StringVar(&updTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updDate, "date", "", "New date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updURL, "url", "", "New source URL")
	updateCmd.Flags().StringVar(&updArtifact, "artifact", "", "New artifact path")

	rootCmd.AddCommand(runCmd, listCmd, updateCmd, deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
