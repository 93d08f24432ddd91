package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

var indexCSV string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the FAQ vector index",
	Long:  `Build, empty or inspect the vector index of the FAQ collection.`,

	Annotations: map[string]string{annotationScope: "index"},
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the index from a CSV corpus",
	Long: `Embed every record of a CSV with Question and Answer columns and
replace the collection with the result. Queries running meanwhile keep
seeing the previous index until the new one is complete.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Replace the collection with an empty one",
	Args:  cobra.NoArgs,
	RunE:  runIndexRebuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live collection",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	indexBuildCmd.Flags().StringVar(&indexCSV, "csv", "", "CSV corpus path (default from corpus.path)")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	index, err := requireIndex()
	if err != nil {
		return err
	}
	if services.Loader == nil {
		return errors.New("corpus loader not configured")
	}

	path := indexCSV
	if path == "" {
		path = currentSettings().Corpus.Path
	}

	start := time.Now()
	docs, err := services.Loader.Load(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	cmd.Printf("Loaded %d records from %s\n", len(docs), path)

	if services.Pipeline != nil {
		if docs, err = services.Pipeline.Process(cmd.Context(), docs); err != nil {
			return fmt.Errorf("processing corpus: %w", err)
		}
	}

	coll, err := index.Build(cmd.Context(), docs, index.ModelID())
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	cmd.Printf("Indexed %d passages into %q with %s (%d dimensions) in %s\n",
		coll.Count, coll.Name, coll.ModelID, coll.Dimensions, time.Since(start).Round(time.Millisecond))
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	index, err := requireIndex()
	if err != nil {
		return err
	}
	if err := index.Rebuild(cmd.Context()); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	cmd.Println("Collection replaced with an empty one.")
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	index, err := requireIndex()
	if err != nil {
		return err
	}

	if !indexBuilt(cmd.Context()) {
		cmd.Println(domain.IndexNotBuiltMessage)
		return nil
	}

	coll, err := index.Status(cmd.Context())
	if errors.Is(err, domain.ErrCollectionNotFound) {
		cmd.Println(domain.IndexNotBuiltMessage)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index status: %w", err)
	}

	cmd.Printf("Collection: %s\n", coll.Name)
	cmd.Printf("Model:      %s\n", coll.ModelID)
	cmd.Printf("Dimensions: %d\n", coll.Dimensions)
	cmd.Printf("Passages:   %d\n", coll.Count)
	if !coll.CreatedAt.IsZero() {
		cmd.Printf("Built:      %s\n", coll.CreatedAt.Local().Format(time.DateTime))
	}
	if coll.ModelID != index.ModelID() {
		cmd.Printf("\nWarning: the active embedding model is %s; run 'faqrag index build' to re-embed.\n",
			index.ModelID())
	}
	return nil
}
