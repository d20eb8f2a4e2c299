package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

var indexCmd = &cobra.Command{
	Use:   "index [document-id]",
	Short: "Index a document",
	Long: `Extracts the document text, splits it into overlapping chunks, embeds
every chunk and stores them as a new batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

var batchesCmd = &cobra.Command{
	Use:   "batches [document-id]",
	Short: "List indexing batches of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatches,
}

func init() {
	rootCmd.AddCommand(docsCmd, indexCmd, batchesCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	owner, err := ownerId()
	if err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context(), owner)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	out := cmd.OutOrStdout()
	heading.Fprintln(out, "Documents:")
	for _, d := range docs {
		fmt.Fprintf(out, "  %s  %s ", d.Id, d.OriginalName)
		muted.Fprintf(out, "(%d bytes, %s)\n", d.Size, d.UploadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}
	owner, doc, err := scope(args)
	if err != nil {
		return err
	}

	res, err := indexerService.Index(cmd.Context(), owner, doc)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	success.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks in batch %s\n", res.Chunks, res.BatchId)
	return nil
}

func runBatches(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}
	owner, doc, err := scope(args)
	if err != nil {
		return err
	}

	batches, err := indexerService.ListBatches(cmd.Context(), owner, doc)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		cmd.Println("No batches found.")
		return nil
	}

	out := cmd.OutOrStdout()
	heading.Fprintln(out, "Batches:")
	for _, b := range batches {
		fmt.Fprintf(out, "  %s  %d chunks ", b.BatchId, b.ChunkCount)
		muted.Fprintf(out, "(%s)\n", b.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
