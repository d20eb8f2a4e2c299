package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chatdoc-be/internal/dto"

	"github.com/spf13/cobra"
)

var (
	queryTopN   int
	queryBatch  string
	queryJSON   bool
	historyJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [document-id] [question]",
	Short: "Ask a question about a document",
	Long: `Ranks the document's chunks against the question, asks the completion
provider for a grounded answer and records the exchange in the conversation.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

var historyCmd = &cobra.Command{
	Use:   "history [document-id]",
	Short: "Show the conversation with a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var clearCmd = &cobra.Command{
	Use:   "clear [document-id]",
	Short: "Clear the conversation with a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopN, "top-n", "n", 0, "number of chunks to rank (0 uses the server default)")
	queryCmd.Flags().StringVar(&queryBatch, "batch", "", "restrict ranking to one batch id")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the response as JSON")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output turns as JSON")
	rootCmd.AddCommand(queryCmd, historyCmd, clearCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	owner, doc, err := scope(args)
	if err != nil {
		return err
	}

	res, err := chatService.Query(cmd.Context(), owner, &dto.QueryRequest{
		DocumentId: doc.String(),
		Query:      strings.Join(args[1:], " "),
		TopN:       queryTopN,
		BatchId:    queryBatch,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	heading.Fprintln(out, "Answer:")
	fmt.Fprintln(out, res.Answer)
	fmt.Fprintln(out)
	heading.Fprintln(out, "Chunks:")
	for i, c := range res.RankedChunks {
		fmt.Fprintf(out, "  [%d] %.3f ", i+1, c.Score)
		muted.Fprintf(out, "%s#%d\n", c.BatchId, c.Index)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	owner, doc, err := scope(args)
	if err != nil {
		return err
	}

	res, err := chatService.History(cmd.Context(), owner, doc)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(cmd, res.Turns)
	}
	if len(res.Turns) == 0 {
		cmd.Println("No conversation yet.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, t := range res.Turns {
		heading.Fprintf(out, "%s: ", t.Role)
		fmt.Fprintln(out, t.Content)
	}
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	owner, doc, err := scope(args)
	if err != nil {
		return err
	}

	if err := chatService.ClearHistory(cmd.Context(), owner, doc); err != nil {
		return err
	}
	success.Fprintln(cmd.OutOrStdout(), "Conversation cleared.")
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
