package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askTopK    int
	askContext string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves the documents nearest to the question and asks the configured
LLM to extract the answer from them.

If the documents do not answer the question, a not-found message is printed
instead of a guess.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of documents to retrieve (default from settings)")
	askCmd.Flags().StringVar(&askContext, "context", "", "prior conversation to take into account")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON shape of an ask result.
type askOutput struct {
	Question      string   `json:"question"`
	Found         bool     `json:"found"`
	Answer        string   `json:"answer,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	PrimarySource string   `json:"primary_source,omitempty"`
	Message       string   `json:"message,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if askTopK < 0 {
		return errors.New("--top-k must not be negative")
	}

	question := strings.Join(args, " ")
	result, err := retrievalService.Ask(cmd.Context(), domain.Query{
		Question: question,
		History:  askContext,
		K:        askTopK,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, question, result)
	}

	if !result.Found() {
		cmd.Println(result.NotFound.Message())
		return nil
	}

	cmd.Println(result.Answer)
	cmd.Println()
	cmd.Println("Sources:")
	for _, src := range result.Sources {
		marker := " "
		if src == result.PrimarySource {
			marker = "*"
		}
		cmd.Printf("  %s %s\n", marker, src)
	}
	return nil
}

func outputAskJSON(cmd *cobra.Command, question string, result *domain.QueryResult) error {
	out := askOutput{
		Question:      question,
		Found:         result.Found(),
		Answer:        result.Answer,
		Sources:       result.Sources,
		PrimarySource: result.PrimarySource,
	}
	if !out.Found {
		out.Message = result.NotFound.Message()
		out.Reason = string(result.NotFound.Reason)
	}

	return printJSON(cmd, out)
}
