package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rahul4469/verifact/internal/models"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Investigate a piece of content",
}

var analyzeTextCmd = &cobra.Command{
	Use:   "text [claim]",
	Short: "Investigate a text claim",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, models.KindText, strings.Join(args, " "), nil)
	},
}

var analyzeURLCmd = &cobra.Command{
	Use:   "url [url]",
	Short: "Investigate the content behind a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, models.KindURL, args[0], nil)
	},
}

var analyzeImageCmd = &cobra.Command{
	Use:   "image [path]",
	Short: "Run a forensic scan on an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		return runAnalyze(cmd, models.KindImage, "", models.NewImage(data, ""))
	},
}

func runAnalyze(cmd *cobra.Command, kind models.DetectionKind, input string, image *models.Image) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := engine.AnalyzeContent(ctx, kind, input, image)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, result)
	}
	printResult(out, result)
	return nil
}

func printResult(w io.Writer, r *models.AnalysisResult) {
	fmt.Fprintf(w, "Report %s (%s)\n", r.ID, r.Kind)
	fmt.Fprintf(w, "  Input:        %s\n", r.DisplayInput)
	fmt.Fprintf(w, "  Verdict:      %s\n", r.Verdict)
	fmt.Fprintf(w, "  Truth score:  %d/100\n", r.TruthScore)
	fmt.Fprintf(w, "  Credibility:  %d/100\n", r.Breakdown.SourceCredibility)
	fmt.Fprintf(w, "  Sentiment:    %s\n", r.Breakdown.SentimentAnalysis)
	fmt.Fprintf(w, "  Summary:      %s\n", r.Summary)

	fmt.Fprintln(w, "  Red flags:")
	for _, flag := range r.Breakdown.RedFlags {
		fmt.Fprintf(w, "    - %s\n", flag)
	}

	fmt.Fprintf(w, "  Sources (%d):\n", r.Breakdown.CrossReferenceCount)
	for _, s := range r.Sources {
		fmt.Fprintf(w, "    - %s <%s>\n", s.Title, s.URI)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
