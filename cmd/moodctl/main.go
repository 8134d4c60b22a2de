package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type globalOpts struct {
	api   string
	token string
}

func (g *globalOpts) client() *apiClient { return newAPIClient(g.api, g.token) }

func newRootCmd() *cobra.Command {
	g := &globalOpts{}
	root := &cobra.Command{
		Use:           "moodctl",
		Short:         "CLI client for the MoodMate feedback service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.api, "api", "a", envOr("MOODMATE_API", "http://localhost:8080"), "Feedback service base URL")
	root.PersistentFlags().StringVarP(&g.token, "token", "t", os.Getenv("MOODMATE_TOKEN"), "Bearer token (or MOODMATE_TOKEN)")

	root.AddCommand(
		newTokenCmd(g),
		newUsageCmd(g),
		newHistoryCmd(g),
		newFeedbackCmd(g),
		newAnalyzeCmd(g),
		newDiaryCmd(g),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printBody(out io.Writer, data []byte) {
	_, _ = fmt.Fprintln(out, string(data))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
