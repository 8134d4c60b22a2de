package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "token USER_ID",
		Short: "Issue a development token (development environment only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().post("/api/auth/dev-token", map[string]string{"userId": args[0]})
			if err != nil {
				return err
			}
			var out struct {
				AccessToken string `json:"accessToken"`
			}
			if err := json.Unmarshal(data, &out); err != nil {
				return fmt.Errorf("decode token response: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.AccessToken)
			return nil
		},
	}
}

func newUsageCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show today's feedback usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().get("/api/feedback/usage", nil)
			if err != nil {
				return err
			}
			printBody(cmd.OutOrStdout(), data)
			return nil
		},
	}
}

func newHistoryCmd(g *globalOpts) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List feedback created in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().get("/api/feedback/history", map[string]string{"startDate": from, "endDate": to})
			if err != nil {
				return err
			}
			printBody(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "End date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newAnalyzeCmd(g *globalOpts) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Generate a period analysis report",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().post("/api/feedback/period-analysis", map[string]string{"startDate": from, "endDate": to})
			if err != nil {
				return err
			}
			printBody(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "End date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newFeedbackCmd(g *globalOpts) *cobra.Command {
	fb := &cobra.Command{Use: "feedback", Short: "Diary feedback operations"}

	var style string
	create := &cobra.Command{
		Use:   "create DIARY_ID",
		Short: "Generate feedback for a diary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().post("/api/diaries/"+args[0]+"/feedback", map[string]string{"feedbackStyle": style})
			if err != nil {
				return err
			}
			printBody(cmd.OutOrStdout(), data)
			return nil
		},
	}
	create.Flags().StringVarP(&style, "style", "s", "encouraging", "encouraging, honest or empathetic")

	get := &cobra.Command{
		Use:   "get DIARY_ID",
		Short: "Show a diary's feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().get("/api/diaries/"+args[0]+"/feedback", nil)
			if err != nil {
				return err
			}
			printBody(cmd.OutOrStdout(), data)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete DIARY_ID",
		Short: "Delete a diary's feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.client().delete("/api/diaries/" + args[0] + "/feedback"); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}

	fb.AddCommand(create, get, del)
	return fb
}

func newDiaryCmd(g *globalOpts) *cobra.Command {
	diary := &cobra.Command{Use: "diary", Short: "Diary operations"}

	var content, date string
	create := &cobra.Command{
		Use:   "create",
		Short: "Write a diary entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().post("/api/diaries", map[string]string{"content": content, "date": date})
			if err != nil {
				return err
			}
			printBody(cmd.OutOrStdout(), data)
			return nil
		},
	}
	create.Flags().StringVarP(&content, "content", "c", "", "Diary text (required)")
	create.Flags().StringVarP(&date, "date", "d", "", "Diary date YYYY-MM-DD (required)")
	_ = create.MarkFlagRequired("content")
	_ = create.MarkFlagRequired("date")

	get := &cobra.Command{
		Use:   "get DIARY_ID",
		Short: "Show a diary entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := g.client().get("/api/diaries/"+args[0], nil)
			if err != nil {
				return err
			}
			printBody(cmd.OutOrStdout(), data)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete DIARY_ID",
		Short: "Delete a diary entry and its feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.client().delete("/api/diaries/" + args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}

	diary.AddCommand(create, get, del)
	return diary
}
