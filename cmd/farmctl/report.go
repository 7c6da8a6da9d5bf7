package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/export"
	"github.com/mamadbah2/farmdiary/internal/service/reporting"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered farmers",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := opts.app.farm.Users(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), users)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tEMAIL\tLOCATION\tREGISTERED")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Name, u.Email, u.Location, u.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		email  string
		year   int
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print or export a farmer's yearly activity report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := opts.app
			sess, err := a.farmer(ctx, email)
			if err != nil {
				return err
			}
			if year == 0 {
				year = a.reports.Now().Year()
			}
			report, err := a.reports.Yearly(ctx, sess, year)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "json":
				return printJSON(w, report)
			case "html":
				return export.WriteYearlyHTML(w, report, sess.User.Location)
			case "xlsx":
				if output == "" {
					return errors.New("xlsx output needs --output")
				}
				analytics, err := a.reports.YearAnalytics(ctx, sess, year)
				if err != nil {
					return err
				}
				return export.WriteYearlyXLSX(w, report, &analytics)
			case "text":
				return printReportText(w, report)
			default:
				return fmt.Errorf("unknown format %q (want text, json, html or xlsx)", format)
			}
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Farmer email (required)")
	cmd.Flags().IntVar(&year, "year", 0, "Report year (defaults to the current year)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, html or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func printReportText(w io.Writer, report models.YearlyReport) error {
	if report.Empty() {
		_, err := fmt.Fprintf(w, "No activities recorded in %d.\n", report.Year)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Year:\t%d\n", report.Year)
	fmt.Fprintf(tw, "Activities:\t%d\n", report.TotalActivities)
	fmt.Fprintf(tw, "Hours:\t%.1f\n", report.TotalHours)
	fmt.Fprintf(tw, "Busiest month:\t%s (%d)\n", report.BusiestMonth, report.BusiestMonthCount)
	for _, tc := range report.ActivityTypes {
		fmt.Fprintf(tw, "  %s\t%d\n", reporting.FormatLabel(tc.Type), tc.Count)
	}
	return tw.Flush()
}

func newAnalyticsCmd(opts *rootOptions) *cobra.Command {
	var (
		email string
		year  int
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print a farmer's yearly profit, yield and weather analytics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := opts.app.farmer(ctx, email)
			if err != nil {
				return err
			}
			if year == 0 {
				year = opts.app.reports.Now().Year()
			}
			analytics, err := opts.app.reports.YearAnalytics(ctx, sess, year)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analytics)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Farmer email (required)")
	cmd.Flags().IntVar(&year, "year", 0, "Analytics year (defaults to the current year)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newDigestCmd(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the weekly digest a farmer would receive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := opts.app.farmer(ctx, email)
			if err != nil {
				return err
			}
			digest, err := opts.app.reports.Digest(ctx, sess)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), digest)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Farmer email (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
