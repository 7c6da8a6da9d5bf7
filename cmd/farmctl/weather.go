package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newWeatherCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Look up current weather and inspect the search log",
	}
	cmd.AddCommand(newWeatherSearchCmd(opts))
	cmd.AddCommand(newWeatherLogsCmd(opts))
	return cmd
}

func newWeatherSearchCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <city>",
		Short: "Fetch the current weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.app.weather.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), data)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s, %s: %d°, %s, humidity %d%%, wind %.1f km/h\n",
				data.City, data.Country, data.Temperature, data.Description, data.Humidity, data.WindSpeed)
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newWeatherLogsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent weather searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := opts.app.weather.Logs(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(logs) > limit {
				logs = logs[:limit]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tCITY\tRESULT")
			for _, l := range logs {
				result := "ok"
				if !l.Success {
					result = l.Error
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Timestamp.Format("2006-01-02 15:04:05"), l.City, result)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries")
	return cmd
}
