package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	app     *app
}

func newRootCmd(load appLoader) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "farmctl",
		Short: "Inspect and export farm diary data",
		Long: `farmctl reads the farm diary store configured by the environment
(or --env file) and prints reports, analytics and weather lookups.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd.Context(), opts.envFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			opts.app = a
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "Path to an env file")

	root.AddCommand(newUsersCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newAnalyticsCmd(opts))
	root.AddCommand(newDigestCmd(opts))
	root.AddCommand(newWeatherCmd(opts))

	closeAfterRun(root, opts)
	return root
}

// closeAfterRun wraps every RunE so the store is closed whether or not the
// command fails.
func closeAfterRun(cmd *cobra.Command, opts *rootOptions) {
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, opts)
	}
	if cmd.RunE == nil {
		return
	}

	run := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) (err error) {
		defer func() {
			if opts.app == nil {
				return
			}
			if cerr := opts.app.close(c.Context()); err == nil {
				err = cerr
			}
		}()
		return run(c, args)
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
