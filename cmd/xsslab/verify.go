package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/output"
	"github.com/lcalzada-xor/xsslab/pkg/runner"
)

var errInconsistent = errors.New("catalog ratings contradict observed behaviour")

func newVerifyCmd(a *app) *cobra.Command {
	var (
		format   string
		contexts []string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Render every output with every preset and check the safety ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !output.ValidFormat(format) {
				return fmt.Errorf("unknown format %q", format)
			}
			opts := runner.FromSettings(a.settings, a.log)
			opts.Loader = a.loader()
			for _, c := range contexts {
				parsed, err := models.ParseContext(c)
				if err != nil {
					return err
				}
				opts.Contexts = append(opts.Contexts, parsed)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if format == output.FormatHuman {
				printBanner(cmd.ErrOrStderr())
			}
			verdicts, err := runner.Verify(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output.FormatVerdicts(verdicts, format))

			for _, v := range verdicts {
				if !v.Consistent {
					return errInconsistent
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", output.FormatHuman, "output format: human, json, table")
	cmd.Flags().Int("workers", 0, "concurrent render jobs (default from config)")
	cmd.Flags().StringSliceVar(&contexts, "context", nil, "limit to these injection contexts")
	return cmd
}
