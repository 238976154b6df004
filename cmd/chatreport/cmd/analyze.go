package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cognicore/chatreport/internal/service"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		out  string
		save bool
		top  int
	)
	cmd := &cobra.Command{
		Use:   "analyze <export.json>",
		Short: "Analyze a chat export and print the report JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.engine()
			if err != nil {
				return err
			}
			res, err := eng.AnalyzeFile(ctx, args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(res.Report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				log.Info().Str("path", out).Msg("report written")
			}

			if !save {
				return nil
			}
			svc, st, err := a.service(ctx, eng)
			if err != nil {
				return err
			}
			defer st.Close()
			rec, err := svc.Save(ctx, res.Report, top)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved report %s\n", rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "store the report with its top words")
	cmd.Flags().IntVar(&top, "top", service.DefaultAutoSelect, "words kept when saving")
	return cmd
}
