package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
)

func (a *app) stopwordsCmd() *cobra.Command {
	var (
		th  = stoplist.DefaultThresholds()
		out string
	)
	cmd := &cobra.Command{
		Use:   "stopwords <export.json>",
		Short: "Suggest stopwords: words nearly every sender uses about equally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			res, err := eng.AnalyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cands := eng.SuggestStopwords(res, th)

			if out != "" {
				var b strings.Builder
				b.WriteString("# suggested stopwords for " + res.Report.ChatName + "\n")
				for _, c := range cands {
					b.WriteString(c.Word + "\n")
				}
				if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
					return fmt.Errorf("write stopwords: %w", err)
				}
				log.Info().Str("path", out).Int("words", len(cands)).Msg("stopwords written")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WORD\tFREQ\tSCORE")
			for _, c := range cands {
				fmt.Fprintf(w, "%s\t%d\t%.3f\n", c.Word, c.Freq, c.Score)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&th.MinFreq, "min-freq", th.MinFreq, "minimum word frequency")
	cmd.Flags().Float64Var(&th.SenderPercent, "sender-pct", th.SenderPercent, "minimum share of senders using the word (0-100)")
	cmd.Flags().Float64Var(&th.SenderEntropy, "entropy", th.SenderEntropy, "minimum normalized sender entropy (0-1)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write a word list usable as stopwords_path")
	return cmd
}
