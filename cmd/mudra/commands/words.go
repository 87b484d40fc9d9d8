package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newWordsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List stored words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			words, err := st.Words().List()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WORD\tSEQUENCES\tFEATURES")
			for _, w := range words {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", w.Name, w.Sequences, w.Features)
			}
			return tw.Flush()
		},
	}
}
