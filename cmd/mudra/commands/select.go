package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/selector"
)

type selectOptions struct {
	strategy  string
	minStates int
	maxStates int
	constant  int
	seed      int64
	workers   int
	word      string
	quiet     bool
}

func newSelectCmd(opts *options) *cobra.Command {
	so := &selectOptions{}

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the number of HMM states for each word",
		Long: `Select the number of hidden states for every stored word, or for a
single word with --word, and store the results as a run.

Strategies:
  constant   always use --constant states
  bic        minimize the Bayesian Information Criterion over [min, max)
  dic        maximize the Discriminative Information Criterion over [min, max)
  cv         maximize mean held-out log-likelihood over [min, max]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, opts, so)
		},
	}

	cmd.Flags().StringVar(&so.strategy, "strategy", "", "Selection strategy: constant, bic, dic, cv")
	cmd.Flags().IntVar(&so.minStates, "min", 0, "Smallest candidate state count")
	cmd.Flags().IntVar(&so.maxStates, "max", 0, "Upper bound of candidate state counts")
	cmd.Flags().IntVar(&so.constant, "constant", 0, "Fallback state count")
	cmd.Flags().Int64Var(&so.seed, "seed", 0, "Training seed")
	cmd.Flags().IntVar(&so.workers, "workers", 0, "Words selected in parallel")
	cmd.Flags().StringVar(&so.word, "word", "", "Select a single word")
	cmd.Flags().BoolVarP(&so.quiet, "quiet", "q", false, "Hide the progress bar")

	return cmd
}

func runSelect(cmd *cobra.Command, opts *options, so *selectOptions) error {
	sel := &opts.cfg.Selection
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		sel.Strategy = so.strategy
	}
	if flags.Changed("min") {
		sel.MinStates = so.minStates
	}
	if flags.Changed("max") {
		sel.MaxStates = so.maxStates
	}
	if flags.Changed("constant") {
		sel.Constant = so.constant
	}
	if flags.Changed("seed") {
		sel.Seed = so.seed
	}
	if flags.Changed("workers") {
		sel.Workers = so.workers
	}
	if err := opts.cfg.Validate(); err != nil {
		return err
	}
	strategy, err := selector.ParseStrategy(sel.Strategy)
	if err != nil {
		return err
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runner := app.New(app.Config{
		Store:     st,
		Trainer:   opts.trainer(),
		Selection: *sel,
		Logger:    logging.L(),
	})

	var prog *progress
	if !so.quiet {
		prog = showProgress(cmd, runner)
	}

	var run *app.Run
	if so.word != "" {
		run, err = runner.SelectWord(strategy, so.word)
	} else {
		run, err = runner.Run(strategy)
	}
	if prog != nil {
		total := 0
		if run != nil {
			total = len(run.Results)
		}
		prog.finish(total)
	}
	if err != nil {
		return err
	}

	return printRun(cmd.OutOrStdout(), run)
}

// progress draws a progress bar fed by the runner's events.
type progress struct {
	bar         *progressbar.ProgressBar
	unsubscribe func()
	done        chan struct{}
}

func showProgress(cmd *cobra.Command, runner *app.Runner) *progress {
	events, unsubscribe := runner.Subscribe()

	p := &progress{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("selecting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		),
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		for e := range events {
			p.bar.ChangeMax(e.Total)
			p.bar.Describe(e.Word)
			p.bar.Add(1)
		}
	}()
	return p
}

// finish stops the bar at total words. The runner drops events for slow
// subscribers, so the count comes from the finished run.
func (p *progress) finish(total int) {
	p.unsubscribe()
	<-p.done
	if total > 0 {
		p.bar.ChangeMax(total)
	}
	p.bar.Finish()
}

func printRun(w io.Writer, run *app.Run) error {
	fmt.Fprintf(w, "Run %s (%s)\n\n", run.ID, run.Strategy)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tSTATES\tSCORE\tOUTCOME\tREASON")
	for _, res := range run.Results {
		score := "-"
		if res.HasScore {
			score = fmt.Sprintf("%.4f", res.Score)
		}
		reason := ""
		if res.Cause != nil {
			reason = res.Cause.Error()
		}
		states := fmt.Sprint(res.States)
		if !res.OK() {
			states = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", res.Word, states, score, res.Outcome, reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sum := run.Summary()
	fmt.Fprintf(w, "\n%d words: %d selected, %d constant, %d fallback, %d absent\n",
		sum.Words, sum.Selected, sum.Constant, sum.Fallback, sum.Absent)
	return nil
}
