package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/progcdc/internal/tracker"
)

// FlattenOptions holds flags for the flatten command.
type FlattenOptions struct {
	*RootOptions
	RepostThreshold string
}

// FlattenResult is the outcome of a flatten run.
type FlattenResult struct {
	Rewritten int    `json:"rewritten"`
	Threshold string `json:"threshold"`
}

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlattenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Coalesce delete/post pairs in stored change logs",
		Long: `Rewrite every stored change log, replacing each Deleted followed closely
by a Posted with a single RePosted. Use after widening the repost threshold.

Examples:
  progcdc flatten
  progcdc flatten --repost-threshold 1m`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RepostThreshold, "repost-threshold", "", "widest delete/post gap treated as a re-post (overrides config)")

	return cmd
}

func runFlatten(opts *FlattenOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.Config()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.RepostThreshold != "" {
		cfg.RepostThreshold = opts.RepostThreshold
	}
	threshold, err := cfg.Threshold()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid repost threshold", err)
	}

	st, err := openTracking(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	trk := tracker.New(nil, st, tracker.WithRepostThreshold(threshold))

	n, err := trk.Compact(cmd.Context())
	if err != nil {
		if outErr := formatter.Error(ErrorCode(err, "E_FLATTEN_FAILED"), err.Error(), FlattenResult{Rewritten: n, Threshold: threshold.String()}); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "flatten failed", err)
	}

	result := FlattenResult{Rewritten: n, Threshold: threshold.String()}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Flattened %d change log(s) (threshold %s)\n", result.Rewritten, result.Threshold)
	return nil
}
