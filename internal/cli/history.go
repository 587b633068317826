package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/progcdc/internal/program"
	"github.com/roach88/progcdc/internal/tracker"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <program-id>",
		Short: "Show the change log of a program",
		Long: `Print every recorded change of a program, oldest first.

Examples:
  progcdc history 48213
  progcdc history 48213 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd, args[0], false)
		},
	}
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <program-id>",
		Short: "Show a program's state as of its latest change",
		Long: `Fold a program's change log and print the resulting state.

Examples:
  progcdc state 48213`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd, args[0], true)
		},
	}
}

func runHistory(opts *RootOptions, cmd *cobra.Command, arg string, foldState bool) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	id, err := program.ParseProgramID(arg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid program id", err)
	}

	cfg, err := opts.Config()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	st, err := openTracking(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	// Reads only touch the log store.
	trk := tracker.New(nil, st)

	if foldState {
		state, err := trk.State(cmd.Context(), id)
		if err != nil {
			return historyError(formatter, id, err)
		}
		if opts.Format == "json" {
			return formatter.Success(state)
		}
		writeState(cmd.OutOrStdout(), state)
		return nil
	}

	log, err := trk.History(cmd.Context(), id)
	if err != nil {
		return historyError(formatter, id, err)
	}

	if opts.Format == "json" {
		return formatter.Success(log)
	}

	digest, err := st.LogDigest(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read log digest", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Program %s: %d change(s)\n", log.ProgramID, log.Len())
	fmt.Fprintf(w, "  Digest: %s\n", digest)
	for i, c := range log.Changes {
		fmt.Fprintf(w, "  %3d  %s\n", i+1, describeChange(c))
	}
	return nil
}

func historyError(formatter *OutputFormatter, id program.ProgramID, err error) error {
	if outErr := formatter.Error(ErrorCode(err, "E_HISTORY_FAILED"), err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, fmt.Sprintf("no history for program %s", id), err)
}
