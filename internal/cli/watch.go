package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/watch"
)

func newWatchCmd(s *session) *cobra.Command {
	var (
		opts     generateOptions
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Regenerate the documents whenever Solidity sources change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.root = rootArg(args)
			root, err := filepath.Abs(opts.root)
			if err != nil {
				return err
			}
			cfg, _, err := config.Load(root)
			if err != nil {
				return err
			}
			logger := s.log()
			out := cmd.OutOrStdout()

			regenerate := func(ctx context.Context) error {
				start := time.Now()
				if _, err := generate(ctx, opts, out, logger); err != nil {
					return err
				}
				logger.Info("documents regenerated", zap.Duration("elapsed", time.Since(start)))
				return nil
			}
			if err := regenerate(cmd.Context()); err != nil {
				return err
			}

			dirs := []string{cfg.Layout.SourceRoot, cfg.Layout.TestDir, cfg.Layout.ScriptDir}
			fmt.Fprintf(out, "Watching %v for .sol changes (ctrl+c to stop)\n", dirs)
			w := watch.New(root, dirs, regenerate, watch.WithDebounce(debounce), watch.WithLogger(logger))
			return w.Run(cmd.Context())
		},
	}
	opts.bind(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before regenerating")
	return cmd
}
