package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/engine"
	"github.com/xab-mack/devstatus/internal/logging"
	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/report"
	"github.com/xab-mack/devstatus/internal/tools"
	"github.com/xab-mack/devstatus/internal/tui"
)

// session carries the state shared by every subcommand.
type session struct {
	verbose bool
	logger  *zap.Logger
}

func (s *session) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

func AddCommands(root *cobra.Command) {
	s := &session{}
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(s.verbose)
		if err != nil {
			return err
		}
		s.logger = logger
		return nil
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if s.logger != nil {
			_ = s.logger.Sync()
		}
	}
	root.AddCommand(newGenerateCmd(s))
	root.AddCommand(newWatchCmd(s))
	root.AddCommand(newInitCmd())
	root.AddCommand(newContractsCmd())
}

// newToolchain is swapped out in tests.
var newToolchain = func(root string, cfg config.Config, logger *zap.Logger) engine.Toolchain {
	return tools.NewBridge(root, cfg, tools.WithLogger(logger))
}

type generateOptions struct {
	root           string
	gas            bool
	noBuild        bool
	noSlither      bool
	timeout        time.Duration
	jsonOut        bool
	sarifOut       string
	acceptFindings bool
}

func (o *generateOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.gas, "gas", false, "Run forge test with a gas report")
	cmd.Flags().BoolVar(&o.noBuild, "no-build", false, "Skip forge clean/build")
	cmd.Flags().BoolVar(&o.noSlither, "no-slither", false, "Skip the slither scan")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Per-tool timeout (overrides tools.timeoutMs)")
}

func rootArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

func newGenerateCmd(s *session) *cobra.Command {
	var (
		opts   generateOptions
		useTUI bool
	)
	cmd := &cobra.Command{
		Use:   "generate [root]",
		Short: "Collect contract status and write the status and checklist documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.root = rootArg(args)
			res, err := generate(cmd.Context(), opts, cmd.OutOrStdout(), s.log())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			if useTUI {
				return tui.Run(res.Project, report.Checklist(res), report.RenderStatus(res))
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse the checklist interactively after generating")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Also print the collected result as JSON")
	cmd.Flags().StringVar(&opts.sarifOut, "sarif-out", "", "Write listed slither findings as SARIF to this file")
	cmd.Flags().BoolVar(&opts.acceptFindings, "accept-findings", false, "Add the listed slither findings to the security baseline")
	return cmd
}

// generate runs the pipeline once and writes both documents. Only config
// errors and document write failures are returned; everything else degrades
// inside the pipeline.
func generate(ctx context.Context, opts generateOptions, out io.Writer, logger *zap.Logger) (*engine.Result, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, err
	}
	cfg, cfgPath, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		logger.Debug("config loaded", zap.String("path", cfgPath))
	}
	if opts.timeout > 0 {
		cfg.Tools.TimeoutMs = int(opts.timeout / time.Millisecond)
	}

	eng := engine.New(cfg, newToolchain(root, cfg, logger), engine.WithLogger(logger))
	res, err := eng.Run(ctx, model.RunRequest{
		Root:        root,
		RunGas:      opts.gas,
		SkipBuild:   opts.noBuild,
		SkipSlither: opts.noSlither,
	})
	if err != nil {
		return nil, err
	}

	docs := report.Render(res)
	docsDir := filepath.Join(root, cfg.Layout.DocsDir)
	if err := report.WriteDocuments(docsDir, cfg.Layout.StatusFile, cfg.Layout.ChecklistFile, docs); err != nil {
		return nil, fmt.Errorf("write documents: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s and %s\n",
		filepath.Join(cfg.Layout.DocsDir, cfg.Layout.StatusFile),
		filepath.Join(cfg.Layout.DocsDir, cfg.Layout.ChecklistFile))

	if err := exportFindings(root, cfg, opts, res, logger); err != nil {
		return nil, err
	}
	return res, nil
}

func exportFindings(root string, cfg config.Config, opts generateOptions, res *engine.Result, logger *zap.Logger) error {
	if res.Security == nil {
		if opts.sarifOut != "" || opts.acceptFindings {
			logger.Warn("security scan skipped; nothing to export")
		}
		return nil
	}
	if opts.sarifOut != "" {
		data, err := report.ToSARIF(res.Security.Findings)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.sarifOut, data, 0o644); err != nil {
			return fmt.Errorf("write sarif: %w", err)
		}
	}
	if opts.acceptFindings && cfg.SecurityBaseline != "" {
		path := filepath.Join(root, cfg.SecurityBaseline)
		if err := engine.WriteBaseline(path, res.Security.Findings); err != nil {
			return fmt.Errorf("write security baseline: %w", err)
		}
		logger.Info("findings accepted", zap.Int("count", len(res.Security.Findings)), zap.String("baseline", path))
	}
	return nil
}
