package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"domaincheck/internal/checker"
	"domaincheck/internal/config"
	"domaincheck/internal/report"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/serrors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// collectDomains returns the positional domains followed by the domains of file.
func collectDomains(args []string, file string) ([]string, error) {
	domains := make([]string, 0, len(args))
	for _, a := range args {
		if d := domain.Normalize(a); d != "" {
			domains = append(domains, d)
		}
	}

	if file == "" {
		return domains, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadInput, err, "could not read %s", file)
	}
	defer func() {
		_ = f.Close()
	}()

	fromFile, err := report.ReadDomains(f)
	if err != nil {
		return nil, err
	}

	return append(domains, fromFile...), nil
}

// printRegistrations writes "<domain>: registered|available|unknown" lines.
func printRegistrations(ctx context.Context, w io.Writer, r checker.Registrar, domains []string) error {
	for _, d := range domains {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", d, r.Resolve(ctx, d).Status); err != nil {
			return err
		}
	}

	return nil
}

// checkCommand constructs the 'check' subcommand that runs the pipeline over a
// domain list and writes the reports.
func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [domains...]",
		Short: "Checks domains and writes CSV reports",
		Long: "Checks whether the given domains are registered and, for registered ones,\n" +
			"estimates monthly traffic and backlinks. Domains come from the arguments\n" +
			"and from -f (CSV with a domain column, or one domain per line with # comments).",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			file, _ := flags.GetString("file")
			registrationOnly, _ := flags.GetBool("registration-only")
			workbook, _ := flags.GetBool("xlsx")
			cfg.Checker.Delay, _ = flags.GetDuration("delay")
			cfg.Checker.Workers, _ = flags.GetInt("workers")
			cfg.Checker.MaxDomains, _ = flags.GetInt("max")
			cfg.Checker.MinMonthlyVisits, _ = flags.GetInt64("min-monthly")
			cfg.Checker.OutputDir, _ = flags.GetString("out")

			domains, err := collectDomains(args, file)
			if err != nil {
				return err
			}
			if len(domains) == 0 {
				_ = cmd.Usage()

				return serrors.With(serrors.ErrBadInput, "no domains given")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, cleanup := setupPipeline(ctx, cfg)
			defer cleanup()

			if registrationOnly {
				if cfg.Checker.MaxDomains > 0 && len(domains) > cfg.Checker.MaxDomains {
					domains = domains[:cfg.Checker.MaxDomains]
				}

				return printRegistrations(ctx, cmd.OutOrStdout(), p.resolver, domains)
			}

			files := report.Files{
				Dir:       cfg.Checker.OutputDir,
				Threshold: cfg.Checker.MinMonthlyVisits,
				Workbook:  workbook,
			}
			opts := checker.NewRunOptions(cfg)
			opts.OnCheckpoint = files.Checkpoint

			logger.Info(ctx, "checking domains", zap.Int("domains", len(domains)), zap.Int("workers", opts.Workers))
			results, runErr := p.checker.Run(ctx, domains, opts)

			// partial results of an aborted run are still written
			paths, err := files.Write(context.Background(), results)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range paths {
				_, _ = fmt.Fprintln(out, path)
			}
			_, _ = fmt.Fprintf(out, "%d domains checked, %d hits over %d monthly visits\n",
				len(results), len(results.Hits(cfg.Checker.MinMonthlyVisits)), cfg.Checker.MinMonthlyVisits)

			return runErr
		},
	}

	flags := cmd.Flags()
	flags.StringP("file", "f", "", "Domain list (CSV or one domain per line)")
	flags.Duration("delay", cfg.Checker.Delay, "Pause after every lookup")
	flags.Int("workers", cfg.Checker.Workers, "Domains checked in parallel")
	flags.Int("max", cfg.Checker.MaxDomains, "Check at most this many domains (0 = all)")
	flags.Int64("min-monthly", cfg.Checker.MinMonthlyVisits, "Monthly visits threshold for the hits report")
	flags.String("out", cfg.Checker.OutputDir, "Output directory for the reports")
	flags.Bool("xlsx", false, "Also write results.xlsx")
	flags.Bool("registration-only", false, "Only print the registration status of each domain")

	return cmd
}
