package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewsched/app"
	"github.com/kilianp07/crewsched/config"
	"github.com/kilianp07/crewsched/infra/logger"
)

var (
	cfgPath     string
	envFile     string
	instance    string
	catalogFile string
	params      string
	outputModel string
)

var rootCmd = &cobra.Command{
	Use:           "crewsched",
	Short:         "Bus driver shift scheduling",
	Long:          "Assigns timed driving shifts to the fewest drivers, then minimizes their total working time.",
	RunE:          runSolve,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file (defaults apply when missing)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	pf.StringVarP(&instance, "instance", "i", "", "embedded catalog: small, medium or large")
	pf.StringVar(&catalogFile, "catalog-file", "", "YAML or JSON catalog file")
	pf.StringVarP(&params, "params", "p", "", "solver parameters as key:value pairs (default \""+config.DefaultSolverParams+"\")")
	pf.StringVarP(&outputModel, "output-model", "o", "", "write the phase two model to this path")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("instance") {
		cfg.Catalog.Instance = instance
		cfg.Catalog.File = ""
		cfg.Catalog.PostgresDSN = ""
	}
	if flags.Changed("catalog-file") {
		cfg.Catalog.File = catalogFile
	}
	if flags.Changed("params") {
		cfg.Solver.Params = params
	}
	if flags.Changed("output-model") {
		cfg.Solver.ModelDumpPath = outputModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withService builds the service, runs fn under a signal aware context and
// closes the service.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg, app.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return fn(ctx, svc)
}
