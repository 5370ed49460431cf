// Package cli implements the biosec operator command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
)

// Build information, injected by cmd/biosec.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath   string
	CatalogPath  string
	OutputFormat string
	ServerAddr   string
	Token        string
}

// loadConfig reads the configuration named by --config, falling back to
// the environment.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.LoadOrEnv(o.ConfigPath)
}

// loadCatalog returns the questionnaire named by --catalog, then by the
// configuration file when one was given, then the built-in one.
func (o *RootOptions) loadCatalog() (*assessment.Catalog, error) {
	path := o.CatalogPath
	if path == "" && o.ConfigPath != "" {
		cfg, err := o.loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Assessment.CatalogPath
	}
	return assessment.LoadCatalog(path)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openMigrator)
}

func newRootCommand(open migratorFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "biosec",
		Short: "BioSecure portal operator tooling",
		Long: "biosec manages the BioSecure portal database schema and works with the\n" +
			"biosecurity risk-assessment questionnaire offline.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.OutputFormat {
			case FormatText, FormatJSON, FormatYAML:
				return nil
			default:
				return fmt.Errorf("invalid output format %q (must be text, json or yaml)", opts.OutputFormat)
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (environment only when empty)")
	pf.StringVar(&opts.CatalogPath, "catalog", "", "questionnaire file (default: built-in catalog)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", FormatText, "output format (text, json, yaml)")
	pf.StringVar(&opts.ServerAddr, "server", "", "portal address for remote commands (default: $"+envServer+" or "+defaultServer+")")
	pf.StringVar(&opts.Token, "token", "", "access token for remote commands (default: $"+envToken+")")

	cmd.AddCommand(
		newVersionCmd(),
		newCatalogCmd(opts),
		newScoreCmd(opts),
		newMigrateCmd(opts, open),
		newFarmsCmd(opts),
		newAlertsCmd(opts),
		newAssessCmd(opts),
	)
	return cmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "biosec %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildDate)
		},
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
