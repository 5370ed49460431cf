package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
)

func newCatalogCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the risk-assessment questionnaire",
		Long:  "Print the areas, questions and weights of the questionnaire in use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			if opts.OutputFormat != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.OutputFormat, c)
			}
			return printCatalog(cmd, c)
		},
	}
	cmd.AddCommand(newCatalogValidateCmd())
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a questionnaire file",
		Long:  "Decode a YAML or JSON questionnaire and check ids and weights.  Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := assessment.ParseCatalog(data)
			if err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s is valid: %d areas, %d questions\n",
				c.Version, len(c.Areas), c.QuestionCount())
			return nil
		},
	}
}

func printCatalog(cmd *cobra.Command, c *assessment.Catalog) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Catalog %s (%d questions)\n", c.Version, c.QuestionCount())
	for _, a := range c.Areas {
		fmt.Fprintf(w, "\n%s [%s]\tmax %d\n", a.Name, a.ID, a.MaxWeightedScore())
		for _, q := range a.Questions {
			fmt.Fprintf(w, "  %s\tw%d\t%s\n", q.ID, q.Weight, q.Text)
		}
	}
	return w.Flush()
}
