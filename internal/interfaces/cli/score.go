package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/BioSecure-Portal/internal/domain/assessment"
)

// ScoreReport is the output of the score command.
type ScoreReport struct {
	CatalogVersion string         `json:"catalog_version" yaml:"catalog_version"`
	AreaScores     map[string]int `json:"area_scores" yaml:"area_scores"`
	Overall        int            `json:"overall_score" yaml:"overall_score"`
	RiskLevel      string         `json:"risk_level" yaml:"risk_level"`
	Advisories     []string       `json:"advisories,omitempty" yaml:"advisories,omitempty"`
}

func newScoreCmd(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a set of questionnaire responses",
		Long: "Score responses without a running portal.  The file maps question ids to\n" +
			"answers, given either as 1-4 or as Never, Sometimes, Usually or Always.",
		Example: "  biosec score -f responses.yaml\n  cat responses.yaml | biosec score -f - -o json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			r, err := parseResponses(data)
			if err != nil {
				return err
			}
			res, err := c.Score(r)
			if err != nil {
				return err
			}
			report := &ScoreReport{
				CatalogVersion: c.Version,
				AreaScores:     res.AreaScores,
				Overall:        res.Overall,
				RiskLevel:      string(assessment.RiskLevelFor(res.Overall)),
				Advisories:     c.Advisories(res, r),
			}
			if opts.OutputFormat != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.OutputFormat, report)
			}
			return printScore(cmd, c, report)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "responses file, - for stdin [REQUIRED]")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseResponses decodes a question-id to answer mapping.
func parseResponses(data []byte) (assessment.Responses, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	out := make(assessment.Responses, len(raw))
	for id, v := range raw {
		resp, err := parseResponse(v)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", id, err)
		}
		out[id] = resp
	}
	return out, nil
}

func parseResponse(v string) (assessment.Response, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return assessment.Response(n), nil
	}
	for r := assessment.ResponseNever; r <= assessment.ResponseAlways; r++ {
		if strings.EqualFold(v, r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown answer %q", v)
}

func printScore(cmd *cobra.Command, c *assessment.Catalog, report *ScoreReport) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Overall\t%d%%\t%s risk\n\n", report.Overall, report.RiskLevel)
	for _, a := range c.Areas {
		fmt.Fprintf(w, "%s\t%d%%\n", a.Name, report.AreaScores[a.ID])
	}
	if len(report.Advisories) > 0 {
		fmt.Fprintln(w, "\nAdvisories:")
		for _, adv := range report.Advisories {
			fmt.Fprintf(w, "  - %s\n", adv)
		}
	}
	return w.Flush()
}
