package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioSecure-Portal/pkg/client"
)

const (
	envServer     = "BIOSEC_SERVER"
	envToken      = "BIOSEC_TOKEN"
	defaultServer = "http://localhost:8080"
)

// apiClient builds an SDK client from --server and --token, falling back to
// the environment.
func (o *RootOptions) apiClient() (*client.Client, error) {
	server := o.ServerAddr
	if server == "" {
		server = os.Getenv(envServer)
	}
	if server == "" {
		server = defaultServer
	}
	token := o.Token
	if token == "" {
		token = os.Getenv(envToken)
	}
	if token == "" {
		return nil, fmt.Errorf("an access token is required (--token or $%s)", envToken)
	}
	return client.NewClient(server, token)
}

func newFarmsCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farms",
		Short: "Work with your registered farms",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your farms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.apiClient()
			if err != nil {
				return err
			}
			farms, err := c.Farms().List(cmd.Context())
			if err != nil {
				return err
			}
			if opts.OutputFormat != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.OutputFormat, farms)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tLOCATION\tANIMALS")
			for _, f := range farms {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", f.ID, f.Name, f.FarmType, f.Location, f.AnimalCount)
			}
			return w.Flush()
		},
	})
	return cmd
}

func newAlertsCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Read active biosecurity alerts",
	}

	var listOpts client.AlertListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List active alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.apiClient()
			if err != nil {
				return err
			}
			page, err := c.Alerts().List(cmd.Context(), &listOpts)
			if err != nil {
				return err
			}
			if opts.OutputFormat != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.OutputFormat, page)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEVERITY\tTYPE\tFARM TYPE\tTITLE")
			for _, a := range page.Alerts {
				farmType := a.FarmType
				if farmType == "" {
					farmType = "all"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Severity, a.AlertType, farmType, a.Title)
			}
			fmt.Fprintf(w, "\n%d of %d alerts\n", len(page.Alerts), page.Total)
			return w.Flush()
		},
	}
	list.Flags().StringVar(&listOpts.FarmType, "farm-type", "", "only alerts for this farm type")
	list.Flags().StringVar(&listOpts.Severity, "severity", "", "only alerts of this severity")
	list.Flags().IntVar(&listOpts.Page, "page", 0, "page number")
	list.Flags().IntVar(&listOpts.PageSize, "page-size", 0, "alerts per page")
	cmd.AddCommand(list)
	return cmd
}

func newAssessCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Submit and export risk assessments",
	}

	var file, recommendations string
	submit := &cobra.Command{
		Use:   "submit FARM_ID",
		Short: "Submit questionnaire responses for a farm",
		Long:  "Submit a responses file in the format accepted by the score command.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			r, err := parseResponses(data)
			if err != nil {
				return err
			}
			answers := make(map[string]int, len(r))
			for id, v := range r {
				answers[id] = int(v)
			}
			c, err := opts.apiClient()
			if err != nil {
				return err
			}
			a, err := c.Assessments().Submit(cmd.Context(), args[0], answers, recommendations)
			if err != nil {
				return describeAPIError(err)
			}
			if opts.OutputFormat != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.OutputFormat, a)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assessment %s: %d%% (%s risk)\n", a.ID, a.OverallScore, a.RiskLevel)
			for _, adv := range a.Areas.Advisories {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", adv)
			}
			return nil
		},
	}
	submit.Flags().StringVarP(&file, "file", "f", "", "responses file, - for stdin [REQUIRED]")
	submit.Flags().StringVar(&recommendations, "recommendations", "", "free-text notes stored with the assessment")
	_ = submit.MarkFlagRequired("file")

	export := &cobra.Command{
		Use:   "export ASSESSMENT_ID",
		Short: "Export an assessment report and print its download link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.apiClient()
			if err != nil {
				return err
			}
			link, err := c.Assessments().Export(cmd.Context(), args[0])
			if err != nil {
				return describeAPIError(err)
			}
			if opts.OutputFormat != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.OutputFormat, link)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n(expires %s)\n", link.URL, link.ExpiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}

	cmd.AddCommand(submit, export)
	return cmd
}

// describeAPIError appends per-field validation messages to err.
func describeAPIError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	msg := apiErr.Error()
	for field, reason := range apiErr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, reason)
	}
	return errors.New(msg)
}
