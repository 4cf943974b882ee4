package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/precedex/precedex/internal/app"
	"github.com/precedex/precedex/internal/domain/casefile"
)

type recommendOptions struct {
	jobTitle    string
	companyType string
	wageLevel   string
	rfeIssues   []string
	arguments   []string
	topK        int
	asJSON      bool
}

func newRecommendCommand(opts *RootOptions) *cobra.Command {
	ro := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend arguments for a case profile",
		Long:  "Loads the corpus and prints the strategy recommendation for the given case\nprofile. Use --json for the full structured payload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newCLILogger(cfg)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, log, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := loadEngine(cmd.Context(), a, false); err != nil {
				return err
			}

			profile := &casefile.Profile{
				JobTitle:         ro.jobTitle,
				CompanyType:      casefile.ParseCompanyType(ro.companyType),
				WageLevel:        casefile.ParseWageLevel(ro.wageLevel),
				RFEIssues:        ro.rfeIssues,
				CurrentArguments: ro.arguments,
			}
			result, err := a.Engine.Recommend(cmd.Context(), profile, ro.topK)
			if err != nil {
				return err
			}

			if ro.asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Explanation)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&ro.jobTitle, "job-title", "", "job title of the filing")
	f.StringVar(&ro.companyType, "company-type", "", "employer category (consulting, staffing, direct_employer)")
	f.StringVar(&ro.wageLevel, "wage-level", "", `prevailing wage tier ("Level I".."Level IV")`)
	f.StringSliceVar(&ro.rfeIssues, "rfe-issue", nil, "RFE issue raised (repeatable)")
	f.StringSliceVar(&ro.arguments, "argument", nil, "argument already planned (repeatable)")
	f.IntVar(&ro.topK, "top-k", 0, "number of similar cases to rank (default from config)")
	f.BoolVar(&ro.asJSON, "json", false, "print the full recommendation payload as JSON")
	return cmd
}
