package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/ortelius/pdvd-assess/internal/services"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type assessOptions struct {
	CveID    string
	AppFile  string
	AppName  string
	Provider string
}

func newAssessCmd(v *viper.Viper) *cobra.Command {
	var opts assessOptions

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess one CVE against an application manifest and print the result as JSON",
		Example: `  pdvd-assess assess --cve CVE-2021-44228 --app-file apps.yaml --app payments-api
  pdvd-assess assess --cve CVE-2021-44228 --app-file app.yaml --provider fallback`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.CveID == "" {
				return errors.New("please provide --cve")
			}
			if opts.AppFile == "" {
				return errors.New("please provide --app-file")
			}

			cfg := loadConfig(v)
			if opts.Provider == "" {
				opts.Provider = cfg.AIProvider
			}
			return runAssess(cmd.Context(), cmd.OutOrStdout(), opts, services.NewCVEFetcher(cfg.OSVURL), cfg.AI)
		},
	}

	cmd.Flags().StringVar(&opts.CveID, "cve", "", "CVE identifier, e.g. CVE-2021-44228")
	cmd.Flags().StringVar(&opts.AppFile, "app-file", "", "YAML file describing one or more applications")
	cmd.Flags().StringVar(&opts.AppName, "app", "", "Application name or key when the file holds several")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "AI provider override")
	return cmd
}

// runAssess evaluates without persisting anything.
func runAssess(ctx context.Context, out io.Writer, opts assessOptions, catalog services.VulnerabilityCatalog, aiCfg ai.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cveID, err := model.ValidateCveID(opts.CveID)
	if err != nil {
		return err
	}

	apps, err := model.LoadApplicationsYAML(opts.AppFile)
	if err != nil {
		return err
	}
	app, err := model.FindApplication(apps, opts.AppName)
	if err != nil {
		return err
	}

	provider, err := ai.Resolve(opts.Provider, aiCfg)
	if err != nil {
		return err
	}

	vuln, err := catalog.FetchVulnerability(ctx, cveID)
	if err != nil {
		return err
	}

	svc := &services.AssessmentService{Catalog: catalog}
	assessment, err := svc.Evaluate(ctx, vuln, app, provider)
	if err != nil {
		return err
	}
	assessment.CveID = cveID

	logger.Sugar().Infof("Assessed %s for %s with %s", cveID, app.Name, provider.Name())

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(assessment)
}
