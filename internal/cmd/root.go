// Package cmd implements the pdvd-assess command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/ortelius/pdvd-assess/internal/config"
	"github.com/ortelius/pdvd-assess/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = util.InitLogger()

// Version is set at build time with -ldflags.
var Version = "0.0.1"

// NewRootCmd builds the command tree around its own viper instance.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "pdvd-assess",
		Short:         "Contextual CVE severity assessment",
		Long:          "pdvd-assess scores CVEs against application context, validates AI suggestions and queues uncertain results for analyst review.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	root.PersistentFlags().String("osv-url", "", "OSV API base URL (env OSV_URL)")
	root.PersistentFlags().String("ai-provider", "", "AI provider: openai, claude, gemini or fallback (env AI_PROVIDER)")
	_ = v.BindPFlag("osv.url", root.PersistentFlags().Lookup("osv-url"))
	_ = v.BindPFlag("ai.provider", root.PersistentFlags().Lookup("ai-provider"))

	root.AddCommand(newServeCmd(v))
	root.AddCommand(newAssessCmd(v))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(v *viper.Viper) config.Config {
	return config.Load(v)
}
