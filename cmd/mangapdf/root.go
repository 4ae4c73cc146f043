package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kerbaras/mangapdf/pkg/config"
)

// NewRootCommand builds the mangapdf command tree.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "mangapdf <title-id>",
		Short: "Download a manga title as a single bookmarked PDF",
		Long: "Fetch every chapter of a manga title, convert each chapter's pages to PDF,\n" +
			"merge them in reading order and add a table of contents.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], cfgFile)
		},
	}

	defaults := config.DefaultConfig()
	flags := rootCmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml or $HOME/.mangapdf/config.yaml)")
	flags.StringP("output", "o", "", "output location of the PDF (default \"<title>.pdf\")")
	flags.IntP("jobs", "j", defaults.Jobs, "number of concurrent downloads")
	flags.IntP("retries", "r", defaults.Retries, "number of attempts per HTTP request")
	flags.Duration("retry-delay", defaults.RetryDelay, "wait between attempts to fetch a chapter")
	flags.Duration("pause", defaults.Pause, "pause after each chapter")
	flags.String("backend", defaults.Backend, "pdf backend: external (img2pdf + pdftk) or pdfcpu")
	flags.String("api", defaults.API, "content API base URL")
	flags.Float64("rate", defaults.Rate, "max page requests per second (0 = unlimited)")
	flags.Bool("tui", defaults.TUI, "show an interactive progress view")
	flags.BoolP("verbose", "v", defaults.Verbose, "enable debug logging")
	flags.String("device", defaults.Device, "optimize pages for a reading device (see 'mangapdf devices')")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newDevicesCommand())
	return rootCmd
}

// pageRetryDelay is the base backoff between attempts of a single page.
const pageRetryDelay = time.Second

func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
