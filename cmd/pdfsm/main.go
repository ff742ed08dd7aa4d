package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/local/pdfsm/internal/config"
	"github.com/local/pdfsm/internal/filetype"
	"github.com/local/pdfsm/internal/inputs"
	logpkg "github.com/local/pdfsm/internal/logger"
	"github.com/local/pdfsm/internal/merge"
	"github.com/local/pdfsm/internal/metrics"
	"github.com/local/pdfsm/internal/pdfdoc"
	"github.com/local/pdfsm/internal/repair"
	"github.com/local/pdfsm/internal/session"
)

var version = "dev"

// app holds what every subcommand shares once the root command has run its setup.
type app struct {
	cfg     cfgpkg.Config
	session *session.Session
	gs      *repair.Ghostscript
	merger  *merge.Merger
}

var rootCmd = &cobra.Command{
	Use:   "pdfsm",
	Short: "Assemble a PDF from pages of other PDFs",
	Long: `pdfsm builds one output PDF from selected pages of several input PDFs.

The pages are listed in a selector INI file:

  [General]
  InputFilesCount=2
  [Input1]
  InputFile=a
  SelectPages=1,3
  [Input2]
  InputFile=b
  SelectPages=2

Inputs that cannot be opened are rewritten with Ghostscript and retried.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { logpkg.Close() },
}

var cur *app

func setup(cmd *cobra.Command, _ []string) error {
	cfg := cfgpkg.Load()
	if err := logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	metrics.Init()
	inputs.CleanupTemps(time.Hour)

	gs := repair.NewGhostscript(cfg.Repair.Binary, cfg.Repair.Timeout)
	cur = &app{
		cfg:     cfg,
		session: session.New(cfg.ConfigFile),
		gs:      gs,
		merger: merge.New(merge.Dependencies{
			Backend:  pdfdoc.NewPdfcpu(cfg.PDF.Validation),
			Repairer: gs,
			Detector: filetype.New(),
			Inputs:   inputs.Options{HTTPClient: &http.Client{Timeout: cfg.Input.HTTPTimeout}},
		}),
	}
	log.Debug().Str("cmd", cmd.Name()).Str("config", cur.session.ConfigPath()).Msg("pdfsm ready")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
