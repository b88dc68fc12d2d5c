// Package main is the entry point for the pdfmill CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd is the base command for the pdfmill CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfmill",
	Short: "Convert PDF files to text, DOCX, images, HTML, Markdown, and XLSX",
	Long: `pdfmill converts PDF documents into editable and viewable formats. It
extracts native text where the source has it, falls back to OCR for
scanned pages, and reconstructs headings, paragraphs, and tables in
the output.

Conversions run as batches with bounded concurrency; a local journal
records every conversion for the history subcommand.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfmill.yaml or ~/.config/pdfmill/config.yaml)")
	rootCmd.PersistentFlags().String("journal", "", "journal database path (default: ~/.config/pdfmill/journal.db)")
	rootCmd.PersistentFlags().Bool("no-journal", false, "disable the conversion journal")

	viper.BindPFlag("journal", rootCmd.PersistentFlags().Lookup("journal"))
	viper.BindPFlag("no-journal", rootCmd.PersistentFlags().Lookup("no-journal"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfmill")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfmill"))
		}
	}

	viper.SetEnvPrefix("PDFMILL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
