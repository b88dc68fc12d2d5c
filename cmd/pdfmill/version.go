package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdfmill/pdfmill/export"
)

// version is set at build time via ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pdfmill version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pdfmill", version)
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported output formats",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range []export.Format{
			export.TXT, export.DOCX, export.PNG, export.JPG,
			export.HTML, export.Markdown, export.XLSX,
		} {
			fmt.Printf("%-9s %s\n", f, f.Extension())
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(formatsCmd)
}
