package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/smtnkc/ensembl-scraper/internal/cli"
)

func main() {
	command := NewSlicerCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewSlicerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slicer [flags] [options]",
		Short: "slicer drives the Ensembl Data Slicer to download region subsets of remote BAM/VCF files.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdRun())
	cmd.AddCommand(cli.NewCmdBatch())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
