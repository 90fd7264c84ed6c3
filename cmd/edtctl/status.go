package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cs20/ocr-sub000/internal/config"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "print the configuration a `run` invocation would boot with",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Workers = viper.GetInt("workers")
			cfg.Verbosity = viper.GetInt("verbosity")

			fmt.Println(headerStyle.Render("edtctl configuration"))
			fmt.Printf("workers:    %d\n", cfg.Workers)
			fmt.Printf("max pds:    %d\n", cfg.MaxPDs)
			fmt.Printf("verbosity:  %d\n", cfg.Verbosity)
			fmt.Printf("nanny mode: %v\n", cfg.NannyMode)
			return nil
		},
	}
}
