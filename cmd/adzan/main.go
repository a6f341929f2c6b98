package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/salam-labs/adzan/internal/config"
)

func main() {
	def := config.Default()
	if cfg, err := config.Load(""); err == nil {
		def = cfg
	}

	var (
		baseURL string
		timeout time.Duration
		rawJSON bool
	)
	newAPI := func() *apiClient { return newAPIClient(baseURL, timeout) }

	rootCmd := &cobra.Command{
		Use:           "adzan",
		Short:         "Client en ligne de commande pour adzan-server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "server", def.Client.BaseURL, "URL du serveur (ex: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout HTTP")
	rootCmd.PersistentFlags().BoolVar(&rawJSON, "json", false, "Affiche la réponse JSON brute")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Vérifie que le serveur répond",
			RunE: func(cmd *cobra.Command, args []string) error {
				return newAPI().printJSON(cmd.OutOrStdout(), "GET", "/api/v1/health")
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Version du serveur",
			RunE: func(cmd *cobra.Command, args []string) error {
				return newAPI().printJSON(cmd.OutOrStdout(), "GET", "/api/v1/version")
			},
		},
		&cobra.Command{
			Use:   "today",
			Short: "Horaires du jour",
			RunE: func(cmd *cobra.Command, args []string) error {
				if rawJSON {
					return newAPI().printJSON(cmd.OutOrStdout(), "GET", "/api/v1/prayer/today")
				}
				return newAPI().printToday(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "next",
			Short: "Prochaine prière et compte à rebours",
			RunE: func(cmd *cobra.Command, args []string) error {
				if rawJSON {
					return newAPI().printJSON(cmd.OutOrStdout(), "GET", "/api/v1/prayer/next")
				}
				return newAPI().printNext(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Force le rechargement de l'horaire",
			RunE: func(cmd *cobra.Command, args []string) error {
				return newAPI().printJSON(cmd.OutOrStdout(), "POST", "/api/v1/prayer/refresh")
			},
		},
		qiblaCmd(newAPI),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
}

func qiblaCmd(newAPI func() *apiClient) *cobra.Command {
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "qibla",
		Short: "Direction de la qibla (localisation enregistrée par défaut)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/qibla"
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				path = fmt.Sprintf("%s?lat=%g&lng=%g", path, lat, lng)
			}
			return newAPI().printJSON(cmd.OutOrStdout(), "GET", path)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	return cmd
}
