package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/provider"
)

func geocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode NAME",
		Short: "Resolve a city name to coordinates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			geocoder := provider.NewGeocoder(cfg.Weather.Geocoding, provider.OptionsFromConfig(cfg.Weather, tele))

			coords, err := geocoder.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\t%.4f\n", coords.Name, coords.Lat, coords.Lon)
			return nil
		},
	}
}
