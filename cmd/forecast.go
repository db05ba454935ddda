package cmd

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-compare/internal/aggregator"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/render"
	"github.com/vzahanych/weather-compare/internal/weather"
)

type forecastFlags struct {
	city      string
	lat       float64
	lon       float64
	name      string
	providers []string
	days      int
	asJSON    bool
}

func forecastCmd() *cobra.Command {
	var f forecastFlags

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print forecasts from several providers side by side",
		Example: `  weather forecast --city Amman
  weather forecast --lat 31.95 --lon 35.93 --providers open-meteo,weather-api --days 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.city, "city", "", "city name to geocode")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "longitude")
	cmd.Flags().StringVar(&f.name, "name", "", "label for the coordinates")
	cmd.Flags().StringSliceVar(&f.providers, "providers", nil, "providers to query (default: all enabled)")
	cmd.Flags().IntVar(&f.days, "days", 5, "number of daily rows to print")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the normalized result as JSON")
	cmd.MarkFlagsMutuallyExclusive("city", "lat")
	cmd.MarkFlagsMutuallyExclusive("city", "lon")
	cmd.MarkFlagsRequiredTogether("lat", "lon")

	return cmd
}

func runForecast(cmd *cobra.Command, f forecastFlags) error {
	cfg := config.GetConfig()
	ctx := cmd.Context()

	agg, err := aggregator.NewFromConfig(cfg.Weather, log.Logger, tele)
	if err != nil {
		return err
	}

	var coords weather.Coordinates
	switch {
	case f.city != "":
		geocoder := provider.NewGeocoder(cfg.Weather.Geocoding, provider.OptionsFromConfig(cfg.Weather, tele))
		coords, err = geocoder.Search(ctx, f.city)
		if errors.Is(err, provider.ErrCityNotFound) {
			return fmt.Errorf("no city matches %q", f.city)
		}
		if err != nil {
			return err
		}
	case cmd.Flags().Changed("lat"):
		coords, err = weather.NewCoordinates(f.lat, f.lon, strings.TrimSpace(f.name))
		if err != nil {
			return err
		}
	default:
		return errors.New("either --city or --lat and --lon is required")
	}

	session := aggregator.NewSession(agg)
	result, err := session.Load(ctx, coords, f.providers)
	if err != nil {
		return err
	}

	if f.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return render.Compare(cmd.OutOrStdout(), result, f.days)
}
