package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/vzahanych/weather-compare/internal/aggregator"
	"github.com/vzahanych/weather-compare/internal/weather"
)

const missing = "-"

// Compare writes the providers of r side by side: one column per provider,
// the current conditions first and then up to days daily rows.
func Compare(w io.Writer, r *aggregator.Result, days int) error {
	names := make([]string, 0, len(r.Providers))
	for name := range r.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	title := r.Location.Name
	if title == "" {
		title = r.Location.Key()
	}
	fmt.Fprintf(tw, "%s\t%s\n", title, strings.Join(names, "\t"))

	row := func(label string, cell func(*weather.NormalizedWeather) string) {
		cells := make([]string, len(names))
		for i, name := range names {
			data := r.Providers[name]
			if data == nil {
				cells[i] = missing
				continue
			}
			cells[i] = cell(data)
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, strings.Join(cells, "\t"))
	}

	row("now", func(n *weather.NormalizedWeather) string {
		c := weather.Describe(n.Current.WeatherCode)
		return fmt.Sprintf("%s %s %s", c.Icon, Temperature(n.Current.Temperature), c.Description)
	})
	row("feels like", func(n *weather.NormalizedWeather) string {
		if n.Current.FeelsLike == nil {
			return missing
		}
		return Temperature(*n.Current.FeelsLike)
	})
	row("wind", func(n *weather.NormalizedWeather) string {
		return fmt.Sprintf("%.1f km/h (%.1f m/s)", n.Current.WindSpeed, n.Current.WindSpeedMps)
	})
	row("humidity", func(n *weather.NormalizedWeather) string {
		return fmt.Sprintf("%.0f%%", n.Current.Humidity)
	})
	row("models", func(n *weather.NormalizedWeather) string {
		return Models(n.ModelTemperatures)
	})

	for i := 0; i < days; i++ {
		label := dayLabel(r, names, i)
		if label == "" {
			break
		}
		row(label, func(n *weather.NormalizedWeather) string {
			if i >= len(n.Daily) {
				return missing
			}
			d := n.Daily[i]
			return fmt.Sprintf("%s %s/%s %.1fmm",
				weather.Describe(d.WeatherCode).Icon, Temperature(d.TempMax), Temperature(d.TempMin), d.PrecipitationSum)
		})
	}

	for _, name := range names {
		if msg, ok := r.Errors[name]; ok {
			fmt.Fprintf(tw, "error\t%s: %s\n", name, msg)
		}
	}

	return tw.Flush()
}

// Temperature formats a value rounded to whole degrees.
func Temperature(v float64) string {
	return fmt.Sprintf("%.0f°", v)
}

// Models renders per-model temperatures as "ECMWF 20° GFS 22° ICON -".
func Models(m weather.ModelTemperatures) string {
	part := func(label string, v *float64) string {
		if v == nil {
			return label + " " + missing
		}
		return label + " " + Temperature(*v)
	}
	return strings.Join([]string{
		part("ECMWF", m.ECMWF),
		part("GFS", m.GFS),
		part("ICON", m.ICON),
	}, " ")
}

func dayLabel(r *aggregator.Result, names []string, i int) string {
	for _, name := range names {
		if data := r.Providers[name]; data != nil && i < len(data.Daily) {
			return data.Daily[i].Date
		}
	}
	return ""
}
