package web

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/gridwatch/solarcast/internal/store"
)

// Views are hand-maintained templ components. Dynamic text goes through
// templ.EscapeString before it reaches the writer.

const pageStyle = `body{font-family:sans-serif;margin:0;background:#f5f6f8;color:#222}` +
	`header{background:#1d3557;color:#fff;padding:0.8rem 1.5rem}` +
	`header a{color:#fff;text-decoration:none}` +
	`main{max-width:70rem;margin:1.5rem auto;padding:0 1.5rem}` +
	`table{border-collapse:collapse;width:100%;background:#fff}` +
	`th,td{border:1px solid #d0d4da;padding:0.4rem 0.6rem;text-align:left}` +
	`th{background:#e9ecf1}` +
	`form.inline{display:inline}` +
	`label{display:block;margin-top:0.8rem;font-weight:bold}` +
	`input{padding:0.3rem;width:20rem;max-width:100%}` +
	`.error{color:#b00020}` +
	`.actions{margin:1rem 0}` +
	`button,a.button{background:#1d3557;color:#fff;border:none;padding:0.4rem 0.9rem;` +
	`cursor:pointer;text-decoration:none;display:inline-block;margin-right:0.4rem}` +
	`img.chart{max-width:100%;background:#fff;border:1px solid #d0d4da}`

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// layout wraps a body component in the shared page chrome.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"/>`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"/>`+
			`<title>`+templ.EscapeString(title)+` | Solarcast</title>`+
			`<style>`+pageStyle+`</style></head><body>`+
			`<header><h1><a href="/">Solarcast</a></h1></header><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return writeString(w, `</main></body></html>`)
	})
}

// indexPage lists all registered locations.
func indexPage(locations []store.Location) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := writeString(w, `<h2>Locations</h2>`+
			`<p class="actions"><a class="button" href="/location/new">Add location</a></p>`); err != nil {
			return err
		}
		if len(locations) == 0 {
			return writeString(w, `<p>No locations registered yet.</p>`)
		}
		if err := writeString(w, `<table><tr><th>Name</th><th>Latitude</th><th>Longitude</th>`+
			`<th>Grid substation</th><th>Feeder</th><th>Actions</th></tr>`); err != nil {
			return err
		}
		for _, loc := range locations {
			id := strconv.FormatUint(uint64(loc.ID), 10)
			if err := writeString(w, `<tr><td><a href="/location/`+id+`">`+templ.EscapeString(loc.Name)+`</a></td>`+
				`<td>`+formatCoord(loc.Latitude)+`</td>`+
				`<td>`+formatCoord(loc.Longitude)+`</td>`+
				`<td>`+templ.EscapeString(loc.GridSubstation)+`</td>`+
				`<td>`+templ.EscapeString(loc.FeederNumber)+`</td>`+
				`<td><a class="button" href="/location/`+id+`">Forecast</a>`+
				`<a class="button" href="/location/`+id+`/edit">Edit</a>`+
				`<form class="inline" method="post" action="/location/`+id+`/delete">`+
				`<button type="submit">Delete</button></form></td></tr>`); err != nil {
				return err
			}
		}
		return writeString(w, `</table>`)
	})
	return layout("Locations", body)
}

// locationFormPage renders the create/edit form with any field errors.
func locationFormPage(title, action string, form LocationForm, fieldErrors map[string]string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := writeString(w, `<h2>`+templ.EscapeString(title)+`</h2>`+
			`<form method="post" action="`+templ.EscapeString(action)+`">`); err != nil {
			return err
		}

		fields := []struct {
			label string
			name  string
			key   string
			value string
		}{
			{"Name", "name", "Name", form.Name},
			{"Latitude", "latitude", "Latitude", form.Latitude},
			{"Longitude", "longitude", "Longitude", form.Longitude},
			{"API key override (optional)", "api_key", "APIKey", form.APIKey},
			{"Grid substation (optional)", "grid_substation", "GridSubstation", form.GridSubstation},
			{"Feeder number (optional)", "feeder_number", "FeederNumber", form.FeederNumber},
		}
		for _, f := range fields {
			if err := writeString(w, `<label for="`+f.name+`">`+templ.EscapeString(f.label)+`</label>`+
				`<input id="`+f.name+`" name="`+f.name+`" value="`+templ.EscapeString(f.value)+`"/>`); err != nil {
				return err
			}
			if msg, ok := fieldErrors[f.key]; ok {
				if err := writeString(w, `<span class="error">`+templ.EscapeString(f.label)+` `+templ.EscapeString(msg)+`</span>`); err != nil {
					return err
				}
			}
		}

		return writeString(w, `<p class="actions"><button type="submit">Save</button>`+
			`<a class="button" href="/">Cancel</a></p></form>`)
	})
	return layout(title, body)
}

// locationPage renders the refreshed snapshot for a location: the inline
// base64 PNG chart plus a table of the ordered points.
func locationPage(loc store.Location, chartB64 string, points []store.ForecastPoint) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := writeString(w, `<h2>`+templ.EscapeString(loc.Name)+`</h2>`+
			`<p>Lat `+formatCoord(loc.Latitude)+`, Long `+formatCoord(loc.Longitude)+`</p>`); err != nil {
			return err
		}

		if len(points) == 0 {
			if err := writeString(w, `<p>The forecast feed returned no entries for this location.</p>`); err != nil {
				return err
			}
		} else {
			// chartB64 is base64 PNG data and needs no escaping.
			if err := writeString(w, `<img class="chart" alt="Solar irradiation forecast for `+
				templ.EscapeString(loc.Name)+`" src="data:image/png;base64,`+chartB64+`"/>`); err != nil {
				return err
			}
			if err := writeString(w, `<table><tr><th>Period end</th><th>GHI</th><th>GHI10</th><th>GHI90</th>`+
				`<th>DNI</th><th>DHI</th><th>Air temp</th><th>Cloud opacity</th></tr>`); err != nil {
				return err
			}
			for _, p := range points {
				if err := writeString(w, `<tr><td>`+p.Timestamp.UTC().Format(time.RFC3339)+`</td>`+
					`<td>`+formatValue(p.GHI)+`</td>`+
					`<td>`+formatValue(p.GHI10)+`</td>`+
					`<td>`+formatValue(p.GHI90)+`</td>`+
					`<td>`+formatValue(p.DNI)+`</td>`+
					`<td>`+formatValue(p.DHI)+`</td>`+
					`<td>`+formatValue(p.AirTemp)+`</td>`+
					`<td>`+formatValue(p.CloudOpacity)+`</td></tr>`); err != nil {
					return err
				}
			}
			if err := writeString(w, `</table>`); err != nil {
				return err
			}
		}

		id := strconv.FormatUint(uint64(loc.ID), 10)
		return writeString(w, `<p class="actions"><a class="button" href="/location/`+id+`">Refresh</a>`+
			`<a class="button" href="/location/`+id+`/edit">Edit</a>`+
			`<a class="button" href="/">Back</a></p>`)
	})
	return layout(loc.Name, body)
}

// errorPage reports a failed operation without discarding previously stored
// data; the message explains the failure, nothing partial is rendered.
func errorPage(message string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return writeString(w, `<h2>Something went wrong</h2>`+
			`<p class="error">`+templ.EscapeString(message)+`</p>`+
			`<p class="actions"><a class="button" href="/">Back to locations</a></p>`)
	})
	return layout("Error", body)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
