package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bikeshare-platform/internal/charts"
	"bikeshare-platform/internal/models"
	"bikeshare-platform/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

var printer = message.NewPrinter(language.English)

type seasonTab struct {
	Chart string
	Label string
}

var seasonTabs = []seasonTab{
	{charts.SeasonTotal, "Average riders"},
	{charts.SeasonCasual, "Casual riders"},
	{charts.SeasonRegistered, "Registered riders"},
}

type downloadLink struct {
	Name string
	Href template.URL
}

type formattedTotals struct {
	Days       string
	Casual     string
	Registered string
	Total      string
}

type pageData struct {
	Title       string
	Info        models.DatasetInfo
	RecordCount string
	Range       models.DateRange
	Totals      formattedTotals
	SeasonTabs  []seasonTab
	Charts      []string
	Downloads   []downloadLink
	Query       string
}

// FormatCount renders n with English digit grouping.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Dashboard handles GET / by rendering the HTML dashboard for the range
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rng, _, err := h.parseRange(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	totals := h.dashboard.Totals(ctx, rng)
	info := h.dashboard.Info()

	query := url.Values{}
	query.Set("start_date", rng.Start.String())
	query.Set("end_date", rng.End.String())

	downloads := make([]downloadLink, 0, len(models.Views))
	for _, view := range models.Views {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("format", "csv")
		downloads = append(downloads, downloadLink{
			Name: view,
			Href: template.URL("/api/v1/summary/" + view + "?" + q.Encode()),
		})
	}

	data := pageData{
		Title:       "Bike Sharing Dashboard",
		Info:        info,
		RecordCount: FormatCount(info.RecordCount),
		Range:       rng,
		Totals: formattedTotals{
			Days:       FormatCount(totals.DayCount),
			Casual:     FormatCount(totals.Casual),
			Registered: FormatCount(totals.Registered),
			Total:      FormatCount(totals.TotalUsers),
		},
		SeasonTabs: seasonTabs,
		Charts:     charts.Names,
		Downloads:  downloads,
		Query:      query.Encode(),
	}

	var output bytes.Buffer
	if err := pageTemplate.Execute(&output, data); err != nil {
		h.logger.Error(ctx, "[PAGE_RENDER_ERROR] Failed to render dashboard", logging.Fields{}, err)
		h.sendError(w, r, "template rendering error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	output.WriteTo(w)
}
