package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"stocksage/internal/domain"
)

// Renderer writes one HTML dashboard per symbol plus an index page linking
// them. All report styles share a single template.
type Renderer struct {
	outputDir string

	mu     sync.Mutex
	latest map[string]indexEntry
}

type indexEntry struct {
	Symbol         string
	Company        string
	Price          float64
	Recommendation domain.Recommendation
	GeneratedAt    time.Time
	File           string
}

func NewRenderer(outputDir string) *Renderer {
	if outputDir == "" {
		outputDir = "reports"
	}
	return &Renderer{
		outputDir: outputDir,
		latest:    make(map[string]indexEntry),
	}
}

// Render writes the symbol's report page and refreshes the index. Returns
// the path of the report file.
func (r *Renderer) Render(report *domain.AnalystReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("nil report")
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	file := strings.ToLower(report.Symbol) + ".html"
	path := filepath.Join(r.outputDir, file)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := reportTmpl.Execute(out, newReportView(report)); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	r.mu.Lock()
	r.latest[report.Symbol] = indexEntry{
		Symbol:         report.Symbol,
		Company:        domain.CompanyName(report.Symbol),
		Price:          report.CurrentPrice,
		Recommendation: report.Recommendation,
		GeneratedAt:    report.GeneratedAt,
		File:           file,
	}
	entries := make([]indexEntry, 0, len(r.latest))
	for _, e := range r.latest {
		entries = append(entries, e)
	}
	r.mu.Unlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })

	if err := r.writeIndex(entries); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Renderer) writeIndex(entries []indexEntry) error {
	out, err := os.Create(filepath.Join(r.outputDir, "index.html"))
	if err != nil {
		return err
	}
	defer out.Close()

	return indexTmpl.Execute(out, struct {
		Entries     []indexEntry
		GeneratedAt time.Time
	}{entries, time.Now().UTC()})
}

// reportView flattens the report for the template.
type reportView struct {
	Symbol          string
	Company         string
	GeneratedAt     time.Time
	Price           string
	Recommendation  domain.Recommendation
	RecClass        string
	DirectionProbUp string
	HasForecast     bool
	Failed          bool
	Confidence      string
	ModelsUsed      string
	NextDay         domain.PointSummary
	DayN            domain.PointSummary
	HorizonDays     int
	Models          []modelView
	Volatility      domain.VolatilityMetrics
	Sections        []section
}

type modelView struct {
	Name   string
	Status domain.ModelStatus
	Reason string
	Final  string
}

type section struct {
	Title string
	Body  string
}

func newReportView(report *domain.AnalystReport) reportView {
	v := reportView{
		Symbol:          report.Symbol,
		Company:         domain.CompanyName(report.Symbol),
		GeneratedAt:     report.GeneratedAt,
		Price:           fmt.Sprintf("$%.2f", report.CurrentPrice),
		Recommendation:  report.Recommendation,
		RecClass:        strings.ToLower(string(report.Recommendation)),
		DirectionProbUp: fmt.Sprintf("%.0f%%", report.DirectionProbUp*100),
		Sections: []section{
			{"News Analysis", report.NewsAnalysis},
			{"Statistical Analysis", report.StatisticalAnalysis},
			{"Fundamental Analysis", report.FinancialAnalysis},
			{"Investment Synthesis", report.Synthesis},
		},
	}
	f := report.Forecast
	if f == nil {
		return v
	}
	v.HasForecast = true
	v.Failed = f.Summary.Failed
	v.Confidence = f.Summary.Confidence
	v.ModelsUsed = strings.Join(f.Summary.ModelsUsed, ", ")
	v.NextDay = f.Summary.NextDay
	v.DayN = f.Summary.DayN
	v.HorizonDays = f.HorizonDays
	v.Volatility = f.Volatility
	for _, m := range f.Models {
		mv := modelView{Name: m.Model, Status: m.Status, Reason: m.Reason}
		if m.Status == domain.StatusOK && len(m.Forecast.Values) > 0 {
			mv.Final = fmt.Sprintf("$%.2f", m.Forecast.Values[len(m.Forecast.Values)-1])
		}
		v.Models = append(v.Models, mv)
	}
	return v
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Symbol}} - Analyst Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; background: #f4f5f7; color: #1d2330; }
.wrap { max-width: 960px; margin: 0 auto; padding: 24px; }
header { display: flex; justify-content: space-between; align-items: baseline; }
h1 { margin: 0; font-size: 1.8em; }
.muted { color: #6b7280; font-size: 0.9em; }
.badge { display: inline-block; padding: 4px 14px; border-radius: 999px; color: #fff; font-weight: 600; }
.badge.buy { background: #16a34a; }
.badge.hold { background: #d97706; }
.badge.sell { background: #dc2626; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 12px; margin: 20px 0; }
.card { background: #fff; border-radius: 10px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.card .label { color: #6b7280; font-size: 0.8em; text-transform: uppercase; letter-spacing: 0.05em; }
.card .value { font-size: 1.3em; font-weight: 600; margin-top: 4px; }
table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 10px; overflow: hidden; }
th, td { text-align: left; padding: 10px 14px; border-bottom: 1px solid #e5e7eb; }
th { background: #f9fafb; font-size: 0.85em; text-transform: uppercase; color: #6b7280; }
.section { background: #fff; border-radius: 10px; padding: 18px 22px; margin: 16px 0; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.section pre { white-space: pre-wrap; font-family: inherit; margin: 0; line-height: 1.5; }
.warn { background: #fef3c7; border-radius: 8px; padding: 10px 14px; margin: 12px 0; }
footer { margin: 24px 0; color: #6b7280; font-size: 0.8em; }
</style>
</head>
<body>
<div class="wrap">
<header>
  <div>
    <h1>{{.Symbol}} <span class="muted">{{.Company}}</span></h1>
    <div class="muted">Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</div>
  </div>
  <span class="badge {{.RecClass}}">{{.Recommendation}}</span>
</header>

<div class="cards">
  <div class="card"><div class="label">Current Price</div><div class="value">{{.Price}}</div></div>
{{if .HasForecast}}
  <div class="card"><div class="label">Next Day</div><div class="value">{{printf "$%.2f" .NextDay.Prediction}} ({{.NextDay.ReturnLabel}})</div></div>
  <div class="card"><div class="label">Day {{.HorizonDays}}</div><div class="value">{{printf "$%.2f" .DayN.Prediction}} ({{.DayN.ReturnLabel}})</div></div>
  <div class="card"><div class="label">Confidence</div><div class="value">{{.Confidence}}</div></div>
{{end}}
  <div class="card"><div class="label">P(up)</div><div class="value">{{.DirectionProbUp}}</div></div>
</div>

{{if .HasForecast}}
{{if .Failed}}<div class="warn">All forecasting models failed for this run; predictions shown fall back to the current price.</div>{{end}}
<div class="section">
  <h2>Forecast</h2>
  <p class="muted">Models used: {{if .ModelsUsed}}{{.ModelsUsed}}{{else}}none{{end}} ·
     Expected range next day: {{.NextDay.RangeLabel}} ·
     day {{.HorizonDays}}: {{.DayN.RangeLabel}}</p>
  <table>
    <tr><th>Model</th><th>Status</th><th>Day {{.HorizonDays}} Forecast</th><th>Notes</th></tr>
    {{range .Models}}
    <tr><td>{{.Name}}</td><td>{{.Status}}</td><td>{{if .Final}}{{.Final}}{{else}}&middot;{{end}}</td><td>{{.Reason}}</td></tr>
    {{end}}
  </table>
  <p class="muted">Volatility: {{printf "%.2f" .Volatility.DailyPct}}% daily ·
     {{printf "%.2f" .Volatility.AnnualizedPct}}% annualized ·
     {{printf "%.2f" .Volatility.ThirtyDayPct}}% trailing 30d</p>
</div>
{{end}}

{{range .Sections}}
<div class="section">
  <h2>{{.Title}}</h2>
  <pre>{{.Body}}</pre>
</div>
{{end}}

<footer>
This report was generated automatically for educational purposes and is not financial advice.
</footer>
</div>
</body>
</html>
`))

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Stock Analysis Reports</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; background: #f4f5f7; color: #1d2330; }
.wrap { max-width: 720px; margin: 0 auto; padding: 24px; }
table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 10px; overflow: hidden; }
th, td { text-align: left; padding: 10px 14px; border-bottom: 1px solid #e5e7eb; }
th { background: #f9fafb; font-size: 0.85em; text-transform: uppercase; color: #6b7280; }
a { color: #2563eb; text-decoration: none; }
.muted { color: #6b7280; font-size: 0.85em; }
</style>
</head>
<body>
<div class="wrap">
<h1>Stock Analysis Reports</h1>
<table>
  <tr><th>Symbol</th><th>Company</th><th>Price</th><th>Recommendation</th><th>Generated</th></tr>
  {{range .Entries}}
  <tr>
    <td><a href="{{.File}}">{{.Symbol}}</a></td>
    <td>{{.Company}}</td>
    <td>{{printf "$%.2f" .Price}}</td>
    <td>{{.Recommendation}}</td>
    <td class="muted">{{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</td>
  </tr>
  {{end}}
</table>
<p class="muted">Updated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
</div>
</body>
</html>
`))
