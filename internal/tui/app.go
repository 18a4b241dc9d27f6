package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stocksage/internal/domain"
)

// MarketQuerier serves quotes and history for the dashboard.
type MarketQuerier interface {
	GetQuotes(ctx context.Context) ([]*domain.Quote, error)
	GetHistory(ctx context.Context, symbol string, days int) (domain.HistoricalSeries, error)
}

// ForecastQuerier runs the model ensemble for the detail view.
type ForecastQuerier interface {
	Run(ctx context.Context, series domain.HistoricalSeries) domain.ForecastResult
}

// ReportQuerier serves the latest persisted analyst report.
type ReportQuerier interface {
	LatestReport(ctx context.Context, symbol string) (*domain.AnalystReport, error)
}

// Services bundles everything the dashboard reads from.
type Services struct {
	Market     MarketQuerier
	Forecaster ForecastQuerier
	Reports    ReportQuerier
	Username   string
}

type view int

const (
	viewQuotes view = iota
	viewDetail
)

type quotesMsg struct {
	quotes []*domain.Quote
	err    error
}

type detailMsg struct {
	symbol   string
	forecast *domain.ForecastResult
	report   *domain.AnalystReport
	err      error
}

type AppModel struct {
	svc Services

	view    view
	table   table.Model
	detail  viewport.Model
	spinner spinner.Model

	width   int
	height  int
	loading bool
	err     error

	quotes []*domain.Quote
	symbol string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
)

func NewAppModel(svc Services) *AppModel {
	columns := []table.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Company", Width: 22},
		{Title: "Price", Width: 10},
		{Title: "Change", Width: 16},
		{Title: "52w Range", Width: 22},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &AppModel{
		svc:     svc,
		table:   t,
		detail:  viewport.New(80, 20),
		spinner: s,
		loading: true,
	}
}

func (m *AppModel) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	m.table.SetHeight(max(4, height-6))
	m.detail.Width = width
	m.detail.Height = max(4, height-4)
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchQuotes())
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.view == viewDetail {
				m.view = viewQuotes
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			m.view = viewQuotes
			return m, nil
		case "r":
			if m.view == viewQuotes {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.fetchQuotes())
			}
		case "enter":
			if m.view == viewQuotes && len(m.quotes) > 0 {
				row := m.table.SelectedRow()
				if len(row) > 0 {
					m.symbol = row[0]
					m.loading = true
					return m, tea.Batch(m.spinner.Tick, m.fetchDetail(m.symbol))
				}
			}
		}

	case quotesMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.quotes = msg.quotes
			m.table.SetRows(quoteRows(msg.quotes))
		}
		return m, nil

	case detailMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.view = viewDetail
			m.detail.SetContent(renderDetail(msg))
			m.detail.GotoTop()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.view == viewDetail {
		m.detail, cmd = m.detail.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("stocksage"))
	if m.svc.Username != "" {
		b.WriteString(statusStyle.Render("  " + m.svc.Username))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " loading...\n")
	case m.view == viewDetail:
		b.WriteString(m.detail.View())
		b.WriteString("\n" + statusStyle.Render("esc/q: back  up/down: scroll"))
	default:
		if m.err != nil {
			b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n\n")
		}
		b.WriteString(m.table.View())
		b.WriteString("\n" + statusStyle.Render("enter: detail  r: refresh  q: quit"))
	}
	return b.String()
}

func (m *AppModel) fetchQuotes() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		quotes, err := m.svc.Market.GetQuotes(ctx)
		return quotesMsg{quotes: quotes, err: err}
	}
}

func (m *AppModel) fetchDetail(symbol string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		series, err := m.svc.Market.GetHistory(ctx, symbol, 365)
		if err != nil {
			return detailMsg{symbol: symbol, err: err}
		}
		if series.Len() == 0 {
			return detailMsg{symbol: symbol, err: fmt.Errorf("no price history for %s", symbol)}
		}

		msg := detailMsg{symbol: symbol}
		forecast := m.svc.Forecaster.Run(ctx, series)
		msg.forecast = &forecast

		if m.svc.Reports != nil {
			// A missing report is fine, the detail view shows the forecast alone.
			if report, err := m.svc.Reports.LatestReport(ctx, symbol); err == nil {
				msg.report = report
			}
		}
		return msg
	}
}

func quoteRows(quotes []*domain.Quote) []table.Row {
	rows := make([]table.Row, 0, len(quotes))
	for _, q := range quotes {
		change := fmt.Sprintf("%+.2f (%+.2f%%)", q.DayChange, q.DayChangePct)
		if q.DayChange >= 0 {
			change = upStyle.Render(change)
		} else {
			change = downStyle.Render(change)
		}
		rows = append(rows, table.Row{
			q.Symbol,
			q.CompanyName,
			fmt.Sprintf("$%.2f", q.Price),
			change,
			fmt.Sprintf("$%.2f - $%.2f", q.FiftyTwoWkLow, q.FiftyTwoWkHigh),
		})
	}
	return rows
}

func renderDetail(msg detailMsg) string {
	var b strings.Builder

	f := msg.forecast
	b.WriteString(headerStyle.Render(msg.symbol+" forecast") + "\n\n")
	if f.Summary.Failed {
		b.WriteString(errStyle.Render("All forecasting models failed, no prediction available.") + "\n")
	} else {
		s := f.Summary
		fmt.Fprintf(&b, "Current price:  $%.2f\n", s.CurrentPrice)
		fmt.Fprintf(&b, "Next day:       $%.2f (%s)  range %s\n", s.NextDay.Prediction, s.NextDay.ReturnLabel, s.NextDay.RangeLabel)
		fmt.Fprintf(&b, "Day %-2d:         $%.2f (%s)  range %s\n", f.HorizonDays, s.DayN.Prediction, s.DayN.ReturnLabel, s.DayN.RangeLabel)
		fmt.Fprintf(&b, "Models used:    %s\n", strings.Join(s.ModelsUsed, ", "))
		fmt.Fprintf(&b, "Confidence:     %s\n", s.Confidence)
		fmt.Fprintf(&b, "Volatility:     %.2f%% daily, %.2f%% annualized\n",
			f.Volatility.DailyPct, f.Volatility.AnnualizedPct)
	}

	if msg.report != nil {
		r := msg.report
		b.WriteString("\n" + headerStyle.Render("latest analyst report") + "\n\n")
		fmt.Fprintf(&b, "Generated:      %s\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))
		fmt.Fprintf(&b, "Recommendation: %s\n", r.Recommendation)
		fmt.Fprintf(&b, "P(up):          %.0f%%\n\n", r.DirectionProbUp*100)
		b.WriteString(r.Synthesis + "\n")
	} else {
		b.WriteString("\n" + statusStyle.Render("No analyst report yet. POST /api/analyze/"+msg.symbol+" to run one.") + "\n")
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
