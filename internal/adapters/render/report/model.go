package report

import (
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/krishisense/krishi-cli/internal/domain"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// Report is everything the terminal views render from: the session snapshot,
// the cached predictions (newest first), and the weather context, as exposed
// by the manager.
type Report struct {
	Session     *domain.Session
	Predictions []domain.Prediction
	Weather     *domain.WeatherSnapshot
}

type RenderOptions struct {
	Now time.Time
}

type renderReadyMsg struct{}

type model struct {
	report Report
	opts   RenderOptions
	styles styles
	view   func(Report, RenderOptions, styles) string
	output string
}

func newModel(report Report, opts RenderOptions, view func(Report, RenderOptions, styles) string) model {
	return model{
		report: report,
		opts:   opts,
		styles: newStyles(),
		view:   view,
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.view(m.report, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// RenderStatus renders the signed-in identity plus weather context.
func RenderStatus(report Report, opts RenderOptions) (string, error) {
	return run(newModel(report, opts, renderStatusView))
}

// RenderHistory renders the prediction list.
func RenderHistory(report Report, opts RenderOptions) (string, error) {
	return run(newModel(report, opts, renderHistoryView))
}

func run(m model) (string, error) {
	p := tea.NewProgram(
		m,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
