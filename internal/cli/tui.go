package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ayeeff/marketmap/pkg/dataset"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// CountryListModel is the bubbletea model for interactive country selection.
type CountryListModel struct {
	Records  []dataset.Record
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewCountryListModel creates a country picker over the dataset rows.
func NewCountryListModel(ds *dataset.Dataset) CountryListModel {
	return CountryListModel{
		Records: ds.Records,
		Height:  15,
	}
}

func (m CountryListModel) Init() tea.Cmd {
	return nil
}

func (m CountryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Records[m.Cursor].Country
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CountryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Country"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Records) {
		end = len(m.Records)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", r.Rank),
			r.Country,
			dataset.FormatMarketCap(r.MarketCap),
			fmt.Sprintf("%.2f%%", r.Share),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Rank", "Country", "Market Cap", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 3 || col == 4 {
				return StyleNumber
			}
			return StyleValue
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

// pickCountry runs the interactive picker and returns the chosen country.
// An empty string means the picker was dismissed without a selection.
func pickCountry(ds *dataset.Dataset) (string, error) {
	if len(ds.Records) == 0 {
		return "", fmt.Errorf("no countries to pick from")
	}

	program := tea.NewProgram(NewCountryListModel(ds))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("country picker: %w", err)
	}

	model, ok := final.(CountryListModel)
	if !ok {
		return "", nil
	}
	return model.Selected, nil
}
