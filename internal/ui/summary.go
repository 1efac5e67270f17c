package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"sportsdl/internal/media"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(12)
	liveStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

const descriptionWidth = 72

// RenderSummary renders the metadata and format table of an extraction.
func RenderSummary(info *media.Info) string {
	var b strings.Builder

	title := titleStyle.Render(info.Title)
	if info.IsLive {
		title += " " + liveStyle.Render("LIVE")
	}
	b.WriteString(title + "\n\n")

	if info.Description != "" {
		b.WriteString(indent.String(wordwrap.String(info.Description, descriptionWidth), 2))
		b.WriteString("\n\n")
	}

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render(label), value)
	}
	field("id", info.ID)
	field("display id", info.DisplayID)
	field("extractor", info.Extractor)
	field("uploader", info.Uploader)
	field("date", formatDate(info.UploadDate))
	field("categories", strings.Join(info.Categories, ", "))
	field("thumbnail", info.Thumbnail)
	b.WriteString("\n")

	b.WriteString(FormatTable(info.Formats))
	b.WriteString("\n")
	return b.String()
}

// FormatTable renders formats best first.
func FormatTable(formats []media.Format) string {
	rows := make([][]string, 0, len(formats))
	for i := len(formats) - 1; i >= 0; i-- {
		f := formats[i]
		tbr := ""
		if f.TBR > 0 {
			tbr = fmt.Sprintf("%.0fk", f.TBR)
		}
		rows = append(rows, []string{f.FormatID, string(f.Protocol), resolution(f), tbr})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FORMAT", "PROTOCOL", "RESOLUTION", "BITRATE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		})
	return t.Render()
}

// formatDate turns YYYYMMDD into YYYY-MM-DD.
func formatDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}
