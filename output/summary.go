package output

import (
	"fmt"
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderSummary 渲染终端摘要：类与关系的数量，以及综合得分最高的 limit 个关系
func RenderSummary(doc Document, limit int) string {
	var b strings.Builder

	relations := doc.TopRelations(0)
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d classes, %d coupled relations", len(doc), len(relations))))
	b.WriteString("\n")

	if len(relations) == 0 {
		b.WriteString(mutedStyle.Render("no coupling between analysed classes"))
		b.WriteString("\n")
		return b.String()
	}
	if limit > 0 && len(relations) > limit {
		relations = relations[:limit]
	}

	rows := make([][]string, 0, len(relations))
	for _, r := range relations {
		rows = append(rows, []string{
			core.SimpleName(r.Class),
			core.SimpleName(r.Related),
			fmt.Sprintf("%.0f", r.BidirectionalNumberOfAttributeInvocations),
			fmt.Sprintf("%.0f", r.BidirectionalNumberOfConstructorInvocations),
			fmt.Sprintf("%.0f", r.BidirectionalNumberOfMethodInvocations),
			fmt.Sprintf("%.0f", r.BidirectionalNumberOfPackageImports),
			fmt.Sprintf("%.3f", r.Score),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("CLASS", "RELATED", "ATTR", "CTOR", "METHOD", "PKG", "SCORE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 6:
				return scoreStyle
			default:
				return cellStyle
			}
		})

	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
