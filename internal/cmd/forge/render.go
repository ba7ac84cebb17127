package forge

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/app"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// printer groups thousands in coin amounts.
func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderHeader(true).
		BorderRow(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
}

func renderLoot(w io.Writer, resp app.LootResponse) error {
	p := printer()
	rows := make([][]string, 0, len(resp.Loot.Items))
	for _, item := range resp.Loot.Items {
		rows = append(rows, []string{item.ID, item.Name, strconv.Itoa(item.Quantity)})
	}

	lines := []string{
		titleStyle.Render(p.Sprintf("Currency: %d gp", resp.Loot.Currency)),
	}
	if len(rows) == 0 {
		lines = append(lines, dimStyle.Render("No items."))
	} else {
		lines = append(lines, newTable("Item", "Name", "Qty").Rows(rows...).Render())
	}
	lines = append(lines, dimStyle.Render(footer(resp.Pack, resp.Seed, resp.GenerationID)))
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

func renderStock(w io.Writer, resp app.StockResponse) error {
	p := printer()
	rows := make([][]string, 0, len(resp.Stock.Rows))
	for _, row := range resp.Stock.Rows {
		curated := ""
		if row.Curated {
			curated = "*"
		}
		rows = append(rows, []string{
			row.ID,
			row.Name,
			string(row.Rarity),
			p.Sprintf("%.0f", row.Value),
			strconv.Itoa(row.Quantity),
			curated,
		})
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("Merchant: %s", resp.Merchant)),
	}
	if len(rows) == 0 {
		lines = append(lines, dimStyle.Render("Nothing in stock."))
	} else {
		lines = append(lines, newTable("Item", "Name", "Rarity", "Value", "Qty", "Curated").Rows(rows...).Render())
	}
	lines = append(lines,
		p.Sprintf("Total: %d unit(s), %.0f gp", resp.Stock.TotalQuantity, resp.Stock.TotalValue),
		dimStyle.Render(footer(resp.Pack, resp.Seed, resp.GenerationID)),
	)
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

func renderGeneration(w io.Writer, g app.Generation) error {
	t := newTable("Field", "Value").Rows(
		[]string{"ID", g.ID},
		[]string{"Kind", g.Kind},
		[]string{"Pack", g.Pack},
		[]string{"Merchant", g.Merchant},
		[]string{"Seed", strconv.FormatInt(g.Seed, 10)},
		[]string{"Created", g.CreatedAt.UTC().Format("2006-01-02 15:04:05")},
	)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderHistory(w io.Writer, page app.GenerationPage) error {
	if len(page.Generations) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("No generations."))
		return err
	}
	rows := make([][]string, 0, len(page.Generations))
	for _, g := range page.Generations {
		rows = append(rows, []string{
			g.ID,
			g.Kind,
			g.Pack,
			g.Merchant,
			strconv.FormatInt(g.Seed, 10),
			g.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	lines := []string{newTable("ID", "Kind", "Pack", "Merchant", "Seed", "Created").Rows(rows...).Render()}
	if page.NextPageToken != "" {
		lines = append(lines, dimStyle.Render("next page: -page-token "+page.NextPageToken))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

func footer(pack string, seed int64, generationID string) string {
	text := fmt.Sprintf("pack %s, seed %d", pack, seed)
	if generationID != "" {
		text += ", generation " + generationID
	}
	return text
}
