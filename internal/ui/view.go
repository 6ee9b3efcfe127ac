package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tengrikut/galeri/internal/catalog"
	"github.com/tengrikut/galeri/internal/search"
	"github.com/tengrikut/galeri/internal/state"
)

// renderMain renders the full browser screen.
func (m Model) renderMain() string {
	styles := m.theme.Styles()
	s := m.snapshot

	top := []string{m.renderHeader(styles), m.renderSearchBar(styles), m.renderStatus(styles)}

	var bottom []string
	if s.ShowPagination() {
		bottom = append(bottom, m.renderPagination(styles))
	}
	bottom = append(bottom, m.renderDetail(styles))
	bottom = append(bottom, styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	if panel := m.renderLogPanel(); panel != "" {
		bottom = append(bottom, panel)
	}

	used := len(top)
	for _, b := range bottom {
		used += lipgloss.Height(b)
	}
	available := max(1, m.height-used)

	var middle []string
	if s.ShowTables() {
		tables := m.renderTables()
		if tables != "" && available-lipgloss.Height(tables) >= 5 {
			middle = append(middle, tables)
			available -= lipgloss.Height(tables)
		}
	}
	middle = append(middle, m.renderItems(styles, available))

	return strings.Join(append(append(top, middle...), bottom...), "\n")
}

func (m Model) renderHeader(styles Styles) string {
	s := m.snapshot
	parts := []string{styles.Logo.Render("galeri"), styles.AccentText.Render(m.location)}

	if s.MetadataLoaded() {
		parts = append(parts,
			styles.MutedText.Render("Page")+" "+styles.Text.Render(fmt.Sprintf("%d/%d", s.Page, s.TotalPages())),
			styles.MutedText.Render("Items")+" "+styles.Text.Render(fmt.Sprintf("%d", s.TotalItems())),
		)
	}
	parts = append(parts, m.indexBadge(styles))
	if s.Loading() {
		parts = append(parts, styles.WarningText.Render("loading..."))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) indexBadge(styles Styles) string {
	switch m.snapshot.IndexState {
	case search.StateReady:
		return styles.SuccessText.Render("● search")
	case search.StateLoading:
		return styles.WarningText.Render("● search")
	case search.StateFailed:
		return styles.DangerText.Render("● search")
	default:
		return styles.FaintText.Render("○ search")
	}
}

func (m Model) renderSearchBar(styles Styles) string {
	if m.editing {
		return m.input.View()
	}
	if q := m.snapshot.Query; q != "" {
		line := styles.MutedText.Render("/ ") + styles.Text.Render(q)
		if m.snapshot.Searching {
			line += "  " + styles.WarningText.Render("searching...")
		}
		return line
	}
	return styles.FaintText.Render("/ Ara...")
}

func (m Model) renderStatus(styles Styles) string {
	s := m.snapshot
	switch {
	case s.ErrorMessage() != "":
		return styles.DangerText.Render(s.ErrorMessage())
	case s.NoResults():
		return styles.WarningText.Render(fmt.Sprintf("No results for %q on this page.", s.Query))
	case s.MetadataLoaded() && !s.PageInRange():
		return styles.WarningText.Render("No data for this page.")
	case s.Loading():
		return styles.FaintText.Render("Loading...")
	default:
		return ""
	}
}

func (m Model) renderTables() string {
	c := m.snapshot.Cizelge
	if c == nil {
		return ""
	}
	var out []string
	if t := renderTable("Etiketler", c.Tags, tagColumns, m.width, m.theme); t != "" {
		out = append(out, t)
	}
	if t := renderTable("Son Güncellenenler", c.Updated, updatedColumns, m.width, m.theme); t != "" {
		out = append(out, t)
	}
	return strings.Join(out, "\n")
}

// renderItems renders at most height rows of the display list, scrolled so
// the selection is visible.
func (m Model) renderItems(styles Styles, height int) string {
	items := m.snapshot.DisplayItems()
	if len(items) == 0 {
		return strings.Repeat("\n", max(0, height-1))
	}
	sel := m.clampedSelection()
	offset := 0
	if sel >= height {
		offset = sel - height + 1
	}
	end := min(len(items), offset+height)

	lines := make([]string, 0, height)
	for i := offset; i < end; i++ {
		line := itemLine(items[i], m.width-2)
		if i == sel {
			lines = append(lines, styles.Selected.Width(m.width).Render(line))
		} else {
			lines = append(lines, styles.Text.Render(line))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func itemLine(item catalog.GalleryItem, width int) string {
	marker := " "
	if item.Pinned {
		marker = "★"
	}
	text := item.AltText
	if text == "" {
		text = item.ID
	}
	line := marker + " " + text
	if len(item.Tags) > 0 {
		line += "  #" + strings.Join(item.Tags, " #")
	}
	return truncate(line, width)
}

func (m Model) renderPagination(styles Styles) string {
	links := PaginationLinks(m.snapshot.Page, m.snapshot.TotalPages())
	parts := make([]string, 0, len(links))
	for _, l := range links {
		switch {
		case l.Current:
			parts = append(parts, styles.Current.Render(" "+l.Label()+" "))
		case l.Disabled, l.Kind == LinkGap:
			parts = append(parts, styles.FaintText.Render(l.Label()))
		default:
			parts = append(parts, styles.AccentText.Render(l.Label()))
		}
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(parts, " "))
}

func (m Model) renderDetail(styles Styles) string {
	item, ok := m.selectedItem()
	if !ok {
		return ""
	}
	half := max(10, (m.width-4)/2)
	return styles.AccentText.Render(truncate(item.Href, half)) + "  " +
		styles.FaintText.Render(truncate(item.ImageSource, half))
}

// snapshotSummary is a one-line description used in logs.
func snapshotSummary(s state.Snapshot) string {
	return fmt.Sprintf("page=%d query=%q items=%d", s.Page, s.Query, len(s.DisplayItems()))
}
