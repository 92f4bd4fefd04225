package ui

import (
	"fmt"
	"strings"

	"mr-games/games"
)

// CardState carries the per-card flags a renderer needs.
type CardState struct {
	Selected      bool
	Favorite      bool
	Acknowledging bool
	FallbackCover string
}

// CardRenderer renders one game as a single row. BrowseCard and AdminCard are
// the two variants; views pick one by the capability they offer.
type CardRenderer func(g games.Game, st CardState) string

// BrowseCard is the read-only catalog card with favorite and download actions.
func BrowseCard(g games.Game, st CardState) string {
	heart := "♡"
	if st.Favorite {
		heart = HeartStyle.Render("♥")
	}

	action := "[⬇ Скачать]"
	if st.Acknowledging {
		action = OKStyle.Render("[✓ Готово!]")
	}

	title := Pad(Truncate(g.Title, 24), 24)
	meta := fmt.Sprintf("%s • %d • %s", g.Genre, g.Year, g.Size)

	parts := []string{
		heart,
		title,
		StarStyle.Render(fmt.Sprintf("★ %.1f", g.Rating)),
		MutedStyle.Render(Pad(Truncate(meta, 30), 30)),
		MutedStyle.Render("⬇ " + Pad(g.Downloads, 6)),
		action,
	}
	if badge := Badge(g.Tag); badge != "" {
		parts = append(parts, badge)
	}
	return renderRow(strings.Join(parts, "  "), st.Selected)
}

// AdminCard is the management card: identity, cover reference and a delete hint.
func AdminCard(g games.Game, st CardState) string {
	newMark := " "
	if g.IsNew {
		newMark = CyanStyle.Render("N")
	}
	parts := []string{
		MutedStyle.Render(fmt.Sprintf("#%-4d", g.ID)),
		newMark,
		Pad(Truncate(g.Title, 24), 24),
		Pad(Truncate(string(g.Genre), 10), 10),
		fmt.Sprintf("%d", g.Year),
		MutedStyle.Render(Truncate(g.Cover(st.FallbackCover), 40)),
		ErrorStyle.Render("[x удалить]"),
	}
	return renderRow(strings.Join(parts, "  "), st.Selected)
}

func renderRow(row string, selected bool) string {
	cursor := "  "
	if selected {
		cursor = AccentStyle.Render("▸ ")
		return cursor + selectedRowStyle.Render(row)
	}
	return cursor + rowStyle.Render(row)
}

// RenderList renders every game with the given renderer, one per line.
func RenderList(list []games.Game, render CardRenderer, state func(index int, g games.Game) CardState) string {
	var b strings.Builder
	for i, g := range list {
		b.WriteString(render(g, state(i, g)))
		b.WriteString("\n")
	}
	return b.String()
}

// Detail renders the single-game pane.
func Detail(g games.Game, fallbackCover string) string {
	var b strings.Builder
	b.WriteString(AccentStyle.Render(g.Title))
	if badge := Badge(g.Tag); badge != "" {
		b.WriteString(" " + badge)
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s • %d • %s • ⬇ %s", g.Genre, g.Year, g.Size, g.Downloads)))
	b.WriteString("\n")
	b.WriteString(StarStyle.Render(fmt.Sprintf("★ %.1f", g.Rating)))
	b.WriteString("\n")
	if g.Description != "" {
		b.WriteString(g.Description + "\n")
	}
	b.WriteString(MutedStyle.Render("Обложка: " + g.Cover(fallbackCover)))
	b.WriteString("\n")
	return b.String()
}
