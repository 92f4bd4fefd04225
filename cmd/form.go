package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mr-games/catalog"
	"mr-games/ui"
)

const (
	fieldTitle = iota
	fieldSize
	fieldRating
	fieldYear
	fieldDescription
	fieldCover
	fieldCount
)

// draftForm holds the text inputs of the admin create form. Genre, tag and
// the new flag are picked with keys and live only in the engine's draft.
type draftForm struct {
	inputs  []textinput.Model
	focused int
}

func newDraftForm() draftForm {
	fields := []struct {
		prompt      string
		placeholder string
		limit       int
	}{
		{"Название:  ", "Shadow Nexus", 80},
		{"Размер:    ", "45 ГБ", 16},
		{"Рейтинг:   ", "9.2", 4},
		{"Год:       ", "2025", 4},
		{"Описание:  ", "Пара слов об игре", 280},
		{"Обложка:   ", "/путь/к/cover.jpg", 512},
	}

	f := draftForm{inputs: make([]textinput.Model, fieldCount)}
	for i, field := range fields {
		in := textinput.New()
		in.Prompt = field.prompt
		in.Placeholder = field.placeholder
		in.CharLimit = field.limit
		f.inputs[i] = in
	}
	return f
}

// focus moves the focus to field i, wrapping around.
func (f *draftForm) focus(i int) tea.Cmd {
	f.focused = ((i % fieldCount) + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focused].Focus()
}

func (f *draftForm) blur() {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
}

func (f *draftForm) update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f draftForm) coverPath() string {
	return f.inputs[fieldCover].Value()
}

// apply copies the typed text into d.
func (f draftForm) apply(d catalog.Draft) catalog.Draft {
	d.Title = f.inputs[fieldTitle].Value()
	d.Size = f.inputs[fieldSize].Value()
	d.Rating = f.inputs[fieldRating].Value()
	d.Year = f.inputs[fieldYear].Value()
	d.Description = f.inputs[fieldDescription].Value()
	return d
}

// sync pulls the engine's draft back into the inputs. Any difference means
// the draft was reset, so the cover path is cleared too.
func (f *draftForm) sync(d catalog.Draft) {
	want := map[int]string{
		fieldTitle:       d.Title,
		fieldSize:        d.Size,
		fieldRating:      d.Rating,
		fieldYear:        d.Year,
		fieldDescription: d.Description,
	}
	changed := false
	for i, v := range want {
		if f.inputs[i].Value() != v {
			f.inputs[i].SetValue(v)
			changed = true
		}
	}
	if changed && d.Cover == nil {
		f.inputs[fieldCover].Reset()
	}
}

func (f draftForm) view(d catalog.Draft, canSubmit, submitting bool) string {
	var b strings.Builder
	b.WriteString(ui.AccentStyle.Render("➕ Новая игра") + "\n\n")

	for _, in := range f.inputs {
		b.WriteString(in.View() + "\n")
	}

	genre := ui.MutedStyle.Render("не выбран")
	if d.Genre != "" {
		genre = string(d.Genre)
	}
	b.WriteString("Жанр:      " + genre + ui.MutedStyle.Render("  (ctrl+g)") + "\n")

	tag := ui.MutedStyle.Render("без метки")
	if badge := ui.Badge(d.Tag); badge != "" {
		tag = badge
	}
	b.WriteString("Метка:     " + tag + ui.MutedStyle.Render("  (ctrl+t)") + "\n")

	check := "[ ]"
	if d.IsNew {
		check = ui.CyanStyle.Render("[x]")
	}
	b.WriteString("Новинка:   " + check + ui.MutedStyle.Render("  (ctrl+n)") + "\n")

	if d.Cover != nil {
		b.WriteString(ui.OKStyle.Render(fmt.Sprintf("Обложка загружена: %s (%d КБ)", d.Cover.Name, (d.Cover.Size+1023)/1024)) + "\n")
		b.WriteString(ui.MutedStyle.Render(d.Cover.Preview) + "\n")
	}

	b.WriteString("\n")
	switch {
	case submitting:
		b.WriteString(ui.CyanStyle.Render("Сохранение...") + "\n")
	case canSubmit:
		b.WriteString(ui.AccentStyle.Render("[ctrl+s] Добавить игру") + "\n")
	default:
		b.WriteString(ui.MutedStyle.Render("[ctrl+s] Добавить игру (нужны название и жанр)") + "\n")
	}
	return b.String()
}
