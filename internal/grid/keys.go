package grid

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the grid's key bindings.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Left         key.Binding
	Right        key.Binding
	Sort         key.Binding
	MultiSort    key.Binding
	Narrow       key.Binding
	Widen        key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	FirstPage    key.Binding
	LastPage     key.Binding
	LargerPages  key.Binding
	SmallerPages key.Binding
	Search       key.Binding
	Columns      key.Binding
	Toggle       key.Binding
	Refresh      key.Binding
	Back         key.Binding
	Forward      key.Binding
	Help         key.Binding
	Close        key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           newBinding([]string{"up", "k"}, "row up", "↑/k"),
		Down:         newBinding([]string{"down", "j"}, "row down", "↓/j"),
		PageUp:       newBinding([]string{"pgup", "ctrl+u"}, "scroll up", "pgup"),
		PageDown:     newBinding([]string{"pgdown", "ctrl+d"}, "scroll down", "pgdn"),
		Left:         newBinding([]string{"left", "h"}, "prev column", "←/h"),
		Right:        newBinding([]string{"right", "l"}, "next column", "→/l"),
		Sort:         newBinding([]string{"s"}, "sort column", "s"),
		MultiSort:    newBinding([]string{"S"}, "add to sort", "S"),
		Narrow:       newBinding([]string{"<"}, "narrow column", "<"),
		Widen:        newBinding([]string{">"}, "widen column", ">"),
		NextPage:     newBinding([]string{"n"}, "next page", "n"),
		PrevPage:     newBinding([]string{"p"}, "prev page", "p"),
		FirstPage:    newBinding([]string{"g"}, "first page", "g"),
		LastPage:     newBinding([]string{"G"}, "last page", "G"),
		LargerPages:  newBinding([]string{"+", "="}, "larger pages", "+"),
		SmallerPages: newBinding([]string{"-"}, "smaller pages", "-"),
		Search:       newBinding([]string{"/"}, "search", "/"),
		Columns:      newBinding([]string{"c"}, "columns", "c"),
		Toggle:       newBinding([]string{" ", "enter"}, "toggle", "space"),
		Refresh:      newBinding([]string{"r"}, "refresh", "r"),
		Back:         newBinding([]string{"alt+left"}, "back", "alt+←"),
		Forward:      newBinding([]string{"alt+right"}, "forward", "alt+→"),
		Help:         newBinding([]string{"?"}, "help", "?"),
		Close:        newBinding([]string{"esc"}, "close", "esc"),
		Quit:         newBinding([]string{"q", "ctrl+c"}, "quit", "q"),
	}
}

func newBinding(keys []string, help, display string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(display, help),
	)
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Sort, k.NextPage, k.PrevPage, k.Columns, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Left, k.Right},
		{k.Sort, k.MultiSort, k.Narrow, k.Widen, k.Search, k.Columns},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.LargerPages, k.SmallerPages},
		{k.Refresh, k.Back, k.Forward, k.Help, k.Quit},
	}
}
