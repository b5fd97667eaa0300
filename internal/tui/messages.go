package tui

// sectionLoadedMsg carries the rendered content of one section.
type sectionLoadedMsg struct {
	err     error
	content string
	section Section
}
