package chat

// SendPromptMsg signals that the user submitted the input.
type SendPromptMsg struct {
	Content string
}

// ExportedMsg reports the outcome of writing a transcript file.
type ExportedMsg struct {
	Path string
	Err  error
}

// SharedMsg reports the outcome of copying a transcript to the clipboard.
type SharedMsg struct {
	Err error
}
