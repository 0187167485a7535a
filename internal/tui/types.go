package tui

type stage int

const (
	stageChat stage = iota
	stageSessions
	stageDocs
	stageViewer
	stageHelp
)

type composerMode int

const (
	composerModeQuestion composerMode = iota
	composerModeUpload
)

const heroTagline = "Chat with your documents, citations included."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	snippetPreviewLimit       = 200
)

const (
	composerQuestionPlaceholder = "Ask about your documents…"
	composerUploadPlaceholder   = "Path to the file to upload, Esc to cancel."
)
