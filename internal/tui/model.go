// Package tui is the terminal front-end: chat transcript with citations,
// session palette, document panel with scope selection, uploads with
// indexing-progress polling, and an in-terminal document viewer.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyunsol/docchat/internal/chat"
	"github.com/hyunsol/docchat/internal/docindex"
	"github.com/hyunsol/docchat/internal/guide"
	"github.com/hyunsol/docchat/internal/query"
	"github.com/hyunsol/docchat/internal/ragapi"
)

// asker answers one question; *query.Gateway satisfies it.
type asker interface {
	Ask(ctx context.Context, history []query.HistoryEntry, question string) (query.Turn, error)
}

// docCatalog serves the cached document listing; *docindex.Index satisfies it.
type docCatalog interface {
	Docs(ctx context.Context) ([]ragapi.DocItem, error)
	Refresh(ctx context.Context, force bool) (map[string]docindex.Entry, error)
}

// uploader covers the upload and job endpoints; *ragapi.Client satisfies it.
type uploader interface {
	Upload(ctx context.Context, path string, mode ragapi.UploadMode) (ragapi.UploadResult, error)
	GetJobProgress(ctx context.Context, jobID string) (ragapi.JobProgress, error)
}

type statusReader interface {
	GetStatus(ctx context.Context) ragapi.Status
}

// docFetcher pulls document bytes through the view proxy; *docview.Cache
// satisfies it.
type docFetcher interface {
	Fetch(ctx context.Context, viewURL, docID string) (string, error)
}

// linkBuilder builds proxied links; *ragapi.Client satisfies it.
type linkBuilder interface {
	ViewURL(objectKey, name, origKey string, page *int) string
	DownloadURL(objectKey, name string) string
}

// Config wires runtime collaborators into the TUI program.
type Config struct {
	Gateway    asker
	Index      docCatalog
	API        uploader
	Status     statusReader
	Links      linkBuilder
	Docs       docFetcher
	Store      *chat.Store
	UploadMode ragapi.UploadMode
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	composer := textinput.New()
	composer.Placeholder = composerQuestionPlaceholder
	composer.Focus()
	composer.CharLimit = 400
	composer.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	docVP := viewport.New(80, 20)
	docVP.MouseWheelEnabled = true

	bar := progress.New(progress.WithDefaultGradient())

	return &model{
		config:          config,
		stage:           stageChat,
		composerMode:    composerModeQuestion,
		composer:        composer,
		spinner:         spin,
		viewport:        vp,
		docViewport:     docVP,
		uploadBar:       bar,
		layout:          newPageLayout(),
		jobs:            newJobBus(),
		recentJobs:      map[jobKind]jobSnapshot{},
		transcriptDirty: true,
		infoMessage:     "Ask about your documents, Ctrl+U uploads a new one.",
	}
}

type model struct {
	config Config
	stage  stage

	composer     textinput.Model
	composerMode composerMode
	spinner      spinner.Model
	viewport     viewport.Model
	docViewport  viewport.Model
	uploadBar    progress.Model
	layout       pageLayout

	jobs       *jobBus
	recentJobs map[jobKind]jobSnapshot

	docs      []ragapi.DocItem
	hasData   bool
	docCursor int

	sessionCursor int

	askPending  int
	docsLoading bool

	uploadJobID    string
	uploadProgress float64
	uploadStatus   string

	viewerTitle string
	viewerPage  int

	transcriptDirty bool
	infoMessage     string
	errorMessage    string
}

type askResultMsg struct {
	question string
	turn     query.Turn
	err      error
}

type docsResultMsg struct {
	docs   []ragapi.DocItem
	status ragapi.Status
	err    error
}

type uploadResultMsg struct {
	result ragapi.UploadResult
	err    error
}

type pollTickMsg struct {
	jobID string
}

type pollProgressMsg struct {
	jobID    string
	progress ragapi.JobProgress
	err      error
}

type openDocResultMsg struct {
	title string
	text  string
	page  int
	err   error
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.jobs.Start(jobKindDocs, refreshDocsJob(m.config.Index, m.config.Status, false)),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case progress.FrameMsg:
		bar, cmd := m.uploadBar.Update(msg)
		m.uploadBar = bar.(progress.Model)
		return m, cmd

	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.docViewport.Width = m.layout.viewportWidth
		m.docViewport.Height = m.layout.viewportHeight
		m.uploadBar.Width = m.layout.viewportWidth
		m.composer.Width = m.layout.viewportWidth - 4
		m.transcriptDirty = true
		return m, nil

	case jobSignalMsg:
		m.recentJobs[msg.Snapshot.Kind] = msg.Snapshot
		return m, m.spinner.Tick

	case jobResultEnvelope:
		m.recentJobs[msg.Snapshot.Kind] = msg.Snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)

	case askResultMsg:
		return m, m.handleAskResult(msg)

	case docsResultMsg:
		m.handleDocsResult(msg)
		return m, nil

	case uploadResultMsg:
		return m, m.handleUploadResult(msg)

	case pollTickMsg:
		if m.uploadJobID == "" || msg.jobID != m.uploadJobID {
			return m, nil
		}
		return m, m.jobs.Start(jobKindPoll, pollJob(m.config.API, msg.jobID))

	case pollProgressMsg:
		return m, m.handlePollProgress(msg)

	case openDocResultMsg:
		m.handleOpenDocResult(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) busy() bool {
	return m.askPending > 0 || m.docsLoading || m.uploadJobID != ""
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.stage {
	case stageSessions:
		return m, m.handleSessionsKey(msg)
	case stageDocs:
		return m, m.handleDocsKey(msg)
	case stageViewer, stageHelp:
		return m, m.handleViewerKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlN:
		session := m.config.Store.Create()
		m.infoMessage = "Started session " + shortID(session.ID)
		m.errorMessage = ""
		m.transcriptDirty = true
		return m, nil
	case tea.KeyCtrlS:
		m.stage = stageSessions
		m.sessionCursor = 0
		return m, nil
	case tea.KeyCtrlD:
		m.stage = stageDocs
		return m, nil
	case tea.KeyCtrlU:
		m.enterUploadMode()
		return m, nil
	case tea.KeyCtrlO:
		return m, m.openLatestCitation()
	case tea.KeyCtrlG:
		m.showHelp()
		return m, nil
	case tea.KeyPgUp:
		m.viewport.HalfViewUp()
		return m, nil
	case tea.KeyPgDown:
		m.viewport.HalfViewDown()
		return m, nil
	case tea.KeyEsc:
		m.composer.SetValue("")
		if m.composerMode == composerModeUpload {
			m.leaveUploadMode()
		}
		m.errorMessage = ""
		return m, nil
	case tea.KeyEnter:
		return m, m.submitComposer()
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m *model) submitComposer() tea.Cmd {
	value := strings.TrimSpace(m.composer.Value())
	if value == "" {
		return nil
	}
	m.composer.SetValue("")

	if m.composerMode == composerModeUpload {
		m.leaveUploadMode()
		m.infoMessage = "Uploading " + value + "…"
		m.errorMessage = ""
		return m.jobs.Start(jobKindUpload, uploadJob(m.config.API, value, m.config.UploadMode))
	}

	current, ok := m.config.Store.Current()
	if !ok {
		return nil
	}
	history := historyFromMessages(current.Messages)
	m.config.Store.AddMessage(chat.Message{Role: chat.RoleUser, Content: value})
	m.askPending++
	m.errorMessage = ""
	m.transcriptDirty = true
	return m.jobs.Start(jobKindAsk, askJob(m.config.Gateway, history, value))
}

func (m *model) handleAskResult(msg askResultMsg) tea.Cmd {
	if m.askPending > 0 {
		m.askPending--
	}
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return nil
	}
	// Appended to whichever session is current when the response lands;
	// concurrent asks race for append position and that is accepted.
	m.config.Store.AddMessage(chat.Message{
		Role:    chat.RoleAssistant,
		Content: msg.turn.Answer,
		Sources: msg.turn.Sources,
	})
	m.transcriptDirty = true
	return nil
}

func (m *model) handleDocsResult(msg docsResultMsg) {
	m.docsLoading = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return
	}
	m.docs = msg.docs
	m.hasData = msg.status.HasData
	if m.docCursor >= len(m.docs) {
		m.docCursor = 0
	}
}

func (m *model) handleUploadResult(msg uploadResultMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return nil
	}
	m.uploadJobID = msg.result.JobID
	m.uploadProgress = 0
	m.uploadStatus = "queued"
	m.infoMessage = "Indexing " + msg.result.Filename + "…"
	return tea.Batch(m.uploadBar.SetPercent(0), pollTickCmd(msg.result.JobID))
}

func (m *model) handlePollProgress(msg pollProgressMsg) tea.Cmd {
	if msg.jobID != m.uploadJobID {
		return nil
	}
	if msg.err != nil {
		// One missed poll is not a failed job.
		return pollTickCmd(msg.jobID)
	}
	m.uploadStatus = msg.progress.Status
	m.uploadProgress = msg.progress.Progress
	barCmd := m.uploadBar.SetPercent(msg.progress.Progress)

	switch strings.ToLower(msg.progress.Status) {
	case "done", "completed", "success":
		m.uploadJobID = ""
		m.infoMessage = "Indexing finished."
		m.docsLoading = true
		return tea.Batch(barCmd, m.jobs.Start(jobKindDocs, refreshDocsJob(m.config.Index, m.config.Status, true)))
	case "error", "failed":
		m.uploadJobID = ""
		m.errorMessage = "Indexing failed: " + msg.progress.Status
		return barCmd
	}
	return tea.Batch(barCmd, pollTickCmd(msg.jobID))
}

func (m *model) handleOpenDocResult(msg openDocResultMsg) {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return
	}
	m.stage = stageViewer
	m.viewerTitle = msg.title
	m.viewerPage = msg.page
	m.docViewport.SetContent(wrapForViewport(msg.text, m.layout.viewportWidth))
	m.docViewport.GotoTop()
}

func (m *model) handleSessionsKey(msg tea.KeyMsg) tea.Cmd {
	sessions := m.config.Store.Sessions()
	switch msg.String() {
	case "esc":
		m.stage = stageChat
	case "up", "k":
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
	case "down", "j":
		if m.sessionCursor < len(sessions)-1 {
			m.sessionCursor++
		}
	case "enter":
		if m.sessionCursor < len(sessions) {
			m.config.Store.Switch(sessions[m.sessionCursor].ID)
			m.stage = stageChat
			m.transcriptDirty = true
		}
	case "n":
		m.config.Store.Create()
		m.sessionCursor = 0
		m.transcriptDirty = true
	case "d":
		if m.sessionCursor < len(sessions) {
			m.config.Store.Delete(sessions[m.sessionCursor].ID)
			if m.sessionCursor > 0 {
				m.sessionCursor--
			}
			m.transcriptDirty = true
		}
	}
	return nil
}

func (m *model) handleDocsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.stage = stageChat
	case "up", "k":
		if m.docCursor > 0 {
			m.docCursor--
		}
	case "down", "j":
		if m.docCursor < len(m.docs)-1 {
			m.docCursor++
		}
	case " ":
		if m.docCursor < len(m.docs) {
			m.config.Store.ToggleSelectedDoc(m.docs[m.docCursor].DocID)
		}
	case "r":
		m.docsLoading = true
		return m.jobs.Start(jobKindDocs, refreshDocsJob(m.config.Index, m.config.Status, true))
	case "u":
		m.stage = stageChat
		m.enterUploadMode()
	case "d":
		if m.docCursor < len(m.docs) {
			doc := m.docs[m.docCursor]
			key, name := doc.PDFKey, doc.Title
			if doc.OriginalKey != "" {
				key, name = doc.OriginalKey, doc.OriginalName
			}
			m.infoMessage = "Download: " + m.config.Links.DownloadURL(key, name)
		}
	case "enter", "o":
		if m.docCursor < len(m.docs) {
			doc := m.docs[m.docCursor]
			url := m.config.Links.ViewURL(doc.PDFKey, doc.Title, doc.OriginalKey, nil)
			return m.jobs.Start(jobKindOpenDoc, openDocJob(m.config.Docs, url, doc.DocID, doc.Title, 0))
		}
	}
	return nil
}

func (m *model) handleViewerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.stage = stageChat
	case "up", "k":
		m.docViewport.LineUp(1)
	case "down", "j":
		m.docViewport.LineDown(1)
	case "pgup":
		m.docViewport.HalfViewUp()
	case "pgdown":
		m.docViewport.HalfViewDown()
	case "g":
		m.docViewport.GotoTop()
	case "G":
		m.docViewport.GotoBottom()
	}
	return nil
}

// openLatestCitation opens the first resolved source of the most recent
// assistant message, landing on the cited page.
func (m *model) openLatestCitation() tea.Cmd {
	current, ok := m.config.Store.Current()
	if !ok {
		return nil
	}
	for i := len(current.Messages) - 1; i >= 0; i-- {
		msg := current.Messages[i]
		if msg.Role != chat.RoleAssistant {
			continue
		}
		source, ok := firstCitation(msg.Sources)
		if !ok {
			m.infoMessage = "No resolvable citation in the last answer."
			return nil
		}
		page := 0
		if source.Page != nil {
			page = *source.Page
		}
		title := source.Title
		if title == "" {
			title = source.DocID
		}
		return m.jobs.Start(jobKindOpenDoc, openDocJob(m.config.Docs, source.URL, source.DocID, title, page))
	}
	m.infoMessage = "Nothing to open yet."
	return nil
}

func (m *model) showHelp() {
	m.stage = stageHelp
	content := guide.Render(guide.Build(guide.Metadata{
		DocCount: len(m.docs),
		HasData:  m.hasData,
	}))
	m.docViewport.SetContent(wrapForViewport(content, m.layout.viewportWidth))
	m.docViewport.GotoTop()
}

func (m *model) enterUploadMode() {
	m.composerMode = composerModeUpload
	m.composer.Placeholder = composerUploadPlaceholder
	m.composer.SetValue("")
	m.composer.Focus()
}

func (m *model) leaveUploadMode() {
	m.composerMode = composerModeQuestion
	m.composer.Placeholder = composerQuestionPlaceholder
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
