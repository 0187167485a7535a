package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/hyunsol/docchat/internal/chat"
	"github.com/hyunsol/docchat/internal/filename"
	"github.com/hyunsol/docchat/internal/ragapi"
)

func (m *model) View() string {
	switch m.stage {
	case stageSessions:
		return m.viewSessions()
	case stageDocs:
		return m.viewDocs()
	case stageViewer:
		return m.viewViewer()
	case stageHelp:
		return m.viewHelp()
	default:
		return m.viewChat()
	}
}

func (m *model) viewChat() string {
	m.refreshTranscriptIfDirty()
	parts := []string{m.heroView(), m.viewport.View()}
	if m.uploadJobID != "" {
		parts = append(parts, m.uploadPanel())
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	parts = append(parts, m.composerPanel(), m.statusBar())
	return joinNonEmpty(parts)
}

func (m *model) composerPanel() string {
	help := "Enter: ask • Ctrl+U: upload • Ctrl+D: documents • Ctrl+S: sessions • Ctrl+O: open citation • Ctrl+G: help"
	if m.composerMode == composerModeUpload {
		help = "Enter: upload • Esc: cancel"
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Composer"),
		m.composer.View(),
		helperStyle.Render(help),
	})
}

func (m *model) uploadPanel() string {
	label := fmt.Sprintf("Indexing (%s)", m.uploadStatus)
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render(label),
		m.uploadBar.View(),
	})
}

func (m *model) viewSessions() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Sessions"))
	b.WriteRune('\n')
	sessions := m.config.Store.Sessions()
	currentID := m.config.Store.CurrentID()
	if len(sessions) == 0 {
		b.WriteString(helperStyle.Render("No sessions yet."))
	}
	for idx, session := range sessions {
		label := fmt.Sprintf("%s  %d message(s)  %s", shortID(session.ID), len(session.Messages), session.UpdatedAt.Format("Jan 2 15:04"))
		if session.ID == currentID {
			label += "  (current)"
		}
		if idx == m.sessionCursor {
			b.WriteString(currentLineStyle.Render("▸ " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteRune('\n')
	}
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Enter: switch • n: new • d: delete • Esc: back"))
	return joinNonEmpty([]string{m.heroView(), b.String(), m.statusBar()})
}

func (m *model) viewDocs() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Documents"))
	b.WriteRune('\n')
	if len(m.docs) == 0 {
		if m.hasData {
			b.WriteString(helperStyle.Render("Catalog is loading…"))
		} else {
			b.WriteString(helperStyle.Render("No documents indexed yet. Press u to upload one."))
		}
		b.WriteRune('\n')
	}
	current, _ := m.config.Store.Current()
	for idx, doc := range m.docs {
		mark := "[ ]"
		if sessionHasDoc(&current, doc.DocID) {
			mark = selectedStyle.Render("[x]")
		}
		label := fmt.Sprintf("%s %s", mark, trimmedTitle(filename.DisplayTitle(doc.Title, doc.DocID)))
		if doc.OriginalName != "" {
			label += helperStyle.Render("  (original: " + doc.OriginalName + ")")
		}
		if idx == m.docCursor {
			b.WriteString(currentLineStyle.Render("▸ ") + label)
		} else {
			b.WriteString("  " + label)
		}
		b.WriteRune('\n')
	}
	b.WriteRune('\n')
	if m.infoMessage != "" {
		b.WriteString(helperStyle.Render(m.infoMessage))
		b.WriteRune('\n')
	}
	b.WriteString(helperStyle.Render("Space: toggle scope • Enter: view • d: download link • r: refresh • u: upload • Esc: back"))
	return joinNonEmpty([]string{m.heroView(), b.String(), m.statusBar()})
}

func (m *model) viewViewer() string {
	title := m.viewerTitle
	if m.viewerPage > 0 {
		title = fmt.Sprintf("%s — page %d", title, m.viewerPage)
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render(trimmedTitle(title)),
		m.docViewport.View(),
		helperStyle.Render("↑/↓ scroll • g/G top or bottom • Esc: back"),
		m.statusBar(),
	})
}

func (m *model) viewHelp() string {
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render("Getting started"),
		m.docViewport.View(),
		helperStyle.Render("↑/↓ scroll • Esc: back"),
		m.statusBar(),
	})
}

func (m *model) heroView() string {
	parts := []string{sectionHeaderStyle.Render("docchat"), taglineStyle.Render(heroTagline)}
	return strings.Join(parts, "  ")
}

func (m *model) statusBar() string {
	stats := []string{}
	if current, ok := m.config.Store.Current(); ok {
		stats = append(stats, fmt.Sprintf("Session %s", shortID(current.ID)))
		stats = append(stats, fmt.Sprintf("Msgs %d", len(current.Messages)))
		if len(current.SelectedDocIDs) > 0 {
			stats = append(stats, fmt.Sprintf("Scope %d doc(s)", len(current.SelectedDocIDs)))
		}
	}
	stats = append(stats, fmt.Sprintf("Docs %d", len(m.docs)))
	if m.askPending > 0 {
		stats = append(stats, "Answering…")
	}
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	badges := []string{}
	for _, kind := range []jobKind{jobKindAsk, jobKindDocs, jobKindUpload, jobKindOpenDoc} {
		snapshot, ok := m.recentJobs[kind]
		if !ok || snapshot.Status != jobStatusFailed {
			continue
		}
		badges = append(badges, fmt.Sprintf("%s failed", kind))
	}
	return badges
}

func (m *model) refreshTranscriptIfDirty() {
	if !m.transcriptDirty {
		return
	}
	m.transcriptDirty = false
	current, ok := m.config.Store.Current()
	if !ok || len(current.Messages) == 0 {
		m.viewport.SetContent(helperStyle.Render("The conversation will appear here."))
		return
	}
	m.viewport.SetContent(m.renderTranscript(&current))
	m.viewport.GotoBottom()
}

func (m *model) renderTranscript(session *chat.Session) string {
	wrap := m.layout.viewportWidth
	if wrap < minViewportWidth {
		wrap = minViewportWidth
	}
	var b strings.Builder
	for idx, msg := range session.Messages {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userLabelStyle.Render("You"))
		case chat.RoleAssistant:
			b.WriteString(assistantLabelStyle.Render("Assistant"))
		default:
			b.WriteString(helperStyle.Render(string(msg.Role)))
		}
		if !msg.CreatedAt.IsZero() {
			b.WriteString(helperStyle.Render("  " + msg.CreatedAt.Format("15:04")))
		}
		b.WriteRune('\n')
		b.WriteString(indentMultiline(wordwrap.String(msg.Content, wrap-2), "  "))
		b.WriteRune('\n')

		for i, source := range msg.Sources {
			b.WriteString(renderCitation(i+1, source, wrap))
		}
		if idx < len(session.Messages)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func renderCitation(n int, source ragapi.SourceMeta, wrap int) string {
	var b strings.Builder
	label := fmt.Sprintf("  [%d] %s", n, citationTitle(source))
	if source.Page != nil {
		label += fmt.Sprintf(" (p.%d)", *source.Page)
	}
	b.WriteString(citationStyle.Render(label))
	b.WriteRune('\n')
	if source.URL != "" {
		b.WriteString("      " + citationURLStyle.Render(source.URL))
		b.WriteRune('\n')
	}
	if snippet := strings.TrimSpace(source.Snippet); snippet != "" {
		if len(snippet) > snippetPreviewLimit {
			snippet = snippet[:snippetPreviewLimit] + "…"
		}
		b.WriteString(snippetStyle.Render(indentMultiline(wordwrap.String(snippet, wrap-6), "      ")))
		b.WriteRune('\n')
	}
	return b.String()
}

func citationTitle(source ragapi.SourceMeta) string {
	if source.Title != "" {
		return trimmedTitle(source.Title)
	}
	if source.DocID != "" {
		return source.DocID
	}
	return "source " + source.ID
}

func sessionHasDoc(session *chat.Session, docID string) bool {
	if session == nil {
		return false
	}
	return session.HasSelectedDoc(docID)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
