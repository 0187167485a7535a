package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyunsol/docchat/internal/chat"
	"github.com/hyunsol/docchat/internal/docview"
	"github.com/hyunsol/docchat/internal/query"
	"github.com/hyunsol/docchat/internal/ragapi"
)

func askJob(gateway asker, history []query.HistoryEntry, question string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 90*time.Second)
		defer cancel()
		turn, err := gateway.Ask(ctx, history, question)
		if err != nil {
			return askResultMsg{question: question, err: err}, err
		}
		return askResultMsg{question: question, turn: turn}, nil
	}
}

func refreshDocsJob(index docCatalog, api statusReader, force bool) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		if force {
			if _, err := index.Refresh(ctx, true); err != nil {
				return docsResultMsg{err: err}, err
			}
		}
		docs, err := index.Docs(ctx)
		if err != nil {
			return docsResultMsg{err: err}, err
		}
		return docsResultMsg{docs: docs, status: api.GetStatus(ctx)}, nil
	}
}

func uploadJob(api uploader, path string, mode ragapi.UploadMode) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 5*time.Minute)
		defer cancel()
		result, err := api.Upload(ctx, path, mode)
		if err != nil {
			return uploadResultMsg{err: err}, err
		}
		return uploadResultMsg{result: result}, nil
	}
}

func pollJob(api uploader, jobID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 15*time.Second)
		defer cancel()
		progress, err := api.GetJobProgress(ctx, jobID)
		if err != nil {
			return pollProgressMsg{jobID: jobID, err: err}, err
		}
		return pollProgressMsg{jobID: jobID, progress: progress}, nil
	}
}

func openDocJob(cache docFetcher, viewURL, docID, title string, page int) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 90*time.Second)
		defer cancel()
		path, err := cache.Fetch(ctx, viewURL, docID)
		if err != nil {
			return openDocResultMsg{title: title, err: err}, err
		}
		var text string
		if page > 0 {
			text, err = docview.ExtractPageText(path, page)
		} else {
			text, err = docview.ExtractText(path)
		}
		if err != nil {
			return openDocResultMsg{title: title, err: err}, err
		}
		return openDocResultMsg{title: title, text: text, page: page}, nil
	}
}

func pollTickCmd(jobID string) tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return pollTickMsg{jobID: jobID}
	})
}

// historyFromMessages converts the persisted transcript into the gateway's
// history shape.
func historyFromMessages(messages []chat.Message) []query.HistoryEntry {
	history := make([]query.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		history = append(history, query.HistoryEntry{Role: string(msg.Role), Content: msg.Content})
	}
	return history
}

// firstCitation picks the first resolvable source of the latest assistant
// message, for the open-citation shortcut.
func firstCitation(sources []ragapi.SourceMeta) (ragapi.SourceMeta, bool) {
	for _, s := range sources {
		if s.URL != "" {
			return s, true
		}
	}
	return ragapi.SourceMeta{}, false
}

func trimmedTitle(value string) string {
	value = strings.TrimSpace(value)
	if len(value) <= 60 {
		return value
	}
	return fmt.Sprintf("%s…", strings.TrimSpace(value[:57]))
}
