package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/api"
	"github.com/plumehq/plume/internal/session"
)

// Message types produced by backend commands. Each carries the error from
// its operation; views render failures inline instead of crashing.
type (
	sessionRestoredMsg struct{ state session.State }

	loginResultMsg struct {
		user session.User
		err  error
	}

	answerMsg struct {
		query  string
		answer api.Answer
		err    error
	}

	collectionsMsg struct {
		collections []string
		err         error
	}

	documentsMsg struct {
		collection string
		tag        string
		documents  []api.Document
		err        error
	}

	tagsMsg struct {
		tags []string
		err  error
	}

	collectionCreatedMsg struct {
		name string
		err  error
	}

	documentDeletedMsg struct {
		source string
		err    error
	}

	tagDeletedMsg struct {
		tag string
		err error
	}

	uploadedMsg struct {
		path string
		err  error
	}

	historyMsg struct {
		entries []api.HistoryEntry
		err     error
	}

	parametersSavedMsg struct {
		params api.Parameters
		err    error
	}
)

// restoreSession runs the blocking session restore off the UI loop.
func (m *Model) restoreSession() tea.Cmd {
	return func() tea.Msg {
		m.sessions.Initialize(m.ctx)
		return sessionRestoredMsg{state: m.sessions.Snapshot()}
	}
}

func (m *Model) performLogin(email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.sessions.Login(m.ctx, email, password)
		return loginResultMsg{user: user, err: err}
	}
}

func (m *Model) askQuery(userID, query string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.backend.Ask(m.ctx, userID, query)
		return answerMsg{query: query, answer: answer, err: err}
	}
}

func (m *Model) loadCollections() tea.Cmd {
	return func() tea.Msg {
		collections, err := m.backend.Collections(m.ctx)
		return collectionsMsg{collections: collections, err: err}
	}
}

func (m *Model) loadDocuments(collection string) tea.Cmd {
	return func() tea.Msg {
		documents, err := m.backend.Documents(m.ctx, collection)
		return documentsMsg{collection: collection, documents: documents, err: err}
	}
}

func (m *Model) loadDocumentsByTag(tag string) tea.Cmd {
	return func() tea.Msg {
		documents, err := m.backend.DocumentsByTag(m.ctx, tag)
		return documentsMsg{tag: tag, documents: documents, err: err}
	}
}

func (m *Model) loadTags() tea.Cmd {
	return func() tea.Msg {
		tags, err := m.backend.Tags(m.ctx)
		return tagsMsg{tags: tags, err: err}
	}
}

func (m *Model) createCollection(name string) tea.Cmd {
	return func() tea.Msg {
		err := m.backend.CreateCollection(m.ctx, name)
		return collectionCreatedMsg{name: name, err: err}
	}
}

func (m *Model) deleteDocument(source, collection string) tea.Cmd {
	return func() tea.Msg {
		err := m.backend.DeleteDocument(m.ctx, source, collection)
		return documentDeletedMsg{source: source, err: err}
	}
}

func (m *Model) deleteDocumentsByTag(tag string) tea.Cmd {
	return func() tea.Msg {
		err := m.backend.DeleteDocumentsByTag(m.ctx, tag)
		return tagDeletedMsg{tag: tag, err: err}
	}
}

func (m *Model) uploadDocument(input api.UploadInput) tea.Cmd {
	return func() tea.Msg {
		err := m.backend.Upload(m.ctx, input)
		return uploadedMsg{path: input.Path, err: err}
	}
}

func (m *Model) loadHistory(userID string) tea.Cmd {
	return func() tea.Msg {
		entries, err := m.backend.History(m.ctx, userID)
		return historyMsg{entries: entries, err: err}
	}
}

// saveParameters pushes new retrieval settings to the backend and, once
// accepted, into the session so the local cache and persisted record agree.
func (m *Model) saveParameters(userID string, params api.Parameters) tea.Cmd {
	return func() tea.Msg {
		if err := m.backend.UpdateParameters(m.ctx, userID, params); err != nil {
			return parametersSavedMsg{err: err}
		}
		if err := m.sessions.SetParameters(params); err != nil {
			return parametersSavedMsg{err: err}
		}
		return parametersSavedMsg{params: params}
	}
}
