package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/api"
)

// Request messages the documents view emits for the router to execute.
type (
	reloadCollectionsMsg struct{}
	reloadTagsMsg        struct{}
	openCollectionMsg    struct{ name string }
	newCollectionMsg     struct{ name string }
	removeDocumentMsg    struct{ source, collection string }
	removeTagMsg         struct{ tag string }
	uploadRequestMsg     struct{ input api.UploadInput }
	filterTagMsg         struct{ tag string }
)

type docsMode int

const (
	docsCollections   docsMode = iota // Browsing the collection list
	docsDocuments                     // Browsing one collection or tag filter
	docsNewCollection                 // Naming a new collection
	docsUpload                        // Entering a file path to ingest
	docsUploadTags                    // Entering tags for the pending upload
	docsTagFilter                     // Entering a tag to filter by
)

// documentsModel is the corpus management view, reachable by admins only.
// The role gate lives in the shell; this model assumes it is authorized.
type documentsModel struct {
	mode docsMode

	collections []string
	cursor      int

	documents  []api.Document
	docCursor  int
	collection string // collection the document list came from
	tag        string // tag filter the document list came from, if any

	tags []string

	input      textinput.Model
	uploadPath string // file path entered before the tag prompt
	loading    bool
	status     string
	errText    string

	spinner spinner.Model
	styles  Styles
	keys    keyMap
	width   int
	height  int
}

func newDocumentsModel(styles Styles, keys keyMap) documentsModel {
	input := textinput.New()
	input.CharLimit = 256
	input.SetWidth(48)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return documentsModel{
		input:   input,
		spinner: sp,
		styles:  styles,
		keys:    keys,
		width:   80,
	}
}

// Init requests the collection list so the view is populated on first open.
func (d documentsModel) Init() tea.Cmd {
	return func() tea.Msg { return reloadCollectionsMsg{} }
}

func (d documentsModel) Update(msg tea.Msg) (documentsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return d.handleKey(msg)

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil

	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case collectionsMsg:
		d.loading = false
		if msg.err != nil {
			d.errText = msg.err.Error()
			return d, nil
		}
		d.errText = ""
		d.collections = msg.collections
		if d.cursor >= len(d.collections) {
			d.cursor = max(len(d.collections)-1, 0)
		}
		return d, nil

	case documentsMsg:
		d.loading = false
		if msg.err != nil {
			d.errText = msg.err.Error()
			return d, nil
		}
		d.errText = ""
		d.documents = msg.documents
		d.collection = msg.collection
		d.tag = msg.tag
		d.docCursor = 0
		d.mode = docsDocuments
		return d, nil

	case tagsMsg:
		if msg.err == nil {
			d.tags = msg.tags
		}
		return d, nil

	case collectionCreatedMsg:
		d.loading = false
		if msg.err != nil {
			d.errText = msg.err.Error()
			return d, nil
		}
		d.errText = ""
		d.status = fmt.Sprintf("collection %q created", msg.name)
		return d.reloadCollections()

	case documentDeletedMsg:
		d.loading = false
		if msg.err != nil {
			d.errText = msg.err.Error()
			return d, nil
		}
		d.errText = ""
		d.status = fmt.Sprintf("%q deleted", msg.source)
		return d.reloadDocuments()

	case tagDeletedMsg:
		d.loading = false
		if msg.err != nil {
			d.errText = msg.err.Error()
			return d, nil
		}
		// The filtered list is gone wholesale; fall back to the collections.
		d.errText = ""
		d.status = fmt.Sprintf("all documents tagged %q deleted", msg.tag)
		d.mode = docsCollections
		d.tag = ""
		return d, nil

	case uploadedMsg:
		d.loading = false
		if msg.err != nil {
			d.errText = msg.err.Error()
			return d, nil
		}
		d.errText = ""
		d.status = fmt.Sprintf("%q uploaded", msg.path)
		return d, nil
	}

	if d.inputActive() {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d documentsModel) inputActive() bool {
	switch d.mode {
	case docsNewCollection, docsUpload, docsUploadTags, docsTagFilter:
		return true
	default:
		return false
	}
}

func (d documentsModel) handleKey(msg tea.KeyPressMsg) (documentsModel, tea.Cmd) {
	if d.inputActive() {
		return d.handleInputKey(msg)
	}

	switch d.mode {
	case docsCollections:
		switch {
		case key.Matches(msg, d.keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, d.keys.Select):
			if name, ok := d.selectedCollection(); ok {
				d.loading = true
				d.status = ""
				return d, tea.Batch(d.spinner.Tick,
					func() tea.Msg { return openCollectionMsg{name: name} })
			}
		case key.Matches(msg, d.keys.Down):
			if d.cursor < len(d.collections)-1 {
				d.cursor++
			}
		case key.Matches(msg, d.keys.New):
			return d.enterInput(docsNewCollection, "collection name"), nil
		case key.Matches(msg, d.keys.Upload):
			if _, ok := d.selectedCollection(); ok {
				return d.enterInput(docsUpload, "path to file or .zip"), nil
			}
		case key.Matches(msg, d.keys.Filter):
			d = d.enterInput(docsTagFilter, "tag")
			return d, func() tea.Msg { return reloadTagsMsg{} }
		case key.Matches(msg, d.keys.Refresh):
			return d.reloadCollections()
		}

	case docsDocuments:
		switch {
		case key.Matches(msg, d.keys.Up):
			if d.docCursor > 0 {
				d.docCursor--
			}
		case key.Matches(msg, d.keys.Down):
			if d.docCursor < len(d.documents)-1 {
				d.docCursor++
			}
		case key.Matches(msg, d.keys.Back):
			d.mode = docsCollections
			d.status = ""
			d.errText = ""
		case key.Matches(msg, d.keys.DeleteTag):
			if d.tag != "" {
				tag := d.tag
				d.loading = true
				return d, tea.Batch(d.spinner.Tick,
					func() tea.Msg { return removeTagMsg{tag: tag} })
			}
		case key.Matches(msg, d.keys.Delete):
			if doc, ok := d.selectedDocument(); ok {
				d.loading = true
				return d, tea.Batch(d.spinner.Tick, func() tea.Msg {
					return removeDocumentMsg{source: doc.Source, collection: doc.Collection}
				})
			}
		case key.Matches(msg, d.keys.Refresh):
			return d.reloadDocuments()
		}
	}
	return d, nil
}

func (d documentsModel) handleInputKey(msg tea.KeyPressMsg) (documentsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		return d.leaveInput(), nil

	case key.Matches(msg, d.keys.Submit):
		value := strings.TrimSpace(d.input.Value())
		// Only the tag prompt accepts an empty submit (meaning "no tags").
		if value == "" && d.mode != docsUploadTags {
			return d, nil
		}

		switch d.mode {
		case docsNewCollection:
			d = d.leaveInput()
			d.loading = true
			return d, tea.Batch(d.spinner.Tick,
				func() tea.Msg { return newCollectionMsg{name: value} })

		case docsUpload:
			d.uploadPath = value
			return d.enterInput(docsUploadTags, "tags, comma-separated (enter to skip)"), nil

		case docsUploadTags:
			collection, _ := d.selectedCollection()
			input := api.UploadInput{
				Path:       d.uploadPath,
				Collection: collection,
				Tags:       splitTags(value),
				Archive:    strings.HasSuffix(strings.ToLower(d.uploadPath), ".zip"),
			}
			d = d.leaveInput()
			d.loading = true
			return d, tea.Batch(d.spinner.Tick,
				func() tea.Msg { return uploadRequestMsg{input: input} })

		case docsTagFilter:
			d = d.leaveInput()
			d.loading = true
			return d, tea.Batch(d.spinner.Tick,
				func() tea.Msg { return filterTagMsg{tag: value} })
		}
		return d, nil
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

// splitTags parses a comma-separated tag list; an empty entry is dropped.
func splitTags(value string) []string {
	var tags []string
	for _, part := range strings.Split(value, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// leaveInput returns to the collection list and resets the text entry.
func (d documentsModel) leaveInput() documentsModel {
	d.mode = docsCollections
	d.uploadPath = ""
	d.input.Reset()
	d.input.Blur()
	d.status = ""
	return d
}

// enterInput switches into a text-entry mode with a fresh, focused input.
func (d documentsModel) enterInput(mode docsMode, placeholder string) documentsModel {
	d.mode = mode
	d.input.Reset()
	d.input.Placeholder = placeholder
	_ = d.input.Focus()
	d.errText = ""
	d.status = ""
	return d
}

func (d documentsModel) reloadCollections() (documentsModel, tea.Cmd) {
	d.loading = true
	return d, tea.Batch(d.spinner.Tick,
		func() tea.Msg { return reloadCollectionsMsg{} })
}

func (d documentsModel) reloadDocuments() (documentsModel, tea.Cmd) {
	d.loading = true
	if d.tag != "" {
		tag := d.tag
		return d, tea.Batch(d.spinner.Tick,
			func() tea.Msg { return filterTagMsg{tag: tag} })
	}
	name := d.collection
	return d, tea.Batch(d.spinner.Tick,
		func() tea.Msg { return openCollectionMsg{name: name} })
}

func (d documentsModel) selectedCollection() (string, bool) {
	if d.cursor < 0 || d.cursor >= len(d.collections) {
		return "", false
	}
	return d.collections[d.cursor], true
}

func (d documentsModel) selectedDocument() (api.Document, bool) {
	if d.docCursor < 0 || d.docCursor >= len(d.documents) {
		return api.Document{}, false
	}
	return d.documents[d.docCursor], true
}

func (d documentsModel) View() string {
	var b strings.Builder

	switch d.mode {
	case docsNewCollection:
		_, _ = b.WriteString(d.styles.Title.Render("New collection"))
		_, _ = b.WriteString("\n\n")
		_, _ = b.WriteString(d.input.View())
		_, _ = b.WriteString("\n\n")
		_, _ = b.WriteString(d.styles.System.Render("enter to create, esc to cancel"))

	case docsUpload:
		collection, _ := d.selectedCollection()
		_, _ = b.WriteString(d.styles.Title.Render("Upload into " + collection))
		_, _ = b.WriteString("\n\n")
		_, _ = b.WriteString(d.input.View())
		_, _ = b.WriteString("\n\n")
		_, _ = b.WriteString(d.styles.System.Render(".zip archives are unpacked and indexed server-side"))

	case docsUploadTags:
		_, _ = b.WriteString(d.styles.Title.Render("Tags for " + d.uploadPath))
		_, _ = b.WriteString("\n\n")
		_, _ = b.WriteString(d.input.View())
		_, _ = b.WriteString("\n\n")
		_, _ = b.WriteString(d.styles.System.Render("tags make documents findable across collections; enter with none to skip"))

	case docsTagFilter:
		_, _ = b.WriteString(d.styles.Title.Render("Filter by tag"))
		_, _ = b.WriteString("\n\n")
		_, _ = b.WriteString(d.input.View())
		if len(d.tags) > 0 {
			_, _ = b.WriteString("\n\n")
			_, _ = b.WriteString(d.styles.System.Render("known tags: " + strings.Join(d.tags, ", ")))
		}

	case docsDocuments:
		d.renderDocumentList(&b)

	default:
		d.renderCollectionList(&b)
	}

	_, _ = b.WriteString("\n\n")
	switch {
	case d.loading:
		_, _ = b.WriteString(d.spinner.View())
		_, _ = b.WriteString(d.styles.System.Render(" working..."))
	case d.errText != "":
		_, _ = b.WriteString(d.styles.Error.Render(d.errText))
	case d.status != "":
		_, _ = b.WriteString(d.styles.System.Render(d.status))
	}

	return b.String()
}

func (d documentsModel) renderCollectionList(b *strings.Builder) {
	_, _ = b.WriteString(d.styles.Title.Render("Collections"))
	_, _ = b.WriteString("\n\n")

	if len(d.collections) == 0 {
		_, _ = b.WriteString(d.styles.System.Render("no collections yet; press n to create one"))
		return
	}

	for i, name := range d.collections {
		line := "  " + name
		if i == d.cursor {
			line = d.styles.Selected.Render("> " + name)
		}
		_, _ = b.WriteString(line)
		_, _ = b.WriteString("\n")
	}
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(d.styles.System.Render(
		helpLine(d.keys.Select, d.keys.New, d.keys.Upload, d.keys.Filter, d.keys.Refresh)))
}

func (d documentsModel) renderDocumentList(b *strings.Builder) {
	title := "Documents in " + d.collection
	if d.tag != "" {
		title = "Documents tagged " + d.tag
	}
	_, _ = b.WriteString(d.styles.Title.Render(title))
	_, _ = b.WriteString("\n\n")

	if len(d.documents) == 0 {
		_, _ = b.WriteString(d.styles.System.Render("no documents"))
		return
	}

	for i, doc := range d.documents {
		label := doc.Source
		if len(doc.Tags) > 0 {
			label += "  [" + strings.Join(doc.Tags, ", ") + "]"
		}
		if d.tag != "" && doc.Collection != "" {
			label += "  (" + doc.Collection + ")"
		}
		line := "  " + label
		if i == d.docCursor {
			line = d.styles.Selected.Render("> " + label)
		}
		_, _ = b.WriteString(line)
		_, _ = b.WriteString("\n")
	}
	_, _ = b.WriteString("\n")
	hints := []key.Binding{d.keys.Delete, d.keys.Refresh, d.keys.Back}
	if d.tag != "" {
		hints = []key.Binding{d.keys.Delete, d.keys.DeleteTag, d.keys.Refresh, d.keys.Back}
	}
	_, _ = b.WriteString(d.styles.System.Render(helpLine(hints...)))
}
