package lsp

import (
	"context"
	"sort"
	"sync"

	"github.com/dhamidi/sqlgram/dialect"
)

// Document is an open SQL document and its latest parse.
type Document struct {
	URI     string
	Path    string
	Version int32
	Text    []byte
	Parsed  *dialect.Result
}

// Workspace holds the documents the client has open. Every update parses
// the new text with the workspace's dialect.
type Workspace struct {
	dialect *dialect.Dialect
	opts    []dialect.Option

	mu   sync.RWMutex
	docs map[string]*Document
}

func NewWorkspace(d *dialect.Dialect, opts ...dialect.Option) *Workspace {
	return &Workspace{
		dialect: d,
		opts:    opts,
		docs:    make(map[string]*Document),
	}
}

// Update replaces the text of the document at uri and parses it. A parse
// error leaves the previous document in place.
func (w *Workspace) Update(ctx context.Context, uri string, version int32, text []byte) (*Document, error) {
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}
	opts := append([]dialect.Option{dialect.WithFile(path)}, w.opts...)
	res, err := w.dialect.Parse(ctx, text, opts...)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		URI:     uri,
		Path:    path,
		Version: version,
		Text:    text,
		Parsed:  res,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if old, ok := w.docs[uri]; ok && old.Version > version {
		return old, nil
	}
	w.docs[uri] = doc
	return doc, nil
}

func (w *Workspace) Get(uri string) (*Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[uri]
	return doc, ok
}

func (w *Workspace) Close(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.docs, uri)
}

// URIs lists the open documents in sorted order.
func (w *Workspace) URIs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	uris := make([]string, 0, len(w.docs))
	for uri := range w.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
