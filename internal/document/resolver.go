package document

import (
	"log/slog"
	"strings"

	"github.com/emailbuilder/service/internal/logger"
	"github.com/emailbuilder/service/internal/page"
)

// SourceKind identifies where a resolved document came from.
type SourceKind int

const (
	SourceEmpty SourceKind = iota
	SourceEmbedded
	SourceSample
	SourceCode
)

func (k SourceKind) String() string {
	switch k {
	case SourceEmbedded:
		return "embedded"
	case SourceSample:
		return "sample"
	case SourceCode:
		return "code"
	default:
		return "empty"
	}
}

// Source is the winning candidate of a resolution. Name is the sample name
// for SourceSample.
type Source struct {
	Kind SourceKind
	Name string
}

// Resolver picks the document an editor session starts from.
type Resolver struct {
	page   page.Source
	logger *slog.Logger
}

// NewResolver creates a Resolver reading embedded data from src, which may be nil.
func NewResolver(src page.Source, l *slog.Logger) *Resolver {
	if l == nil {
		l = logger.Discard()
	}
	return &Resolver{page: src, logger: l}
}

// Resolve returns the document for fragment. It never fails.
func (r *Resolver) Resolve(fragment string) Document {
	doc, _ := r.ResolveSource(fragment)
	return doc
}

// ResolveSource is Resolve that also reports the winning source. Candidates
// are tried in order: embedded page data, #sample/<name>, #code/<payload>,
// then the empty document.
func (r *Resolver) ResolveSource(fragment string) (Document, Source) {
	if doc, ok := r.fromPage(); ok {
		return doc, Source{Kind: SourceEmbedded}
	}

	if name, ok := strings.CutPrefix(fragment, SamplePrefix); ok {
		if doc, ok := Sample(name); ok {
			return doc, Source{Kind: SourceSample, Name: name}
		}
		r.logger.Debug("unknown sample", slog.String("name", name))
	}

	if payload, ok := strings.CutPrefix(fragment, CodePrefix); ok {
		doc, err := DecodePayload(payload)
		if err == nil {
			return doc, Source{Kind: SourceCode}
		}
		r.logger.Warn("couldn't load configuration from hash", slog.Any("error", err))
	}

	return Empty(), Source{Kind: SourceEmpty}
}

func (r *Resolver) fromPage() (Document, bool) {
	if r.page == nil {
		return nil, false
	}
	text, ok := r.page.Lookup(page.DataElementID)
	if !ok {
		return nil, false
	}
	text = strings.TrimSpace(text)
	if text == "" || text == "{}" {
		return nil, false
	}
	doc, err := Parse([]byte(text))
	if err != nil {
		r.logger.Warn("couldn't load configuration from script element", slog.Any("error", err))
		return nil, false
	}
	return doc, true
}
