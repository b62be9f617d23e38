// Package message builds the provider-agnostic multimodal request payload
// for one entity extraction: instruction text plus the document rendered
// according to the configured input modes.
package message

import (
	"context"
	"fmt"
	"strings"

	"github.com/entityxtract/entityxtract/internal/common"
	"github.com/entityxtract/entityxtract/internal/document"
)

// InputMode controls how the document is represented in the outbound request.
type InputMode string

const (
	ModeFile  InputMode = "file"  // attach the raw file bytes
	ModeText  InputMode = "text"  // embed the derived plain text
	ModeImage InputMode = "image" // attach the derived page images
)

// ParseMode resolves a config string to an InputMode.
func ParseMode(s string) (InputMode, error) {
	switch InputMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFile:
		return ModeFile, nil
	case ModeText:
		return ModeText, nil
	case ModeImage:
		return ModeImage, nil
	default:
		return "", common.WrapError(common.ErrInvalidConfig, fmt.Sprintf("unknown input mode %q", s))
	}
}

// ParseModes resolves an ordered, non-empty mode list.
func ParseModes(raw []string) ([]InputMode, error) {
	modes := make([]InputMode, 0, len(raw))
	for _, s := range raw {
		m, err := ParseMode(s)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
	PartFile  PartType = "file"
)

// Part is one fragment of a message: instruction text, an inline image, or a
// file attachment.
type Part struct {
	Type     PartType
	Text     string
	MIME     string
	Data     []byte
	FileName string
}

func NewTextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

func NewImagePart(mime string, data []byte) Part {
	return Part{Type: PartImage, MIME: mime, Data: data}
}

func NewFilePart(name, mime string, data []byte) Part {
	return Part{Type: PartFile, FileName: name, MIME: mime, Data: data}
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one conversational turn of the outbound payload.
type Message struct {
	Role  string
	Parts []Part
}

// Compose assembles the outbound payload for one entity: the system block,
// then a user message holding the entity instructions plus the document in
// every configured mode. Modes are additive; an empty mode set is
// ErrInvalidConfig. Compose never touches the network, but it may trigger the
// document's first text/image derivation, so setup-time UnsupportedFormat
// errors surface here.
func Compose(ctx context.Context, doc *document.Document, systemPrompt, entityPrompt string, modes []InputMode) ([]Message, error) {
	if len(modes) == 0 {
		return nil, common.WrapError(common.ErrInvalidConfig, "input mode set is empty")
	}

	parts := []Part{NewTextPart(entityPrompt)}
	for _, mode := range modes {
		switch mode {
		case ModeText:
			text, err := doc.Text(ctx)
			if err != nil {
				return nil, err
			}
			parts = append(parts, NewTextPart("Document text:\n\n"+text))
		case ModeImage:
			pages, err := doc.PageImages(ctx)
			if err != nil {
				return nil, err
			}
			for _, page := range pages {
				parts = append(parts, NewImagePart(page.MIME, page.Data))
			}
		case ModeFile:
			parts = append(parts, NewFilePart(doc.Name(), doc.MIME(), doc.Raw()))
		default:
			return nil, common.WrapError(common.ErrInvalidConfig, fmt.Sprintf("unknown input mode %q", mode))
		}
	}

	return []Message{
		{Role: RoleSystem, Parts: []Part{NewTextPart(systemPrompt)}},
		{Role: RoleUser, Parts: parts},
	}, nil
}
