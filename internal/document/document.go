// Package document holds the email-builder document model as far as this
// service needs it: an opaque JSON object whose blocks are keyed by id, with
// the entry block under "root".
package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RootBlockID is the key every document must contain.
const RootBlockID = "root"

var (
	// ErrNoRoot is returned for JSON that is not an object with a root block.
	ErrNoRoot = errors.New("document is not an object with a root block")
	// ErrBlockNotFound is returned when a block id is not in the document.
	ErrBlockNotFound = errors.New("block not found")
	// ErrNotImageBlock is returned when patching an image URL on another block type.
	ErrNotImageBlock = errors.New("block is not an image")
)

// Document is an email-builder document. Beyond the root key its shape is
// owned by the editor's schema.
type Document map[string]any

// Meta is the message metadata kept under the "_meta" key.
type Meta struct {
	Name      string `json:"name,omitempty"`
	FromName  string `json:"fromName,omitempty"`
	FromEmail string `json:"fromEmail,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// Parse decodes data and accepts it only if it is an object containing root.
func Parse(data []byte) (Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNoRoot
	}
	if _, ok := obj[RootBlockID]; !ok {
		return nil, ErrNoRoot
	}
	return Document(obj), nil
}

// Empty returns the built-in empty document.
func Empty() Document {
	return Document{
		RootBlockID: map[string]any{
			"type": "EmailLayout",
			"data": map[string]any{
				"backdropColor": "#F5F5F5",
				"canvasColor":   "#FFFFFF",
				"textColor":     "#262626",
				"fontFamily":    "MODERN_SANS",
				"childrenIds":   []any{},
			},
		},
	}
}

// Meta returns the document metadata. Unknown or malformed fields are ignored.
func (d Document) Meta() Meta {
	raw, ok := d["_meta"].(map[string]any)
	if !ok {
		return Meta{}
	}
	str := func(k string) string {
		s, _ := raw[k].(string)
		return s
	}
	return Meta{
		Name:      str("name"),
		FromName:  str("fromName"),
		FromEmail: str("fromEmail"),
		Subject:   str("subject"),
	}
}

// ImageBlock returns an error unless blockID names an Image block.
func (d Document) ImageBlock(blockID string) error {
	_, err := d.imageBlock(blockID)
	return err
}

func (d Document) imageBlock(blockID string) (map[string]any, error) {
	block, ok := d[blockID].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w", blockID, ErrBlockNotFound)
	}
	if block["type"] != "Image" {
		return nil, fmt.Errorf("%s: %w", blockID, ErrNotImageBlock)
	}
	return block, nil
}

// SetImageURL points the Image block blockID at url.
func (d Document) SetImageURL(blockID, url string) error {
	block, err := d.imageBlock(blockID)
	if err != nil {
		return err
	}
	data, _ := block["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
		block["data"] = data
	}
	props, _ := data["props"].(map[string]any)
	if props == nil {
		props = map[string]any{}
		data["props"] = props
	}
	props["url"] = url
	return nil
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	b, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	out, err := Parse(b)
	if err != nil {
		return nil
	}
	return out
}
