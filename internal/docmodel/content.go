package docmodel

import "github.com/rohmanhakim/docsintel/pkg/contentid"

// ContentDocument is the extracted documentation for one InventoryObject:
// a signature and a description, both Markdown, plus the page URL they
// were extracted from.
type ContentDocument struct {
	inventoryObject  InventoryObject
	contentID        string
	signature        string
	description      string
	documentationURL string
}

// NewContentDocument builds a ContentDocument, deriving its content_id
// deterministically from the object's working location URL and name.
func NewContentDocument(obj InventoryObject, signature, description, documentationURL string) ContentDocument {
	return ContentDocument{
		inventoryObject:  obj,
		contentID:        contentid.Encode(obj.LocationURL(), obj.Name()),
		signature:        signature,
		description:      description,
		documentationURL: documentationURL,
	}
}

func (d ContentDocument) InventoryObject() InventoryObject { return d.inventoryObject }
func (d ContentDocument) ContentID() string                { return d.contentID }
func (d ContentDocument) Signature() string                { return d.signature }
func (d ContentDocument) Description() string              { return d.description }
func (d ContentDocument) DocumentationURL() string          { return d.documentationURL }

// WithDescription returns a copy of d with its description replaced,
// used to apply lines_max truncation without mutating the original.
func (d ContentDocument) WithDescription(description string) ContentDocument {
	d.description = description
	return d
}
