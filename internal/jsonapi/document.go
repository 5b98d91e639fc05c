// Package jsonapi reads JSON:API documents and turns them into cache events:
// the store fragment of every resource object in primary data and included,
// and the normalized ref of the primary data.
package jsonapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/refcache/internal/normalize"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

// ErrInvalidDocument is returned when a payload is not a JSON:API document.
var ErrInvalidDocument = errors.New("invalid JSON:API document")

// Document is a decoded top-level JSON:API document.
type Document struct {
	Data     any              `json:"data"`
	Included []map[string]any `json:"included,omitempty"`
	Links    map[string]any   `json:"links,omitempty"`
	Meta     map[string]any   `json:"meta,omitempty"`
	Errors   []ErrorObject    `json:"errors,omitempty"`

	hasData bool
}

// ErrorObject is one member of a document's errors array.
type ErrorObject struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Parse decodes raw into a Document. A document must carry data, errors or meta.
func Parse(raw []byte) (*Document, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	_, doc.hasData = members["data"]
	if !doc.hasData && len(doc.Errors) == 0 && doc.Meta == nil {
		return nil, fmt.Errorf("%w: no data, errors or meta member", ErrInvalidDocument)
	}
	return &doc, nil
}

// IsError reports whether the document carries an errors array.
func (d *Document) IsError() bool {
	return len(d.Errors) > 0
}

// Fragment collects every resource object of the primary data and included
// into a store fragment. Identifier-only objects in primary data create
// records with no attributes.
func (d *Document) Fragment() (types.Fragment, error) {
	f := types.Fragment{}
	var primary []any
	switch v := d.Data.(type) {
	case nil:
	case []any:
		primary = v
	case map[string]any:
		primary = []any{v}
	default:
		return nil, fmt.Errorf("%w: data is %T", ErrInvalidDocument, d.Data)
	}

	for i, el := range primary {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: data[%d] is %T", ErrInvalidDocument, i, el)
		}
		if err := addResource(f, obj); err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
	}
	for i, obj := range d.Included {
		if err := addResource(f, obj); err != nil {
			return nil, fmt.Errorf("included[%d]: %w", i, err)
		}
	}
	return f, nil
}

// Ref normalizes the primary data together with the document's links and meta.
func (d *Document) Ref(opts normalize.Options) (*types.Ref, error) {
	if !d.hasData {
		return nil, fmt.Errorf("%w: no data member", ErrInvalidDocument)
	}
	return normalize.ToRef(map[string]any{
		"data":  d.Data,
		"links": d.Links,
		"meta":  d.Meta,
	}, opts)
}

// Success builds the FetchSucceeded event delivering this document to dataKey.
func (d *Document) Success(dataKey string, opts normalize.Options) (types.FetchSucceeded, error) {
	frag, err := d.Fragment()
	if err != nil {
		return types.FetchSucceeded{}, err
	}
	ev := types.FetchSucceeded{DataKey: dataKey, Fragment: frag}
	if d.hasData {
		ref, err := d.Ref(opts)
		if err != nil {
			return types.FetchSucceeded{}, err
		}
		ev.Ref = *ref
	} else {
		ev.Ref = types.Ref{Meta: types.CloneMap(d.Meta)}
	}
	return ev, nil
}

// Failure builds the FetchFailed event for an error document. Name is the
// first error's code (or status), messages are each error's detail (or title).
func (d *Document) Failure(dataKey string) types.FetchFailed {
	ev := types.FetchFailed{DataKey: dataKey, Name: "APIError"}
	for i, e := range d.Errors {
		if i == 0 {
			switch {
			case e.Code != "":
				ev.Name = e.Code
			case e.Status != "":
				ev.Name = e.Status
			}
		}
		msg := e.Detail
		if msg == "" {
			msg = e.Title
		}
		ev.Errors = append(ev.Errors, msg)
	}
	ev.Message = strings.Join(ev.Errors, "; ")
	return ev
}

func addResource(f types.Fragment, obj map[string]any) error {
	typ, _ := obj["type"].(string)
	id, _ := obj["id"].(string)
	if typ == "" || id == "" {
		return fmt.Errorf("%w: resource object lacks type or id", ErrInvalidDocument)
	}
	patch := types.EntityPatch{}
	if v, ok := obj["attributes"]; ok && v != nil {
		attrs, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: attributes of %s:%s is %T", ErrInvalidDocument, typ, id, v)
		}
		patch.Attributes = attrs
	}
	if v, ok := obj["relationships"]; ok && v != nil {
		rels, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: relationships of %s:%s is %T", ErrInvalidDocument, typ, id, v)
		}
		patch.Relationships = rels
	}
	f.Add(types.ResourceKey{Type: typ, ID: id}, patch)
	return nil
}
