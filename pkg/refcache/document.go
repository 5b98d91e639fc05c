package refcache

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/refcache/internal/jsonapi"
	"github.com/mesh-intelligence/refcache/internal/normalize"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

// ErrInvalidDocument is returned when a payload is not a JSON:API document.
var ErrInvalidDocument = jsonapi.ErrInvalidDocument

// RefOption adjusts how a ref is inferred from its source shape.
type RefOption func(*normalize.Options)

// AsCollection forces the IsCollection flag of the resulting ref.
func AsCollection(v bool) RefOption {
	return func(o *normalize.Options) {
		*o = normalize.Collection(v)
	}
}

func refOptions(opts []RefOption) normalize.Options {
	var o normalize.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Normalize turns a relationship linkage, a flat resource object, an item, a
// ref or a projected resource into a ref.
func Normalize(input any, opts ...RefOption) (*types.Ref, error) {
	return normalize.ToRef(input, refOptions(opts))
}

// DocumentEvent decodes a JSON:API response body into the event that
// delivers it to dataKey: a FetchFailed for an errors document, a
// FetchSucceeded otherwise.
func DocumentEvent(dataKey string, raw []byte, opts ...RefOption) (types.Event, error) {
	doc, err := jsonapi.Parse(raw)
	if err != nil {
		return nil, err
	}
	if doc.IsError() {
		return doc.Failure(dataKey), nil
	}
	ev, err := doc.Success(dataKey, refOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("building success event: %w", err)
	}
	return ev, nil
}

// BootstrapEvent decodes a JSON:API document into a bootstrap success for
// dataKey. Bootstraps seed entities and refs without touching request status.
func BootstrapEvent(dataKey string, raw []byte, opts ...RefOption) (types.FetchSucceeded, error) {
	doc, err := jsonapi.Parse(raw)
	if err != nil {
		return types.FetchSucceeded{}, err
	}
	if doc.IsError() {
		return types.FetchSucceeded{}, fmt.Errorf("%w: cannot bootstrap an errors document", ErrInvalidDocument)
	}
	ev, err := doc.Success(dataKey, refOptions(opts))
	if err != nil {
		return types.FetchSucceeded{}, fmt.Errorf("building bootstrap event: %w", err)
	}
	ev.Bootstrap = true
	return ev, nil
}

// GenericEvent decodes any JSON value into a generic bootstrap for dataKey.
func GenericEvent(dataKey string, raw []byte) (types.GenericBootstrap, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return types.GenericBootstrap{}, fmt.Errorf("decoding generic payload: %w", err)
	}
	return types.GenericBootstrap{DataKey: dataKey, Value: v}, nil
}
