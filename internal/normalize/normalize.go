// Package normalize turns the shapes a caller may hold (a projected
// resource, a prior ref, a JSON:API relationship linkage, a flat resource
// object) into the canonical types.Ref stored under a data key.
package normalize

import (
	"fmt"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// Options adjust normalization.
type Options struct {
	// IsCollection, when set, overrides the collection flag inferred from a
	// linkage or flat resource input.
	IsCollection *bool
}

// Collection returns Options forcing the collection flag to v.
func Collection(v bool) Options {
	return Options{IsCollection: &v}
}

// ToRef normalizes input into a fresh Ref. Precedence, highest first:
//
//  1. a projected types.Resource (or *types.Resource): its backing ref;
//  2. a types.Ref / *types.Ref: a copy of it;
//  3. an object with a "data" member: a JSON:API linkage;
//  4. an object with "type", "id" and "attributes": a flat resource;
//  5. a *types.Item: a flat resource.
//
// links and meta pass through from the matched shape. The IsCollection
// option applies to shapes 3 to 5 only.
func ToRef(input any, opts Options) (*types.Ref, error) {
	switch v := input.(type) {
	case nil:
		return nil, types.ErrUnrecognizedShape
	case types.Resource:
		return fromResource(&v)
	case *types.Resource:
		return fromResource(v)
	case types.Ref:
		return v.Clone(), nil
	case *types.Ref:
		if v == nil {
			return nil, types.ErrUnrecognizedShape
		}
		return v.Clone(), nil
	case *types.Item:
		if v == nil || v.Type == "" || v.ID == "" {
			return nil, types.ErrUnrecognizedShape
		}
		ref := &types.Ref{Entities: []types.ResourceKey{v.Key()}}
		applyOverride(ref, opts)
		return ref, nil
	case map[string]any:
		return fromObject(v, opts)
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrUnrecognizedShape, input)
	}
}

func fromResource(r *types.Resource) (*types.Ref, error) {
	if r == nil || r.Ref == nil {
		return nil, fmt.Errorf("%w: resource has no backing reference", types.ErrUnrecognizedShape)
	}
	return r.Ref.Clone(), nil
}

func fromObject(obj map[string]any, opts Options) (*types.Ref, error) {
	links, err := objectMember(obj, "links")
	if err != nil {
		return nil, err
	}
	meta, err := objectMember(obj, "meta")
	if err != nil {
		return nil, err
	}

	if data, ok := obj["data"]; ok {
		ref, err := fromLinkage(data)
		if err != nil {
			return nil, err
		}
		ref.Links = types.CloneMap(links)
		ref.Meta = types.CloneMap(meta)
		applyOverride(ref, opts)
		return ref, nil
	}

	_, hasAttrs := obj["attributes"]
	if key, ok := identifier(obj); ok && hasAttrs {
		ref := &types.Ref{
			Entities: []types.ResourceKey{key},
			Links:    types.CloneMap(links),
			Meta:     types.CloneMap(meta),
		}
		applyOverride(ref, opts)
		return ref, nil
	}

	return nil, types.ErrUnrecognizedShape
}

// fromLinkage maps a JSON:API primary data / relationship "data" member.
// null is an empty to-one linkage.
func fromLinkage(data any) (*types.Ref, error) {
	switch d := data.(type) {
	case nil:
		return &types.Ref{Entities: []types.ResourceKey{}}, nil
	case []any:
		keys := make([]types.ResourceKey, 0, len(d))
		for i, el := range d {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", types.ErrInvalidLinkage, i, el)
			}
			key, ok := identifier(obj)
			if !ok {
				return nil, fmt.Errorf("%w: element %d lacks type or id", types.ErrInvalidLinkage, i)
			}
			keys = append(keys, key)
		}
		return &types.Ref{Entities: keys, IsCollection: true}, nil
	case []map[string]any:
		generic := make([]any, len(d))
		for i, el := range d {
			generic[i] = el
		}
		return fromLinkage(generic)
	case map[string]any:
		key, ok := identifier(d)
		if !ok {
			return nil, fmt.Errorf("%w: data lacks type or id", types.ErrInvalidLinkage)
		}
		return &types.Ref{Entities: []types.ResourceKey{key}}, nil
	default:
		return nil, fmt.Errorf("%w: data is %T", types.ErrInvalidLinkage, data)
	}
}

// identifier extracts a complete (type, id) pair from a resource identifier object.
func identifier(obj map[string]any) (types.ResourceKey, bool) {
	typ, ok := obj["type"].(string)
	if !ok || typ == "" {
		return types.ResourceKey{}, false
	}
	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return types.ResourceKey{}, false
	}
	return types.ResourceKey{Type: typ, ID: id}, true
}

func objectMember(obj map[string]any, name string) (map[string]any, error) {
	v, ok := obj[name]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", types.ErrInvalidLinkage, name, v)
	}
	return m, nil
}

func applyOverride(ref *types.Ref, opts Options) {
	if opts.IsCollection != nil {
		ref.IsCollection = *opts.IsCollection
	}
}
