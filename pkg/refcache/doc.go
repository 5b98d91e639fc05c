// Package refcache is the public entry point to the normalized resource
// cache. A Cache owns one state snapshot, applies lifecycle events to it
// one at a time, and projects data keys into caller-facing resources.
//
// Example:
//
//	c := refcache.New(refcache.WithLogger(logger))
//	_, _ = c.Send(ctx, "articles", types.MethodGet)
//	ev, _ := refcache.DocumentEvent("articles", body)
//	_ = c.Dispatch(ctx, ev)
//	view := c.ProjectKey("articles")
package refcache

// Version is the library and CLI version.
const Version = "0.1.0"
