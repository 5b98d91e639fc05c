// Package types defines the data model of the resource cache: entities,
// references, request statuses, the events that drive them, the projected
// resource views handed to callers, and the Backend interface used to
// persist a cache between processes.
package types
