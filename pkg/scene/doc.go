// Package scene holds the entity model and the scene registry.
//
// The registry is an arena keyed by unique entity name. Entities refer to
// each other by name only, so a point shared by several segments, faces and
// planes is a single arena entry: moving it moves everything built on it.
// All mutation goes through Registry methods, which validate before they
// touch the arena and notify subscribers afterwards.
package scene
