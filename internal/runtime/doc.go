// Package runtime drives a generation run: it builds render contexts for
// inventory entities, walks page trees against the wiki, and orchestrates
// the per-entity and view passes.
package runtime
