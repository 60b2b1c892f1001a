// Package cache keeps recently read pages of a paged file in memory.
//
// Pages is bounded in bytes and evicts the least recently used page first.
// Writes and frees drop the pages they touch. When a resource.Controller is
// supplied, cached bytes count against its memory limit and a page the
// controller refuses is simply not cached. A nil *Pages caches nothing.
package cache
