// Package dashboard assembles the combined analytics payload served to the
// dashboard UI. Each metric category is computed in isolation: a failing data
// source degrades that category to its zero-valued default instead of failing
// the whole payload.
package dashboard
