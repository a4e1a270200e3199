package rewriter

import "github.com/cryguy/jsrewriter/internal/model"

// IsUnsafeGlobal reports whether name is a member of the closed
// UNSAFE_GLOBALS set (spec.md §3). Exported so embedding services can
// validate their own shim config (e.g. refuse a wrapfn name that collides
// with an unsafe global). The set itself lives in internal/model so
// internal/visitor and internal/modscan can share it without an import
// cycle back through this package.
func IsUnsafeGlobal(name string) bool {
	return model.IsUnsafeGlobal(name)
}

// IsUnsafeAssignmentTarget reports whether name's assignment must be routed
// through the runtime's try-set guard (spec.md §4.1, currently "location").
func IsUnsafeAssignmentTarget(name string) bool {
	return model.IsUnsafeAssignmentTarget(name)
}
