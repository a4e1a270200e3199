package model

// UnsafeGlobals is the closed set of identifier names the visitor treats as
// sensitive: guest code must never hold a bare reference to any of these,
// since each one is a route out of the sandbox (reaching the real window,
// navigating the real location, calling the real eval, ...). Lives in
// internal/model (not the root package) so internal/visitor and
// internal/modscan can read it without an import cycle.
var UnsafeGlobals = map[string]bool{
	"window":     true,
	"self":       true,
	"globalThis": true,
	"this":       true,
	"parent":     true,
	"top":        true,
	"location":   true,
	"document":   true,
	"eval":       true,
	"frames":     true,
}

// IsUnsafeGlobal reports whether name is a member of the closed unsafe-global
// set.
func IsUnsafeGlobal(name string) bool {
	return UnsafeGlobals[name]
}

// UnsafeAssignmentTargets is the set of bare identifiers whose assignment
// must be routed through the runtime's try-set guard. Only "location" is a
// member today; the data model admits future members (spec.md §4.1).
var UnsafeAssignmentTargets = map[string]bool{
	"location": true,
}

// IsUnsafeAssignmentTarget reports whether name's assignment must be
// guarded through the try-set template.
func IsUnsafeAssignmentTarget(name string) bool {
	return UnsafeAssignmentTargets[name]
}
