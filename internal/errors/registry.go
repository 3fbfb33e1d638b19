package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (W001-W099)
	// ============================================

	"W001": {
		Category: CategoryValidation,
		Message:  "Invalid route pattern",
		Detail:   "The route path pattern could not be compiled. Patterns may contain literal segments, :name parameters, * and ** splats, and ( ) optional groups.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W001",
	},
	"W002": {
		Category: CategoryValidation,
		Message:  "Index route must not declare a path",
		Detail:   "An index route renders when its parent matches with nothing left of the pathname; giving it a path of its own can never match.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W002",
	},
	"W003": {
		Category: CategoryConfig,
		Message:  "Route manifest could not be read",
		Detail:   "The route manifest file or object was missing or unreadable.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W003",
	},
	"W004": {
		Category: CategoryConfig,
		Message:  "Route manifest is malformed",
		Detail:   "The route manifest did not parse as YAML or declared conflicting fields (for example both component and components on one route).",
		DocURL:   "https://vango.dev/docs/waymark/errors/W004",
	},

	// ============================================
	// Resolution Errors (W101-W199)
	// ============================================

	"W101": {
		Category: CategoryResolution,
		Message:  "Child route loader failed",
		Detail:   "A deferred child-route loader reported an error. The in-flight transition was aborted and the previously committed state was kept.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W101",
	},
	"W102": {
		Category: CategoryResolution,
		Message:  "Index route loader failed",
		Detail:   "A deferred index-route loader reported an error.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W102",
	},
	"W103": {
		Category: CategoryResolution,
		Message:  "Component loader failed",
		Detail:   "A deferred component loader reported an error, typically a failed code-split load.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W103",
	},
	"W104": {
		Category: CategoryResolution,
		Message:  "Absolute path in dynamically loaded routes",
		Detail:   "A route loaded at runtime declared a path starting with \"/\". Absolute paths are only honored in the statically configured tree; enable dynamic absolute paths explicitly if you need them.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W104",
	},

	// ============================================
	// Navigation Errors (W201-W299)
	// ============================================

	"W201": {
		Category: CategoryNavigation,
		Message:  "Redirect loop detected",
		Detail:   "Chained redirects exceeded the configured limit within a single navigation. The navigation failed and the previous state was kept.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W201",
	},
	"W202": {
		Category: CategoryNavigation,
		Message:  "Route hook failed",
		Detail:   "An onEnter or onChange hook returned an error, aborting the transition.",
		DocURL:   "https://vango.dev/docs/waymark/errors/W202",
	},
}

// Lookup returns the registered template for a code, if any.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
