package errors

// template is the registered text of a diagnostic code.
type template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

var registry = map[string]template{
	// Compiler (G001-G099)

	"G001": {
		Category: CategorySyntax,
		Message:  "malformed markup",
		Detail:   "The markup could not be read. Tags, attributes and {expressions} must be balanced.",
	},
	"G002": {
		Category:   CategorySyntax,
		Message:    "generated code does not parse",
		Detail:     "After lowering the markup the file is not valid Go. The position points at the Go code around the markup.",
		Suggestion: "Markup is only recognized where a Go operand can start; check the code right before the tag.",
	},
	"G003": {
		Category:   CategorySyntax,
		Message:    "runtime import name taken",
		Detail:     "Compiled files call the runtime through the name h, so h cannot be imported from another package.",
		Suggestion: `Import the other package under a different name, e.g. import html "example.com/h".`,
	},
	"G004": {
		Category:   CategorySyntax,
		Message:    "mismatched closing tag",
		Suggestion: "Close elements in the reverse order they were opened.",
	},
	"G005": {
		Category:   CategorySyntax,
		Message:    "invalid directive attribute",
		Detail:     "ref and on* attributes need a Go expression: a variable to assign, or a function.",
		Suggestion: "Write ref={node} or onClick={handle}.",
	},

	// Configuration (C001-C099)

	"C001": {
		Category:   CategoryConfig,
		Message:    "configuration file not found",
		Suggestion: "Run hyperc from the project root or pass --config.",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "invalid configuration",
	},

	// Dev server (W001-W099)

	"W001": {
		Category: CategoryWatch,
		Message:  "cannot watch source directory",
		Detail:   "The file watcher could not be started. On Linux, the inotify watch limit may be too low.",
	},
	"W002": {
		Category: CategoryWatch,
		Message:  "dev server failed",
	},

	// CLI (X001-X099)

	"X001": {
		Category: CategoryCLI,
		Message:  "build failed",
	},
	"X002": {
		Category: CategoryCLI,
		Message:  "cannot create project",
	},
}

// Registered reports whether code has a registered template.
func Registered(code string) bool {
	_, ok := registry[code]
	return ok
}
