package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (TB100-TB199)

	"TB101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The file passed with --config does not exist or cannot be read.",
	},
	"TB102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed. JSON and YAML files are supported.",
	},
	"TB103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong format.",
	},
	"TB104": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
	},
	"TB105": {
		Category: CategoryConfig,
		Message:  "Configuration watch failed",
		Detail:   "The configuration file could not be watched for changes. The server keeps running with the loaded values.",
	},

	// Task API (TB200-TB299)

	"TB201": {
		Category: CategoryAPI,
		Message:  "Task API unreachable",
		Detail:   "The request to the task API did not complete. Check the api.base_url setting and your network connection.",
	},
	"TB202": {
		Category: CategoryAPI,
		Message:  "Task API request failed",
		Detail:   "The task API answered with an error status.",
	},
	"TB203": {
		Category: CategoryAPI,
		Message:  "Unexpected task API response",
		Detail:   "The task API answered with a body that is not a valid task list.",
	},

	// Export (TB300-TB399)

	"TB301": {
		Category: CategoryExport,
		Message:  "Export bucket not configured",
		Detail:   "Set export.bucket in the configuration file or pass --bucket.",
	},
	"TB302": {
		Category: CategoryExport,
		Message:  "Export upload failed",
		Detail:   "The task snapshot could not be written to object storage.",
	},
	"TB303": {
		Category: CategoryExport,
		Message:  "Export encoding failed",
		Detail:   "The task snapshot could not be encoded.",
	},

	// Server (TB400-TB499)

	"TB401": {
		Category: CategoryServer,
		Message:  "Server failed to start",
		Detail:   "The HTTP listener could not be opened. Another process may be using the address.",
	},
	"TB402": {
		Category: CategoryServer,
		Message:  "Server stopped with an error",
		Detail:   "The server exited unexpectedly.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
