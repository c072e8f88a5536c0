package errors

// Registered error codes.
const (
	CodeConfigNotFound = "E100"
	CodeConfigSyntax   = "E101"
	CodeConfigInvalid  = "E102"
	CodeMessagesFile   = "E103"

	CodeValuesRead    = "E120"
	CodeValuesSyntax  = "E121"
	CodeFormInvalid   = "E122"
	CodePromptAborted = "E123"

	CodeSinkConfig   = "E140"
	CodeSubmitFailed = "E141"

	CodeServerStart = "E160"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E119)
	// ============================================

	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "The configuration file given with --config does not exist.",
		Suggestion: "Create addressform.json or omit --config to use the defaults.",
	},
	CodeConfigSyntax: {
		Category: CategoryConfig,
		Message:  "Invalid config syntax",
		Detail:   "The configuration file is not valid JSON.",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range or inconsistent with another value.",
	},
	CodeMessagesFile: {
		Category:   CategoryConfig,
		Message:    "Invalid messages file",
		Detail:     "The messages file must map field names to error kinds to text.",
		Suggestion: "Use keys such as name, email, area, street, pincode and kinds such as required, email, minlength, maxlength.",
	},

	// ============================================
	// Input Errors (E120-E139)
	// ============================================

	CodeValuesRead: {
		Category: CategoryInput,
		Message:  "Cannot read values file",
	},
	CodeValuesSyntax: {
		Category:   CategoryInput,
		Message:    "Invalid values file",
		Detail:     "Values files are JSON or YAML objects with name, email and an address object.",
		Suggestion: `Example: {"name":"Asha","email":"asha@example.com","address":{"area":"Baner","street":"Lane 5","pincode":"411045"}}`,
	},
	CodeFormInvalid: {
		Category: CategoryValidation,
		Message:  "Form is invalid",
		Detail:   "One or more fields failed validation; see the messages above.",
	},
	CodePromptAborted: {
		Category: CategoryCLI,
		Message:  "Prompt aborted",
	},

	// ============================================
	// Submission Errors (E140-E159)
	// ============================================

	CodeSinkConfig: {
		Category: CategorySubmit,
		Message:  "Submission sink unavailable",
		Detail:   "The configured sink could not be created.",
	},
	CodeSubmitFailed: {
		Category: CategorySubmit,
		Message:  "Submission failed",
		Detail:   "The form was valid but the sink did not accept it.",
	},

	// ============================================
	// Server Errors (E160-E179)
	// ============================================

	CodeServerStart: {
		Category:   CategoryServer,
		Message:    "Server failed",
		Suggestion: "Check that the port is free, or pass --port.",
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
