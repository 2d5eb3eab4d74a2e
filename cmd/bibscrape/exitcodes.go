package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (unreadable config, missing remote host)
	ExitDataError    = 3 // Data error (malformed library, not a URL or PDF)
	ExitNetworkError = 4 // Page, search or remote host unreachable
	ExitNotFound     = 5 // Key not in library, or no page found for a PDF
)
