package types

import "github.com/m-mizutani/goerr/v2"

// Version is overwritten at build time with -ldflags
var Version = "dev"

// Error tags used to classify failures across layers
var (
	// ErrTagAuthentication marks a missing or invalid webhook signature
	ErrTagAuthentication = goerr.NewTag("authentication")
	// ErrTagAuthorization marks a commenter or pull request that may not be acted upon
	ErrTagAuthorization = goerr.NewTag("authorization")
	// ErrTagConflict marks a branch that is already claimed by another run
	ErrTagConflict = goerr.NewTag("conflict")
	// ErrTagExternalTool marks a failed git or build tool invocation
	ErrTagExternalTool = goerr.NewTag("external_tool")
	// ErrTagTimeout marks a build step that exceeded its time limit
	ErrTagTimeout = goerr.NewTag("timeout")
	// ErrTagConfig marks invalid or missing configuration
	ErrTagConfig = goerr.NewTag("config")
	// ErrTagInvalidPayload marks a webhook payload lacking required fields
	ErrTagInvalidPayload = goerr.NewTag("invalid_payload")
)
