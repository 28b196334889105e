package executor

import "fmt"

// MinTimeoutMs is the lower bound for a requested timeout. Anything shorter
// would kill legitimate interpreter startup.
const MinTimeoutMs = 1000

// ValidationError rejects a request before any subprocess is spawned.
// The HTTP layer maps it to a 400 response; everything else the engine
// returns is either an internal fault or a structured Result.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// validate checks the request against the configured bounds and normalizes
// the language. An invalid request never reaches the filesystem or spawns a
// process.
func (e *Engine) validate(req *Request) error {
	if req.Code == "" {
		return validationErrorf("code is required and must be a non-empty string")
	}
	if len(req.Code) > e.cfg.MaxCodeBytes {
		return validationErrorf("code exceeds maximum size of %d bytes", e.cfg.MaxCodeBytes)
	}

	switch req.Language {
	case "":
		req.Language = LanguageTypeScript
	case LanguageTypeScript, LanguagePython:
	default:
		return validationErrorf("unsupported language %q (expected typescript or python)", req.Language)
	}

	if req.TimeoutMs < MinTimeoutMs || req.TimeoutMs > e.cfg.MaxTimeoutMs {
		return validationErrorf("timeout %dms outside allowed range [%d, %d]",
			req.TimeoutMs, MinTimeoutMs, e.cfg.MaxTimeoutMs)
	}
	return nil
}
