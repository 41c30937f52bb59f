package errors

// Convenience functions for the classification error taxonomy

// Configuration errors

func ConfigLoadFailed(path string, cause error) *TaggerError {
	return Wrap(cause, CategoryConfigLoad, SeverityFatal, "configuration could not be loaded").
		WithContext("path", path)
}

func ConfigValidationFailed(path string, issues []string) *TaggerError {
	return New(CategoryConfigValidation, SeverityFatal, "configuration validation failed").
		WithContext("path", path).
		WithContext("issues", issues)
}

func ConfigNotFound(path string) *TaggerError {
	return New(CategoryConfigNotFound, SeverityFatal, "configuration not found").
		WithContext("path", path)
}

func CircularInheritance(chain []string) *TaggerError {
	return New(CategoryCircular, SeverityFatal, "circular inheritance detected").
		WithContext("chain", chain)
}

// Matching errors

func InvalidPattern(pattern, reason string) *TaggerError {
	return New(CategoryInvalidPattern, SeverityError, "invalid pattern").
		WithContext("pattern", pattern).
		WithContext("reason", reason)
}

func InvalidPatternCause(pattern string, cause error) *TaggerError {
	return Wrap(cause, CategoryInvalidPattern, SeverityError, "invalid pattern").
		WithContext("pattern", pattern)
}

func VersionParse(version string) *TaggerError {
	return New(CategoryVersionParse, SeverityError, "invalid version string").
		WithContext("version", version)
}

// Internal errors

func InternalError(message string, cause error) *TaggerError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
