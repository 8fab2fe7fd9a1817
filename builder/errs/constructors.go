package errs

import "fmt"

// Structural errors

func Conflict(url, first, second string) *BuildError {
	return New(CategoryConflict, SeverityFatal, first,
		fmt.Sprintf("url %s is also produced by %s", url, second)).
		WithContext("url", url).
		WithContext("other", second)
}

func MissingField(path, field string) *BuildError {
	return New(CategoryMissingField, SeverityFatal, path,
		fmt.Sprintf("missing %q required to sort its section", field)).
		WithContext("field", field)
}

// Render errors

func BrokenReference(source, target string, fatal bool) *BuildError {
	sev := SeverityWarning
	if fatal {
		sev = SeverityFatal
	}
	return New(CategoryBrokenReference, sev, source,
		fmt.Sprintf("link to %s does not match any document", target)).
		WithContext("target", target)
}

func MalformedMarkup(path, reason string, fatal bool) *BuildError {
	sev := SeverityError
	if fatal {
		sev = SeverityFatal
	}
	return New(CategoryMalformedMarkup, sev, path, reason)
}

// Config errors

func ConfigInvalid(field, reason string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "", reason).
		WithContext("field", field)
}

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, "", message)
}
