// Package errors provides the classified error type used across linklocal.
//
// A ClassifiedError carries a category (config, network, http, filesystem, ...),
// a severity and a retry strategy. Errors are built with the fluent ErrorBuilder:
//
//	err := errors.WrapError(cause, errors.CategoryHTTP, "download failed").
//		WithContext("url", link).
//		Retryable().
//		Build()
//
// The CLI adapter turns classified errors into exit codes and user-facing text.
package errors
