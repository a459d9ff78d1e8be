// Package errs provides the typed errors shared by the order engine.
//
// The package includes:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is malformed or violates a rule
//   - ValueIsOutOfRangeError: a value is outside its allowed bounds
//   - ObjectNotFoundError: an object cannot be found
//   - ForbiddenError: an actor is not allowed to act on an object
//   - StorageUnavailableError: the store could not serve the request in time
//
// Each error type follows the same pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is works across wrapping
//
// The three value errors together form the validation class; IsValidation
// reports membership.
package errs
