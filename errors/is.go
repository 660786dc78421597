package errors

import stderrors "errors"

// Is lets callers match sentinels without importing both error packages.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }
