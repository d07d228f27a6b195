package core

// ValidationError marks client input errors; handlers answer them with 400.
type ValidationError struct {
	Err error
}

func NewValidationError(err error) error {
	return &ValidationError{err}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}
