package export

import "errors"

// Error kinds. Match them with errors.Is on any error returned by the Exporter.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrAcquisition   = errors.New("acquisition error")
	ErrDecode        = errors.New("decode error")
	ErrReentrancy    = errors.New("reentrancy error")
	ErrOutput        = errors.New("output error")
)

// JobError aborts an export. Message is shown to the user as-is.
type JobError struct {
	Kind    error
	Message string
	Err     error
}

func (e *JobError) Error() string {
	return e.Message
}

func (e *JobError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newJobError(kind error, message string, err error) *JobError {
	return &JobError{Kind: kind, Message: message, Err: err}
}
