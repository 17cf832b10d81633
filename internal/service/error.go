package service

import "fmt"

// ServiceError is a failure the caller can act on. StatusCode is the HTTP
// status it maps to and Msg is safe to show to clients.
type ServiceError struct {
	Err        error
	Msg        string
	StatusCode int
	Env        map[string]string
}

func NewServiceError(err error, statusCode int, msg string, args ...any) *ServiceError {
	return &ServiceError{
		Err:        err,
		Msg:        fmt.Sprintf(msg, args...),
		StatusCode: statusCode,
		Env:        make(map[string]string),
	}
}

func (e *ServiceError) Error() string {
	return e.Msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
