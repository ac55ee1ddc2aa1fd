package errors

import "fmt"

var (
	ErrEmptyBody         = fmt.Errorf("message body is empty")
	ErrBodyTooLong       = fmt.Errorf("message body exceeds the configured maximum length")
	ErrUnknownSender     = fmt.Errorf("sender is not present in the user directory")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrStoreUnavailable  = fmt.Errorf("message store is unavailable")
	ErrDeliveryDropped   = fmt.Errorf("connection send buffer is full")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)
