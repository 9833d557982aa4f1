package controllers

// CustomError carries a fixed user-facing message.
type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

var (
	ErrNoPermission = &CustomError{"You do not have permission"}
	ErrBadPIN       = &CustomError{"code PIN invalide"}
)
