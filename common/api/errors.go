package api

import "fmt"

// General errors. Packages serving their own routes allocate codes above 100.
var (
	ErrNil        = NewBusinessError(0, "Success")
	ErrValidation = NewBusinessError(1, "Invalid parameter")
	ErrInternal   = NewBusinessError(2, "Internal server error")
)

// BusinessError is the JSON envelope of every API response, successful or not.
type BusinessError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func NewBusinessError(code int, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

func (err *BusinessError) Error() string {
	if err.Data == nil {
		return err.Message
	}
	return fmt.Sprintf("%s: %v", err.Message, err.Data)
}

// Is matches business errors by code, so a copy made by WithData still
// matches the error it was made from.
func (err *BusinessError) Is(target error) bool {
	other, ok := target.(*BusinessError)
	return ok && other.Code == err.Code
}

// WithData returns a copy of err carrying data.
func (err *BusinessError) WithData(data interface{}) *BusinessError {
	return &BusinessError{Code: err.Code, Message: err.Message, Data: data}
}
