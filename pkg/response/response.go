package response

import "invoicer/pkg/pagination"

// Response is the JSON envelope of every API reply: success flag, optional
// message, payload or error text.
type Response struct {
	Success    bool             `json:"success"`
	StatusCode int              `json:"status_code"`
	Message    string           `json:"message,omitempty"`
	Data       interface{}      `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// Success wraps data in a successful response
func Success(statusCode int, data interface{}) Response {
	return Response{
		Success:    true,
		StatusCode: statusCode,
		Data:       data,
	}
}

// SuccessWithMessage is Success with a human readable message
func SuccessWithMessage(statusCode int, message string, data interface{}) Response {
	r := Success(statusCode, data)
	r.Message = message
	return r
}

// SuccessWithPagination wraps one page of a list
func SuccessWithPagination(statusCode int, data interface{}, meta pagination.Meta) Response {
	r := Success(statusCode, data)
	r.Pagination = &meta
	return r
}

// Error returns a failed response carrying the error message
func Error(statusCode int, err string) Response {
	return Response{
		Success:    false,
		StatusCode: statusCode,
		Message:    err,
		Error:      err,
	}
}
