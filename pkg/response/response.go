// Package response defines the JSON envelope every API endpoint answers
// with, so clients can branch on status/status_code uniformly.
package response

// Response is the uniform API envelope
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success wraps data in a success envelope
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps an error message in an error envelope
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Paginated wraps one page of a listing together with its count metadata.
// The rows keep their domain key, so clients read data.submissions,
// data.medicines, and so on.
func Paginated(statusCode int, key string, rows interface{}, total int64, page, limit int) Response {
	return Success(statusCode, map[string]interface{}{
		key:     rows,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
