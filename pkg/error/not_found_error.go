package error

import "net/http"

// NotFoundError reports a missing or hidden record. Drafts read through a
// public route use it as well, so the response never reveals they exist.
type NotFoundError string

// NotFound builds the message every repository-backed service uses.
func NotFound(kind, id string) NotFoundError {
	return NotFoundError(kind + " " + id + " not found")
}

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}
