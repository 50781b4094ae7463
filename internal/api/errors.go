package api

import "fmt"

// HTTPError is returned when the backend answers with a non-2xx
// status. Any non-success status is a failure regardless of body
// content; in particular a 404 on a step call (backend restarted and
// forgot the session) is an HTTPError, not a recoverable condition.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// NetworkError is returned when the request never produced an HTTP
// response: connection refused, DNS failure, canceled context.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
