package mdb

const (
	// Success is the engine's success status.
	Success = 0

	// APIError is the status for binding-level usage errors. It lies just
	// below the engine's error code range and never collides with it.
	APIError = -30800
)

const apiErrorMessage = "API_ERROR: internal error in mdbsh binding"

// errorChannel holds the status of the most recent call.
type errorChannel struct {
	code    int
	message string
}

func (c *errorChannel) reset() {
	c.code = Success
	c.message = ""
}

func (c *errorChannel) set(code int, message string) {
	c.code = code
	c.message = message
}

func (c *errorChannel) fail(err *Error) {
	c.set(err.Code, err.Error())
}
