// Package envelope builds the fixed-shape response body shared by every endpoint.
package envelope

import "github.com/gin-gonic/gin"

// Operation tags.
const (
	OpGet          = "Get"
	OpUpdate       = "Update"
	OpDeletion     = "Deletion"
	OpRegistration = "Registration"
	OpAuth         = "Auth"
)

// Envelope is the response body for success and failure alike.
// Error is null on success; Data is null on failure unless it carries context.
type Envelope struct {
	Operation string  `json:"operation"`
	Message   string  `json:"message"`
	Error     *string `json:"error"`
	Data      any     `json:"data"`
}

// Success builds a success envelope.
func Success(operation, message string, data any) Envelope {
	return Envelope{Operation: operation, Message: message, Data: data}
}

// Failure builds a failure envelope. data may be nil.
func Failure(operation, message, errText string, data any) Envelope {
	return Envelope{Operation: operation, Message: message, Error: &errText, Data: data}
}

// Write sends env with the given status.
func Write(c *gin.Context, status int, env Envelope) {
	c.JSON(status, env)
}

// Abort sends env with the given status and stops the handler chain.
func Abort(c *gin.Context, status int, env Envelope) {
	c.AbortWithStatusJSON(status, env)
}
