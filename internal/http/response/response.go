package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondOK writes payload's keys next to "success": true.
func RespondOK(c *gin.Context, payload gin.H) {
	respond(c, http.StatusOK, "", payload)
}

func RespondCreated(c *gin.Context, payload gin.H) {
	respond(c, http.StatusCreated, "", payload)
}

func RespondMessage(c *gin.Context, msg string, payload gin.H) {
	respond(c, http.StatusOK, msg, payload)
}

func respond(c *gin.Context, status int, msg string, payload gin.H) {
	out := gin.H{"success": true}
	if msg != "" {
		out["message"] = msg
	}
	for k, v := range payload {
		if k == "success" {
			continue
		}
		out[k] = v
	}
	c.JSON(status, out)
}
