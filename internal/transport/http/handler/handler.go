package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"qa-assignment-api/internal/transport/http/ez"
	resp "qa-assignment-api/internal/transport/http/response"
)

type idURI struct {
	ID int `uri:"id"`
}

type message struct {
	Message string `json:"message"`
}

// paramID parses :id for routes that also bind a body or query.
func paramID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, &ez.AErr{Code: resp.CodeValidation, Msg: "id must be an integer", Err: err}
	}
	return id, nil
}
