package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaphub/zaphub/internal/pkg/response"
	"github.com/zaphub/zaphub/internal/provider/status"
	"github.com/zaphub/zaphub/internal/service/dispatcher"
)

// respond traduz o resultado do dispatcher em código HTTP, preservando o
// envelope (e, com ele, o corpo do fornecedor) como corpo da resposta.
func respond(c *gin.Context, st status.Status, err error) {
	code := http.StatusOK
	switch {
	case err == nil:
		code = http.StatusOK
	case errors.Is(err, dispatcher.ErrInstanceNotFound):
		code = http.StatusNotFound
	case errors.Is(err, dispatcher.ErrInstanceNotActive):
		code = http.StatusConflict
	case errors.Is(err, dispatcher.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, dispatcher.ErrUnsupportedType):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, dispatcher.ErrVendorUnreachable), errors.Is(err, dispatcher.ErrVendorRejected):
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
	}

	response.Raw(c, code, response.Envelope{Status: st.Code, Response: st.Body})
}
