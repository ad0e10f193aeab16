package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope é o formato único de resposta da API: status OK ou ERR e o corpo
// em response. Respostas dos fornecedores já chegam nesse formato e são
// repassadas como estão.
type Envelope struct {
	Status   string      `json:"status"`
	Response interface{} `json:"response"`
}

const (
	StatusOK  = "OK"
	StatusErr = "ERR"
)

func Success(c *gin.Context, httpStatus int, data interface{}) {
	c.JSON(httpStatus, Envelope{Status: StatusOK, Response: data})
}

func Error(c *gin.Context, httpStatus int, err error) {
	c.JSON(httpStatus, Envelope{Status: StatusErr, Response: gin.H{"error": err.Error()}})
}

func ErrorWithMessage(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, Envelope{Status: StatusErr, Response: gin.H{"error": msg}})
}

// Raw envia um envelope já montado (ex.: repassado de um fornecedor).
func Raw(c *gin.Context, httpStatus int, env Envelope) {
	c.JSON(httpStatus, env)
}
