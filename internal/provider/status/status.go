package status

import (
	"encoding/json"
	"fmt"
)

const (
	OK  = "OK"
	ERR = "ERR"
)

// Status é o envelope com que toda resposta de fornecedor circula pelo
// sistema: código OK/ERR e o corpo JSON decodificado. O corpo é repassado
// ao cliente sem reescrita.
type Status struct {
	Code string                 `json:"status"`
	Body map[string]interface{} `json:"response"`
}

func (s Status) IsOK() bool {
	return s.Code == OK
}

// FromResponse monta o envelope a partir de uma resposta HTTP crua.
// Corpo que não é JSON (HTML de proxy, texto de erro) não é perdido:
// entra embrulhado em raw_response.
func FromResponse(httpStatus int, raw []byte) Status {
	code := ERR
	if httpStatus >= 200 && httpStatus < 300 {
		code = OK
	}

	body := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = map[string]interface{}{"raw_response": string(raw)}
		}
	}

	return Status{Code: code, Body: body}
}

// WithMessage cria um envelope de erro local, sem resposta de fornecedor.
func WithMessage(code, msg string) Status {
	return Status{Code: code, Body: map[string]interface{}{"message": msg}}
}

func Errorf(format string, args ...interface{}) Status {
	return WithMessage(ERR, fmt.Sprintf(format, args...))
}

// Merge combina dois corpos OK em um só (ex.: connect + QR do Wuzapi).
// Chaves do segundo sobrescrevem as do primeiro.
func Merge(a, b Status) Status {
	merged := make(map[string]interface{}, len(a.Body)+len(b.Body))
	for k, v := range a.Body {
		merged[k] = v
	}
	for k, v := range b.Body {
		merged[k] = v
	}
	code := ERR
	if a.IsOK() && b.IsOK() {
		code = OK
	}
	return Status{Code: code, Body: merged}
}
