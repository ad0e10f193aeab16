package dispatcher

import "errors"

// Sentinelas de falha do dispatcher. O handler traduz cada um em um código
// HTTP; o corpo da resposta continua sendo o envelope do fornecedor quando
// houver um.
var (
	ErrInstanceNotFound  = errors.New("instância não encontrada")
	ErrInstanceNotActive = errors.New("instância não conectada")
	ErrValidation        = errors.New("requisição inválida")
	ErrUnsupportedType   = errors.New("operação não suportada pelo tipo da instância")
	ErrVendorUnreachable = errors.New("fornecedor inacessível")
	ErrVendorRejected    = errors.New("fornecedor recusou a operação")
	ErrPersistence       = errors.New("falha de persistência")
)
