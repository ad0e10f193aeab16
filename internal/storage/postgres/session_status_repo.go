package postgres

import (
	"context"
)

// sessionStatusRepo consulta a tabela "Instance" mantida pelo próprio
// Evolution API. O schema (aspas incluídas) é do fornecedor: a coluna
// "connectionStatus" é indexada pelo token da sessão, que aqui coincide com
// o instance_id do registro local.
type sessionStatusRepo struct {
	db *DB
}

func NewSessionStatusRepository(db *DB) *sessionStatusRepo {
	return &sessionStatusRepo{db: db}
}

func (r *sessionStatusRepo) ConnectionStatus(ctx context.Context, token string) (string, error) {
	query := `SELECT "connectionStatus" FROM "Instance" WHERE token = $1`

	var status string
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(&status)
	if err != nil {
		return "", mapError(err)
	}
	return status, nil
}
