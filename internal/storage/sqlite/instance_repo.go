package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/zaphub/zaphub/internal/storage/model"
)

type instanceRepo struct {
	db *DB
}

func NewInstanceRepository(db *DB) *instanceRepo {
	return &instanceRepo{db: db}
}

func (r *instanceRepo) Create(ctx context.Context, inst model.Instance) (model.Instance, error) {
	now := time.Now()
	inst.CreatedAt = now
	inst.UpdatedAt = now

	query := `
		INSERT INTO instances (instance_id, name, instance_type, is_active, webhook_url, waba_id, access_token, phone_number_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Conn.ExecContext(ctx, query,
		inst.ID, inst.Name, string(inst.Type), inst.IsActive,
		nullIfEmpty(inst.WebhookURL), nullIfEmpty(inst.WabaID), nullIfEmpty(inst.AccessToken), nullIfEmpty(inst.PhoneNumberID),
		inst.CreatedAt.Format(time.RFC3339), inst.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return model.Instance{}, err
	}

	return inst, nil
}

func (r *instanceRepo) GetByID(ctx context.Context, id string) (model.Instance, error) {
	query := `
		SELECT instance_id, name, instance_type, is_active, COALESCE(webhook_url, ''), COALESCE(waba_id, ''), COALESCE(access_token, ''), COALESCE(phone_number_id, ''), created_at, updated_at
		FROM instances
		WHERE instance_id = ?
	`

	var inst model.Instance
	var createdAt, updatedAt string

	err := r.db.Conn.QueryRowContext(ctx, query, id).Scan(
		&inst.ID, &inst.Name, &inst.Type, &inst.IsActive, &inst.WebhookURL, &inst.WabaID, &inst.AccessToken, &inst.PhoneNumberID, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Instance{}, mapError(err)
	}

	inst.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	inst.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return inst, nil
}

func (r *instanceRepo) List(ctx context.Context) ([]model.Instance, error) {
	query := `
		SELECT instance_id, name, instance_type, is_active, COALESCE(webhook_url, ''), COALESCE(waba_id, ''), COALESCE(access_token, ''), COALESCE(phone_number_id, ''), created_at, updated_at
		FROM instances
		ORDER BY created_at DESC
	`

	rows, err := r.db.Conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []model.Instance
	for rows.Next() {
		var inst model.Instance
		var createdAt, updatedAt string

		if err := rows.Scan(
			&inst.ID, &inst.Name, &inst.Type, &inst.IsActive, &inst.WebhookURL, &inst.WabaID, &inst.AccessToken, &inst.PhoneNumberID, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}

		inst.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		inst.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		instances = append(instances, inst)
	}

	return instances, rows.Err()
}

func (r *instanceRepo) UpdateWebhookURL(ctx context.Context, id, webhookURL string) error {
	query := `UPDATE instances SET webhook_url = ?, updated_at = ? WHERE instance_id = ?`
	result, err := r.db.Conn.ExecContext(ctx, query, nullIfEmpty(webhookURL), time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return mapError(sql.ErrNoRows)
	}
	return nil
}

func (r *instanceRepo) UpdateActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE instances SET is_active = ?, updated_at = ? WHERE instance_id = ?`
	result, err := r.db.Conn.ExecContext(ctx, query, active, time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return mapError(sql.ErrNoRows)
	}
	return nil
}

func (r *instanceRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM instances WHERE instance_id = ?`
	result, err := r.db.Conn.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return mapError(sql.ErrNoRows)
	}
	return nil
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
