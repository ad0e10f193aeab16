package postgres

import (
	"context"
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING instance_id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		inst.ID, inst.Name, string(inst.Type), inst.IsActive,
		nullIfEmpty(inst.WebhookURL), nullIfEmpty(inst.WabaID), nullIfEmpty(inst.AccessToken), nullIfEmpty(inst.PhoneNumberID),
		inst.CreatedAt, inst.UpdatedAt,
	).Scan(&inst.ID)

	if err != nil {
		return model.Instance{}, err
	}

	return inst, nil
}

func (r *instanceRepo) GetByID(ctx context.Context, id string) (model.Instance, error) {
	query := `
		SELECT instance_id, name, instance_type, is_active, COALESCE(webhook_url, ''), COALESCE(waba_id, ''), COALESCE(access_token, ''), COALESCE(phone_number_id, ''), created_at, updated_at
		FROM instances
		WHERE instance_id = $1
	`

	var inst model.Instance

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&inst.ID, &inst.Name, &inst.Type, &inst.IsActive, &inst.WebhookURL, &inst.WabaID, &inst.AccessToken, &inst.PhoneNumberID, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return model.Instance{}, mapError(err)
	}

	return inst, nil
}

func (r *instanceRepo) List(ctx context.Context) ([]model.Instance, error) {
	query := `
		SELECT instance_id, name, instance_type, is_active, COALESCE(webhook_url, ''), COALESCE(waba_id, ''), COALESCE(access_token, ''), COALESCE(phone_number_id, ''), created_at, updated_at
		FROM instances
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []model.Instance
	for rows.Next() {
		var inst model.Instance
		if err := rows.Scan(
			&inst.ID, &inst.Name, &inst.Type, &inst.IsActive, &inst.WebhookURL, &inst.WabaID, &inst.AccessToken, &inst.PhoneNumberID, &inst.CreatedAt, &inst.UpdatedAt,
		); err != nil {
			return nil, err
		}

		instances = append(instances, inst)
	}

	return instances, rows.Err()
}

func (r *instanceRepo) UpdateWebhookURL(ctx context.Context, id, webhookURL string) error {
	query := `UPDATE instances SET webhook_url = $2, updated_at = $3 WHERE instance_id = $1`
	result, err := r.db.Pool.Exec(ctx, query, id, nullIfEmpty(webhookURL), time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *instanceRepo) UpdateActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE instances SET is_active = $2, updated_at = $3 WHERE instance_id = $1`
	result, err := r.db.Pool.Exec(ctx, query, id, active, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *instanceRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM instances WHERE instance_id = $1`
	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
