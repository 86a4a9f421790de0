package mysql

import (
	"context"
	"database/sql"

	"realty_catalog/internal/domain"
)

func (r *Repo) InsertLead(ctx context.Context, l domain.Lead) error {
	_, err := r.db.ExecContext(ctx, insertLeadSQL,
		l.ID,
		l.TenantID,
		valStrPtr(l.PropertyID),
		l.Name,
		valStr(l.Email),
		valStr(l.Phone),
		valStr(l.WhatsApp),
		valStr(l.Message),
		string(l.Interest),
		string(l.Status),
		l.CreatedAt,
	)
	return mapErr(err)
}

func (r *Repo) GetLead(ctx context.Context, tenantID, id string) (domain.Lead, error) {
	l, err := scanLead(r.db.QueryRowContext(ctx, getLeadSQL, tenantID, id))
	return l, mapErr(err)
}

// ListLeads returns the newest leads first.
func (r *Repo) ListLeads(ctx context.Context, tenantID string, q domain.LeadQuery) ([]domain.Lead, int, error) {
	where := " WHERE tenant_id = ?"
	args := []any{tenantID}
	if q.Status != nil {
		where += " AND status = ?"
		args = append(args, string(*q.Status))
	}
	pg := q.Page.Normalize()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads"+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}
	if total == 0 || pg.Offset() >= total {
		return []domain.Lead{}, total, nil
	}

	stmt := "SELECT" + leadColumns + " FROM leads" + where + " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, stmt, append(args, pg.PageSize, pg.Offset())...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, mapErr(rows.Err())
}

func (r *Repo) UpdateLeadStatus(ctx context.Context, tenantID, id string, status domain.LeadStatus) (domain.Lead, error) {
	if _, err := r.db.ExecContext(ctx, updateLeadStatusSQL, string(status), tenantID, id); err != nil {
		return domain.Lead{}, mapErr(err)
	}
	// Affected rows are 0 for a no-op update too, so read back to detect a miss.
	return r.GetLead(ctx, tenantID, id)
}

func scanLead(s scanner) (domain.Lead, error) {
	var l domain.Lead
	var (
		propertyID                      sql.NullString
		email, phone, whatsapp, message sql.NullString
		interest, status                string
	)
	if err := s.Scan(
		&l.ID, &l.TenantID, &propertyID, &l.Name,
		&email, &phone, &whatsapp, &message,
		&interest, &status, &l.CreatedAt,
	); err != nil {
		return domain.Lead{}, err
	}
	if propertyID.Valid {
		id := propertyID.String
		l.PropertyID = &id
	}
	l.Email = email.String
	l.Phone = phone.String
	l.WhatsApp = whatsapp.String
	l.Message = message.String
	l.Interest = domain.Interest(interest)
	l.Status = domain.LeadStatus(status)
	l.CreatedAt = l.CreatedAt.UTC()
	return l, nil
}
