package mysql

import (
	"context"
	"strings"

	"realty_catalog/internal/domain"
)

var orderColumns = map[domain.SortField]string{
	domain.SortCreatedAt: "created_at",
	domain.SortPrice:     "price",
	domain.SortArea:      "COALESCE(area_value, -1)",
	domain.SortTitle:     "LOWER(title)",
	domain.SortRooms:     "rooms",
}

// whereClause renders f as a parameterised WHERE clause scoped to tenantID.
// It mirrors domain.PropertyFilter.Matches.
func whereClause(tenantID string, f domain.PropertyFilter) (string, []any) {
	conds := []string{"tenant_id = ?"}
	args := []any{tenantID}
	add := func(cond string, a ...any) {
		conds = append(conds, cond)
		args = append(args, a...)
	}

	if f.Status != nil {
		add("status = ?", string(*f.Status))
	} else {
		add("status <> ?", string(domain.StatusInactive))
	}
	if f.Type != nil {
		add("type = ?", string(*f.Type))
	}
	if f.Purpose != nil {
		add("purpose = ?", string(*f.Purpose))
	}
	if f.PriceMin != nil {
		add("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		add("price <= ?", *f.PriceMax)
	}
	if f.AreaMin != nil || f.AreaMax != nil {
		add("area_value IS NOT NULL")
	}
	if f.AreaMin != nil {
		add("area_value >= ?", *f.AreaMin)
	}
	if f.AreaMax != nil {
		add("area_value <= ?", *f.AreaMax)
	}
	if f.City != nil {
		add("LOWER(city) LIKE ?", likePattern(*f.City))
	}
	if f.Rooms != nil {
		add("rooms >= ?", *f.Rooms)
	}
	if f.Bathrooms != nil {
		add("bathrooms >= ?", *f.Bathrooms)
	}
	if f.ParkingSpaces != nil {
		add("parking_spaces >= ?", *f.ParkingSpaces)
	}
	if f.Featured != nil {
		add("featured = ?", *f.Featured)
	}
	if f.Search != nil {
		pat := likePattern(*f.Search)
		add("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(city) LIKE ?)", pat, pat, pat)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func orderClause(o domain.Ordering) string {
	col, ok := orderColumns[o.Field]
	if !ok {
		o = domain.DefaultOrdering()
		col = orderColumns[o.Field]
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id ASC"
}

func (r *Repo) SearchProperties(ctx context.Context, tenantID string, q domain.SearchQuery) ([]domain.Property, int, error) {
	where, args := whereClause(tenantID, q.Filter)
	pg := q.Page.Normalize()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties"+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}
	if total == 0 || pg.Offset() >= total {
		return []domain.Property{}, total, nil
	}

	stmt := "SELECT" + propertyColumns + " FROM properties" + where + orderClause(q.Order) + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, stmt, append(args, pg.PageSize, pg.Offset())...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := make([]domain.Property, 0, pg.PageSize)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr(err)
	}
	return out, total, nil
}
