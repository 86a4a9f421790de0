package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	gomysql "github.com/go-sql-driver/mysql"

	"realty_catalog/internal/domain"
)

const mysqlDuplicateEntry = 1062

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valStrPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Repo is the MySQL-backed property and lead store.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var (
	_ domain.PropertyRepository = (*Repo)(nil)
	_ domain.LeadRepository     = (*Repo)(nil)
)

// mapErr translates driver errors into domain errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", domain.ErrConflict, me.Message)
	}
	var ne net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn) || errors.As(err, &ne) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

func (r *Repo) InsertProperty(ctx context.Context, p domain.Property) error {
	imgs, _ := json.Marshal(nonNil(p.Images))
	areaVal, areaUnit := areaArgs(p.Area)
	_, err := r.db.ExecContext(ctx, insertPropertySQL,
		p.ID,
		p.TenantID,
		p.Slug,
		p.Title,
		p.Description,
		string(p.Type),
		string(p.Purpose),
		string(p.Status),
		p.Price.Amount,
		p.Price.Currency,
		p.Location.City,
		valStr(p.Location.State),
		valStr(p.Location.Country),
		valStr(p.Location.Address),
		valF64(p.Location.Lat),
		valF64(p.Location.Lng),
		areaVal,
		areaUnit,
		p.Rooms,
		p.Bathrooms,
		p.ParkingSpaces,
		string(imgs),
		p.Featured,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapErr(err)
}

func (r *Repo) UpdateProperty(ctx context.Context, p domain.Property) error {
	imgs, _ := json.Marshal(nonNil(p.Images))
	areaVal, areaUnit := areaArgs(p.Area)
	res, err := r.db.ExecContext(ctx, updatePropertySQL,
		p.Title,
		p.Description,
		string(p.Type),
		string(p.Purpose),
		string(p.Status),
		p.Price.Amount,
		p.Price.Currency,
		p.Location.City,
		valStr(p.Location.State),
		valStr(p.Location.Country),
		valStr(p.Location.Address),
		valF64(p.Location.Lat),
		valF64(p.Location.Lng),
		areaVal,
		areaUnit,
		p.Rooms,
		p.Bathrooms,
		p.ParkingSpaces,
		string(imgs),
		p.Featured,
		p.UpdatedAt,
		p.TenantID,
		p.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	// MySQL reports 0 affected rows when nothing changed, so tell that apart
	// from a missing row.
	if n, _ := res.RowsAffected(); n == 0 {
		return r.exists(ctx, p.TenantID, p.ID)
	}
	return nil
}

func (r *Repo) exists(ctx context.Context, tenantID, id string) error {
	var one int
	return mapErr(r.db.QueryRowContext(ctx, existsPropertySQL, tenantID, id).Scan(&one))
}

func (r *Repo) DeleteProperty(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, deletePropertySQL, tenantID, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetProperty(ctx context.Context, tenantID, id string) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, getPropertySQL, tenantID, id))
	return p, mapErr(err)
}

func (r *Repo) GetPropertyBySlug(ctx context.Context, tenantID, slug string) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, getPropertyBySlugSQL, tenantID, slug))
	return p, mapErr(err)
}

func (r *Repo) PropertyStats(ctx context.Context, tenantID string) (domain.Stats, error) {
	rows, err := r.db.QueryContext(ctx, propertyStatsSQL, tenantID)
	if err != nil {
		return domain.Stats{}, mapErr(err)
	}
	defer rows.Close()

	st := domain.NewStats()
	for rows.Next() {
		var (
			status, typ, city string
			featured          bool
			n                 int
		)
		if err := rows.Scan(&status, &typ, &city, &featured, &n); err != nil {
			return domain.Stats{}, err
		}
		st.Total += n
		st.ByStatus[status] += n
		st.ByType[typ] += n
		st.ByCity[city] += n
		if featured {
			st.FeaturedCount += n
		}
	}
	return st, mapErr(rows.Err())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(s scanner) (domain.Property, error) {
	var p domain.Property
	var (
		typ, purpose, status    string
		state, country, address sql.NullString
		lat, lng, areaVal       sql.NullFloat64
		areaUnit                sql.NullString
		imagesJSON              []byte
	)
	if err := s.Scan(
		&p.ID, &p.TenantID, &p.Slug, &p.Title, &p.Description,
		&typ, &purpose, &status,
		&p.Price.Amount, &p.Price.Currency,
		&p.Location.City, &state, &country, &address, &lat, &lng,
		&areaVal, &areaUnit,
		&p.Rooms, &p.Bathrooms, &p.ParkingSpaces,
		&imagesJSON, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Property{}, err
	}

	p.Type = domain.PropertyType(typ)
	p.Purpose = domain.Purpose(purpose)
	p.Status = domain.PropertyStatus(status)
	p.Location.State = state.String
	p.Location.Country = country.String
	p.Location.Address = address.String
	if lat.Valid {
		f := lat.Float64
		p.Location.Lat = &f
	}
	if lng.Valid {
		f := lng.Float64
		p.Location.Lng = &f
	}
	if areaVal.Valid {
		p.Area = &domain.Area{Value: areaVal.Float64, Unit: areaUnit.String}
	}
	_ = json.Unmarshal(imagesJSON, &p.Images)
	p.Images = nonNil(p.Images)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func areaArgs(a *domain.Area) (any, any) {
	if a == nil {
		return nil, nil
	}
	return a.Value, a.Unit
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
