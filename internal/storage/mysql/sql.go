package mysql

const propertyColumns = `
  id, tenant_id, slug, title, description, type, purpose, status,
  price, currency, city, state, country, address, lat, lng,
  area_value, area_unit, rooms, bathrooms, parking_spaces, images, featured,
  created_at, updated_at`

const insertPropertySQL = `
INSERT INTO properties (` + propertyColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Slug, tenant_id and created_at are write-once.
const updatePropertySQL = `
UPDATE properties SET
  title          = ?,
  description    = ?,
  type           = ?,
  purpose        = ?,
  status         = ?,
  price          = ?,
  currency       = ?,
  city           = ?,
  state          = ?,
  country        = ?,
  address        = ?,
  lat            = ?,
  lng            = ?,
  area_value     = ?,
  area_unit      = ?,
  rooms          = ?,
  bathrooms      = ?,
  parking_spaces = ?,
  images         = ?,
  featured       = ?,
  updated_at     = ?
WHERE tenant_id = ? AND id = ?
`

const deletePropertySQL = `DELETE FROM properties WHERE tenant_id = ? AND id = ?`

const existsPropertySQL = `SELECT 1 FROM properties WHERE tenant_id = ? AND id = ?`

const getPropertySQL = `SELECT` + propertyColumns + `
FROM properties
WHERE tenant_id = ? AND id = ?
`

const getPropertyBySlugSQL = `SELECT` + propertyColumns + `
FROM properties
WHERE tenant_id = ? AND slug = ?
`

// Inactive listings are counted too.
const propertyStatsSQL = `
SELECT status, type, city, featured, COUNT(*)
FROM properties
WHERE tenant_id = ?
GROUP BY status, type, city, featured
`

// -----------------------------------------------------------------------------
// LEADS
// -----------------------------------------------------------------------------

const leadColumns = `
  id, tenant_id, property_id, name, email, phone, whatsapp, message,
  interest, status, created_at`

const insertLeadSQL = `
INSERT INTO leads (` + leadColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const getLeadSQL = `SELECT` + leadColumns + `
FROM leads
WHERE tenant_id = ? AND id = ?
`

const updateLeadStatusSQL = `UPDATE leads SET status = ? WHERE tenant_id = ? AND id = ?`

// -----------------------------------------------------------------------------
// TENANTS
// -----------------------------------------------------------------------------

const listTenantsSQL = `
SELECT
  id, slug, domain, name, status, default_currency,
  enabled_property_types, branding, contact
FROM tenants
ORDER BY id
`
