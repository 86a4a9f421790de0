package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"realty_catalog/internal/domain"
)

const importPageSize = 100

type IngestionService struct {
	cms domain.ListingSource
	cmd *CommandService
}

func NewIngestionService(cms domain.ListingSource, cmd *CommandService) *IngestionService {
	return &IngestionService{cms: cms, cmd: cmd}
}

// IngestReport summarizes one tenant import run.
type IngestReport struct {
	TenantID string
	Created  int
	Updated  int
	Skipped  int
}

// IngestTenant pages through the CMS listings of a tenant and upserts each
// one. Entries that fail validation are skipped and logged; store and
// transport failures abort the run.
func (s *IngestionService) IngestTenant(ctx context.Context, t domain.Tenant) (IngestReport, error) {
	rep := IngestReport{TenantID: t.ID}

	for page := 1; ; page++ {
		lp, err := s.cms.ListProperties(ctx, t.Slug, page, importPageSize)
		if err != nil {
			return rep, err
		}

		for _, entry := range lp.Entries {
			key, draft, err := mapListing(entry)
			if err != nil {
				rep.Skipped++
				log.Warn().Str("tenant", t.ID).Err(err).Msg("unmappable cms entry")
				continue
			}

			_, created, err := s.cmd.Upsert(ctx, t.ID, ImportID(t.ID, key), draft)
			var verr *domain.ValidationError
			switch {
			case errors.As(err, &verr):
				rep.Skipped++
				log.Warn().Str("tenant", t.ID).Str("entry", key).Err(err).Msg("cms entry rejected")
			case err != nil:
				return rep, err
			case created:
				rep.Created++
			default:
				rep.Updated++
			}
		}

		if len(lp.Entries) == 0 || page >= lp.PageCount {
			return rep, nil
		}
	}
}
