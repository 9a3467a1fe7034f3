package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

type partnerRow struct {
	PartnerID     string         `db:"partner_id"`
	Name          string         `db:"name"`
	Location      string         `db:"location"`
	ChannelID     string         `db:"channel_id"`
	ChannelName   string         `db:"channel_name"`
	SlackChannels sql.NullString `db:"slack_channels"`
	Extra         string         `db:"extra"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func newPartnerRow(p *model.Partner) (*partnerRow, error) {
	row := &partnerRow{
		PartnerID:   p.PartnerID,
		Name:        p.Name,
		Location:    p.Location,
		ChannelID:   p.ChannelID,
		ChannelName: p.ChannelName,
		Extra:       "{}",
	}

	if p.SlackChannels != nil {
		raw, err := json.Marshal(p.SlackChannels)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode slack channels", goerr.V("partner_id", p.PartnerID))
		}
		row.SlackChannels = sql.NullString{String: string(raw), Valid: true}
	}

	if len(p.Extra) > 0 {
		raw, err := json.Marshal(p.Extra)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode partner fields", goerr.V("partner_id", p.PartnerID))
		}
		row.Extra = string(raw)
	}

	return row, nil
}

func (row *partnerRow) toModel() (*model.Partner, error) {
	p := &model.Partner{
		PartnerID:   row.PartnerID,
		Name:        row.Name,
		Location:    row.Location,
		ChannelID:   row.ChannelID,
		ChannelName: row.ChannelName,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}

	if row.SlackChannels.Valid && row.SlackChannels.String != "" {
		var bundle model.ChannelBundle
		if err := json.Unmarshal([]byte(row.SlackChannels.String), &bundle); err != nil {
			return nil, goerr.Wrap(err, "failed to decode slack channels", goerr.V("partner_id", row.PartnerID))
		}
		p.SlackChannels = &bundle
	}

	var extra map[string]any
	if err := json.Unmarshal([]byte(row.Extra), &extra); err != nil {
		return nil, goerr.Wrap(err, "failed to decode partner fields", goerr.V("partner_id", row.PartnerID))
	}
	if len(extra) > 0 {
		p.Extra = extra
	}

	return p, nil
}

type partnerRepository struct {
	db *sqlx.DB
}

func newPartnerRepository(db *sqlx.DB) *partnerRepository {
	return &partnerRepository{db: db}
}

const partnerColumns = `partner_id, name, location, channel_id, channel_name, slack_channels, extra, created_at, updated_at`

func (r *partnerRepository) FindOne(ctx context.Context, partnerID string) (*model.Partner, error) {
	var row partnerRow
	query := r.db.Rebind(`SELECT ` + partnerColumns + ` FROM partners WHERE partner_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, partnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrPartnerNotFound, "partner not found", goerr.V("partner_id", partnerID))
		}
		return nil, goerr.Wrap(err, "failed to get partner", goerr.V("partner_id", partnerID))
	}
	return row.toModel()
}

func (r *partnerRepository) Upsert(ctx context.Context, partner *model.Partner) (*model.Partner, error) {
	if err := partner.Validate(); err != nil {
		return nil, err
	}

	row, err := newPartnerRow(partner)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO partners (` + partnerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (partner_id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			channel_id = excluded.channel_id,
			channel_name = excluded.channel_name,
			slack_channels = excluded.slack_channels,
			extra = excluded.extra,
			updated_at = excluded.updated_at
		RETURNING ` + partnerColumns)

	var saved partnerRow
	if err := r.db.GetContext(ctx, &saved, query,
		row.PartnerID, row.Name, row.Location, row.ChannelID, row.ChannelName,
		row.SlackChannels, row.Extra, row.CreatedAt, row.UpdatedAt,
	); err != nil {
		return nil, goerr.Wrap(err, "failed to upsert partner", goerr.V("partner_id", partner.PartnerID))
	}

	return saved.toModel()
}
