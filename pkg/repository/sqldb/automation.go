package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

type automationRow struct {
	ID              int64     `db:"id"`
	FellowID        string    `db:"fellow_id"`
	FellowName      string    `db:"fellow_name"`
	FellowEmail     string    `db:"fellow_email"`
	PartnerID       string    `db:"partner_id"`
	PartnerName     string    `db:"partner_name"`
	PlacementID     string    `db:"placement_id"`
	EndDate         string    `db:"end_date"`
	Type            string    `db:"type"`
	SlackActivities string    `db:"slack_activities"`
	EmailActivities string    `db:"email_activities"`
	NokoActivities  string    `db:"noko_activities"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func encodeActivities[T any](activities []T) (string, error) {
	if activities == nil {
		activities = []T{}
	}
	raw, err := json.Marshal(activities)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode activities")
	}
	return string(raw), nil
}

func decodeActivities[T any](raw string) ([]T, error) {
	var activities []T
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &activities); err != nil {
		return nil, goerr.Wrap(err, "failed to decode activities")
	}
	if len(activities) == 0 {
		return nil, nil
	}
	return activities, nil
}

func newAutomationRow(a *model.Automation) (*automationRow, error) {
	row := &automationRow{
		ID:          a.ID,
		FellowID:    a.FellowID,
		FellowName:  a.FellowName,
		FellowEmail: a.FellowEmail,
		PartnerID:   a.PartnerID,
		PartnerName: a.PartnerName,
		PlacementID: a.PlacementID,
		EndDate:     a.EndDate,
		Type:        a.Type.String(),
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}

	var err error
	if row.SlackActivities, err = encodeActivities(a.SlackActivities); err != nil {
		return nil, goerr.Wrap(err, "invalid slack activities", goerr.V("id", a.ID))
	}
	if row.EmailActivities, err = encodeActivities(a.EmailActivities); err != nil {
		return nil, goerr.Wrap(err, "invalid email activities", goerr.V("id", a.ID))
	}
	if row.NokoActivities, err = encodeActivities(a.NokoActivities); err != nil {
		return nil, goerr.Wrap(err, "invalid noko activities", goerr.V("id", a.ID))
	}
	return row, nil
}

func (row *automationRow) toModel() (*model.Automation, error) {
	a := &model.Automation{
		ID:          row.ID,
		FellowID:    row.FellowID,
		FellowName:  row.FellowName,
		FellowEmail: row.FellowEmail,
		PartnerID:   row.PartnerID,
		PartnerName: row.PartnerName,
		PlacementID: row.PlacementID,
		EndDate:     row.EndDate,
		Type:        types.JobType(row.Type),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}

	var err error
	if a.SlackActivities, err = decodeActivities[model.SlackActivity](row.SlackActivities); err != nil {
		return nil, goerr.Wrap(err, "invalid slack activities", goerr.V("id", row.ID))
	}
	if a.EmailActivities, err = decodeActivities[model.EmailActivity](row.EmailActivities); err != nil {
		return nil, goerr.Wrap(err, "invalid email activities", goerr.V("id", row.ID))
	}
	if a.NokoActivities, err = decodeActivities[model.NokoActivity](row.NokoActivities); err != nil {
		return nil, goerr.Wrap(err, "invalid noko activities", goerr.V("id", row.ID))
	}
	return a, nil
}

type automationRepository struct {
	db *sqlx.DB
}

func newAutomationRepository(db *sqlx.DB) *automationRepository {
	return &automationRepository{db: db}
}

const automationColumns = `id, fellow_id, fellow_name, fellow_email, partner_id, partner_name, placement_id, end_date, type,
	slack_activities, email_activities, noko_activities, created_at, updated_at`

func (r *automationRepository) Create(ctx context.Context, automation *model.Automation) (*model.Automation, error) {
	row, err := newAutomationRow(automation)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO automations (fellow_id, fellow_name, fellow_email, partner_id, partner_name,
			placement_id, end_date, type, slack_activities, email_activities, noko_activities, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + automationColumns)

	var saved automationRow
	if err := r.db.GetContext(ctx, &saved, query,
		row.FellowID, row.FellowName, row.FellowEmail, row.PartnerID, row.PartnerName,
		row.PlacementID, row.EndDate, row.Type, row.SlackActivities, row.EmailActivities, row.NokoActivities,
		row.CreatedAt, row.UpdatedAt,
	); err != nil {
		return nil, goerr.Wrap(err, "failed to create automation", goerr.V("placement_id", automation.PlacementID))
	}
	return saved.toModel()
}

func (r *automationRepository) Update(ctx context.Context, automation *model.Automation) (*model.Automation, error) {
	row, err := newAutomationRow(automation)
	if err != nil {
		return nil, err
	}
	row.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`UPDATE automations SET
			partner_name = ?, slack_activities = ?, email_activities = ?, noko_activities = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + automationColumns)

	var saved automationRow
	if err := r.db.GetContext(ctx, &saved, query,
		row.PartnerName, row.SlackActivities, row.EmailActivities, row.NokoActivities, row.UpdatedAt, row.ID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrAutomationNotFound, "automation not found", goerr.V("id", automation.ID))
		}
		return nil, goerr.Wrap(err, "failed to update automation", goerr.V("id", automation.ID))
	}
	return saved.toModel()
}

func (r *automationRepository) Get(ctx context.Context, id int64) (*model.Automation, error) {
	var row automationRow
	query := r.db.Rebind(`SELECT ` + automationColumns + ` FROM automations WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrAutomationNotFound, "automation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get automation", goerr.V("id", id))
	}
	return row.toModel()
}

// whereRange builds the filter clause shared by listings and aggregations
func whereRange(from, to time.Time, jobType types.JobType) (string, []any) {
	var conds []string
	var args []any
	if jobType != "" {
		conds = append(conds, "type = ?")
		args = append(args, jobType.String())
	}
	if !from.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, to.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// pageArgs converts offset/limit into LIMIT/OFFSET values accepted by both
// postgres and sqlite
func pageArgs(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = math.MaxInt32
	}
	return limit, offset
}

func (r *automationRepository) List(ctx context.Context, filter model.AutomationFilter) ([]*model.Automation, int, error) {
	where, args := whereRange(filter.From, filter.To, filter.Type)

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM automations`+where), args...); err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count automations")
	}

	limit, offset := pageArgs(filter.Offset, filter.Limit)
	query := r.db.Rebind(`SELECT ` + automationColumns + ` FROM automations` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)

	var rows []automationRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, limit, offset)...); err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list automations")
	}

	result := make([]*model.Automation, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		result = append(result, a)
	}
	return result, total, nil
}

type upsellingRow struct {
	PartnerID   string `db:"partner_id"`
	PartnerName string `db:"partner_name"`
	Count       int    `db:"count"`
}

func (r *automationRepository) UpsellingPartners(ctx context.Context, from, to time.Time, offset, limit int) ([]*model.UpsellingPartner, int, error) {
	where, args := whereRange(from, to, types.JobTypeOnboarding)

	var total int
	if err := r.db.GetContext(ctx, &total,
		r.db.Rebind(`SELECT COUNT(DISTINCT partner_id) FROM automations`+where), args...); err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count upselling partners")
	}

	lim, off := pageArgs(offset, limit)
	query := r.db.Rebind(`SELECT partner_id, MAX(partner_name) AS partner_name, COUNT(*) AS count
		FROM automations` + where + `
		GROUP BY partner_id
		ORDER BY count DESC, partner_id ASC
		LIMIT ? OFFSET ?`)

	var rows []upsellingRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, lim, off)...); err != nil {
		return nil, 0, goerr.Wrap(err, "failed to rank upselling partners")
	}

	result := make([]*model.UpsellingPartner, 0, len(rows))
	for _, row := range rows {
		result = append(result, &model.UpsellingPartner{
			PartnerID:   row.PartnerID,
			PartnerName: row.PartnerName,
			Count:       row.Count,
		})
	}
	return result, total, nil
}

func (r *automationRepository) PartnerStats(ctx context.Context, from, to time.Time) (*model.PartnerStats, error) {
	where, args := whereRange(from, to, "")

	query := r.db.Rebind(`SELECT
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS onboarding,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS offboarding,
			COUNT(DISTINCT partner_id) AS partners
		FROM automations` + where)

	var stats struct {
		Onboarding  int `db:"onboarding"`
		Offboarding int `db:"offboarding"`
		Partners    int `db:"partners"`
	}
	queryArgs := append([]any{types.JobTypeOnboarding.String(), types.JobTypeOffboarding.String()}, args...)
	if err := r.db.GetContext(ctx, &stats, query, queryArgs...); err != nil {
		return nil, goerr.Wrap(err, "failed to count partner stats")
	}

	return &model.PartnerStats{
		Onboarding:  stats.Onboarding,
		Offboarding: stats.Offboarding,
		Partners:    stats.Partners,
	}, nil
}
