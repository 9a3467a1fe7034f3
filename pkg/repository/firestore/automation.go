package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// automationDoc is the Firestore document representation of model.Automation
type automationDoc struct {
	ID              int64                 `firestore:"ID"`
	FellowID        string                `firestore:"FellowID"`
	FellowName      string                `firestore:"FellowName"`
	FellowEmail     string                `firestore:"FellowEmail"`
	PartnerID       string                `firestore:"PartnerID"`
	PartnerName     string                `firestore:"PartnerName"`
	PlacementID     string                `firestore:"PlacementID"`
	EndDate         string                `firestore:"EndDate"`
	Type            types.JobType         `firestore:"Type"`
	SlackActivities []model.SlackActivity `firestore:"SlackActivities"`
	EmailActivities []model.EmailActivity `firestore:"EmailActivities"`
	NokoActivities  []model.NokoActivity  `firestore:"NokoActivities"`
	CreatedAt       time.Time             `firestore:"CreatedAt"`
	UpdatedAt       time.Time             `firestore:"UpdatedAt"`
}

func toAutomationDoc(a *model.Automation) *automationDoc {
	return &automationDoc{
		ID:              a.ID,
		FellowID:        a.FellowID,
		FellowName:      a.FellowName,
		FellowEmail:     a.FellowEmail,
		PartnerID:       a.PartnerID,
		PartnerName:     a.PartnerName,
		PlacementID:     a.PlacementID,
		EndDate:         a.EndDate,
		Type:            a.Type,
		SlackActivities: a.SlackActivities,
		EmailActivities: a.EmailActivities,
		NokoActivities:  a.NokoActivities,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func fromAutomationDoc(d *automationDoc) *model.Automation {
	a := &model.Automation{
		ID:              d.ID,
		FellowID:        d.FellowID,
		FellowName:      d.FellowName,
		FellowEmail:     d.FellowEmail,
		PartnerID:       d.PartnerID,
		PartnerName:     d.PartnerName,
		PlacementID:     d.PlacementID,
		EndDate:         d.EndDate,
		Type:            d.Type,
		SlackActivities: d.SlackActivities,
		EmailActivities: d.EmailActivities,
		NokoActivities:  d.NokoActivities,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
	return a.Clone()
}

type automationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *automationRepository) automationsCollection() string {
	return prefixed(r.collectionPrefix, "automations")
}

func (r *automationRepository) counterCollection() string {
	return prefixed(r.collectionPrefix, "counters")
}

func (r *automationRepository) automationCounterDoc() string {
	return "automation_counter"
}

func (r *automationRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.automationCounterDoc())

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *automationRepository) Create(ctx context.Context, automation *model.Automation) (*model.Automation, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := toAutomationDoc(automation)
	doc.ID = nextID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	docID := fmt.Sprintf("%d", doc.ID)
	if _, err := r.client.Collection(r.automationsCollection()).Doc(docID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create automation", goerr.V("id", doc.ID))
	}

	return fromAutomationDoc(doc), nil
}

func (r *automationRepository) Update(ctx context.Context, automation *model.Automation) (*model.Automation, error) {
	docID := fmt.Sprintf("%d", automation.ID)
	docRef := r.client.Collection(r.automationsCollection()).Doc(docID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrAutomationNotFound, "automation not found", goerr.V("id", automation.ID))
		}
		return nil, goerr.Wrap(err, "failed to check automation existence", goerr.V("id", automation.ID))
	}

	var existing automationDoc
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode automation", goerr.V("id", automation.ID))
	}

	doc := toAutomationDoc(automation)
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update automation", goerr.V("id", automation.ID))
	}

	return fromAutomationDoc(doc), nil
}

func (r *automationRepository) Get(ctx context.Context, id int64) (*model.Automation, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.automationsCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrAutomationNotFound, "automation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get automation", goerr.V("id", id))
	}

	var d automationDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode automation", goerr.V("id", id))
	}
	return fromAutomationDoc(&d), nil
}

// inRange loads the automations created in [from, to], newest first. Only
// the single-field CreatedAt index is used; the job type is filtered here.
func (r *automationRepository) inRange(ctx context.Context, filter model.AutomationFilter) ([]*model.Automation, error) {
	q := r.client.Collection(r.automationsCollection()).Query
	if !filter.From.IsZero() {
		q = q.Where("CreatedAt", ">=", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q = q.Where("CreatedAt", "<=", filter.To.UTC())
	}

	iter := q.OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var result []*model.Automation
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate automations")
		}

		var d automationDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode automation", goerr.V("doc_id", docSnap.Ref.ID))
		}

		a := fromAutomationDoc(&d)
		if filter.Matches(a) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *automationRepository) List(ctx context.Context, filter model.AutomationFilter) ([]*model.Automation, int, error) {
	all, err := r.inRange(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, filter.Offset, filter.Limit), len(all), nil
}

func (r *automationRepository) UpsellingPartners(ctx context.Context, from, to time.Time, offset, limit int) ([]*model.UpsellingPartner, int, error) {
	all, err := r.inRange(ctx, model.AutomationFilter{From: from, To: to, Type: types.JobTypeOnboarding})
	if err != nil {
		return nil, 0, err
	}
	ranked := model.RankUpsellingPartners(all)
	return paginate(ranked, offset, limit), len(ranked), nil
}

func (r *automationRepository) PartnerStats(ctx context.Context, from, to time.Time) (*model.PartnerStats, error) {
	all, err := r.inRange(ctx, model.AutomationFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return model.CountPartnerStats(all), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
