package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// partnerDoc is the Firestore document representation of model.Partner
type partnerDoc struct {
	PartnerID     string               `firestore:"PartnerID"`
	Name          string               `firestore:"Name"`
	Location      string               `firestore:"Location"`
	ChannelID     string               `firestore:"ChannelID"`
	ChannelName   string               `firestore:"ChannelName"`
	SlackChannels *model.ChannelBundle `firestore:"SlackChannels"`
	Extra         map[string]any       `firestore:"Extra"`
	CreatedAt     time.Time            `firestore:"CreatedAt"`
	UpdatedAt     time.Time            `firestore:"UpdatedAt"`
}

func toPartnerDoc(p *model.Partner) *partnerDoc {
	return &partnerDoc{
		PartnerID:     p.PartnerID,
		Name:          p.Name,
		Location:      p.Location,
		ChannelID:     p.ChannelID,
		ChannelName:   p.ChannelName,
		SlackChannels: p.SlackChannels,
		Extra:         p.Extra,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromPartnerDoc(d *partnerDoc) *model.Partner {
	p := &model.Partner{
		PartnerID:     d.PartnerID,
		Name:          d.Name,
		Location:      d.Location,
		ChannelID:     d.ChannelID,
		ChannelName:   d.ChannelName,
		SlackChannels: d.SlackChannels,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
	if len(d.Extra) > 0 {
		p.Extra = d.Extra
	}
	return p
}

type partnerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *partnerRepository) partnersCollection() string {
	return prefixed(r.collectionPrefix, "partners")
}

func (r *partnerRepository) FindOne(ctx context.Context, partnerID string) (*model.Partner, error) {
	docSnap, err := r.client.Collection(r.partnersCollection()).Doc(partnerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrPartnerNotFound, "partner not found", goerr.V("partner_id", partnerID))
		}
		return nil, goerr.Wrap(err, "failed to get partner", goerr.V("partner_id", partnerID))
	}

	var d partnerDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode partner", goerr.V("partner_id", partnerID))
	}
	return fromPartnerDoc(&d), nil
}

func (r *partnerRepository) Upsert(ctx context.Context, partner *model.Partner) (*model.Partner, error) {
	if err := partner.Validate(); err != nil {
		return nil, err
	}

	docRef := r.client.Collection(r.partnersCollection()).Doc(partner.PartnerID)
	// Firestore keeps microsecond precision
	now := time.Now().UTC().Truncate(time.Microsecond)

	var saved *partnerDoc
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc := toPartnerDoc(partner)
		doc.CreatedAt = now
		doc.UpdatedAt = now

		existing, err := tx.Get(docRef)
		switch {
		case err == nil:
			var prev partnerDoc
			if err := existing.DataTo(&prev); err != nil {
				return goerr.Wrap(err, "failed to decode existing partner")
			}
			doc.CreatedAt = prev.CreatedAt
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get partner")
		}

		saved = doc
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert partner", goerr.V("partner_id", partner.PartnerID))
	}

	return fromPartnerDoc(saved).Clone(), nil
}
