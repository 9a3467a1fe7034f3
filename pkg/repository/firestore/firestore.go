package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
)

type Firestore struct {
	client     *firestore.Client
	databaseID string
	partner    *partnerRepository
	automation *automationRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.partner.collectionPrefix = prefix
		f.automation.collectionPrefix = prefix
	}
}

// WithDatabaseID selects a named Firestore database instead of the default one
func WithDatabaseID(databaseID string) Option {
	return func(f *Firestore) {
		f.databaseID = databaseID
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	f := &Firestore{
		partner:    &partnerRepository{},
		automation: &automationRepository{},
	}
	for _, opt := range opts {
		opt(f)
	}

	var client *firestore.Client
	var err error
	if f.databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, f.databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f.client = client
	f.partner.client = client
	f.automation.client = client
	return f, nil
}

func (f *Firestore) Partner() interfaces.PartnerRepository {
	return f.partner
}

func (f *Firestore) Automation() interfaces.AutomationRepository {
	return f.automation
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func prefixed(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
