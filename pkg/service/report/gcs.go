package report

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// GCS stores reports as objects in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.ReportStore = (*GCS)(nil)

// GCSOption configures a GCS store
type GCSOption func(*GCS)

// WithObjectPrefix places report objects under prefix
func WithObjectPrefix(prefix string) GCSOption {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

// NewGCS creates a store using application default credentials
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("report bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	g := &GCS{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GCS) objectName(id string) string {
	return path.Join(g.prefix, id+".csv")
}

func (g *GCS) Put(ctx context.Context, id string, data []byte) error {
	name := g.objectName(id)
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = model.ReportContentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload report", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize report upload", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}
	return nil
}

func (g *GCS) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	name := g.objectName(id)
	r, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(model.ErrReportNotFound, "report object not found",
				goerr.V("bucket", g.bucket), goerr.V("object", name))
		}
		return nil, goerr.Wrap(err, "failed to open report", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}
	return r, nil
}

// Close releases the storage client
func (g *GCS) Close() error {
	return g.client.Close()
}
