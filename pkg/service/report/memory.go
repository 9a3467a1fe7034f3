package report

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// Memory keeps reports in process memory
type Memory struct {
	mu      sync.RWMutex
	reports map[string][]byte
}

var _ interfaces.ReportStore = (*Memory)(nil)

// NewMemory creates an empty in-memory report store
func NewMemory() *Memory {
	return &Memory{reports: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[id] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Open(_ context.Context, id string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.reports[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrReportNotFound, "report not in memory", goerr.V("report_id", id))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
