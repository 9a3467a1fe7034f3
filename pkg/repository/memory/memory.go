package memory

import (
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	partner    *partnerRepository
	automation *automationRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		partner:    newPartnerRepository(),
		automation: newAutomationRepository(),
	}
}

func (m *Memory) Partner() interfaces.PartnerRepository {
	return m.partner
}

func (m *Memory) Automation() interfaces.AutomationRepository {
	return m.automation
}

func (m *Memory) Close() error {
	return nil
}
