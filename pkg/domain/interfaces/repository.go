package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Partner() PartnerRepository
	Automation() AutomationRepository

	// Close releases the underlying connection
	Close() error
}
