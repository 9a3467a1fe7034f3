package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// ChannelKind identifies one of the two partner channels
type ChannelKind string

const (
	// ChannelKindGeneral is the channel shared with the partner
	ChannelKindGeneral ChannelKind = "general"
	// ChannelKindInternal is the channel used only by the internal team
	ChannelKindInternal ChannelKind = "internal"
)

// IsValid checks if the channel kind is valid
func (k ChannelKind) IsValid() bool {
	switch k {
	case ChannelKindGeneral, ChannelKindInternal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the channel kind
func (k ChannelKind) String() string {
	return string(k)
}

// ParseChannelKind parses a string into a ChannelKind
func ParseChannelKind(s string) (ChannelKind, error) {
	kind := ChannelKind(s)
	if !kind.IsValid() {
		return "", goerr.New("invalid channel kind", goerr.V("kind", s))
	}
	return kind, nil
}

// ChannelProvision tells whether a channel was created or looked up
type ChannelProvision string

const (
	ChannelProvisionCreate   ChannelProvision = "create"
	ChannelProvisionRetrieve ChannelProvision = "retrieve"
)

// IsValid checks if the provision tag is valid
func (p ChannelProvision) IsValid() bool {
	switch p {
	case ChannelProvisionCreate, ChannelProvisionRetrieve:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provision tag
func (p ChannelProvision) String() string {
	return string(p)
}
