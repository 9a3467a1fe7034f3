package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

// ChannelDescriptor is one slot of a ChannelBundle
type ChannelDescriptor struct {
	ChannelID        string                 `json:"channelId" firestore:"channel_id"`
	ChannelName      string                 `json:"channelName" firestore:"channel_name"`
	ChannelProvision types.ChannelProvision `json:"channelProvision" firestore:"channel_provision"`
}

// IsZero reports whether no field of the descriptor is set
func (d ChannelDescriptor) IsZero() bool {
	return d.ChannelID == "" && d.ChannelName == "" && d.ChannelProvision == ""
}

// ChannelBundle is the merged general/internal channel pair attached to a partner
type ChannelBundle struct {
	General  ChannelDescriptor `json:"general" firestore:"general"`
	Internal ChannelDescriptor `json:"internal" firestore:"internal"`
}

// IsZero reports whether both slots are empty
func (b *ChannelBundle) IsZero() bool {
	return b == nil || (b.General.IsZero() && b.Internal.IsZero())
}

// ProvisionedChannel is what a channel provisioner hands back. A nil or zero
// value means no channel was found or created.
type ProvisionedChannel struct {
	ChannelID   string
	ChannelName string
	Type        types.ChannelProvision
}

// HasID reports whether the provisioner produced a usable channel
func (c *ProvisionedChannel) HasID() bool {
	return c != nil && c.ChannelID != ""
}

// NewChannelBundle merges the general and internal provisioning results with
// the partner's legacy channel fields. General always comes from the
// provisioner; internal falls back to the legacy channel_id/channel_name pair
// tagged as retrieved when no internal channel id was provisioned.
func NewChannelBundle(general, internal *ProvisionedChannel, partner *Partner) *ChannelBundle {
	if general == nil {
		general = &ProvisionedChannel{}
	}

	bundle := &ChannelBundle{
		General: ChannelDescriptor{
			ChannelID:        general.ChannelID,
			ChannelName:      general.ChannelName,
			ChannelProvision: general.Type,
		},
	}

	if internal.HasID() {
		bundle.Internal = ChannelDescriptor{
			ChannelID:        internal.ChannelID,
			ChannelName:      internal.ChannelName,
			ChannelProvision: internal.Type,
		}
	} else {
		bundle.Internal = ChannelDescriptor{
			ChannelID:        partner.ChannelID,
			ChannelName:      partner.ChannelName,
			ChannelProvision: types.ChannelProvisionRetrieve,
		}
	}

	return bundle
}

// Partner is an organization that fellows are placed with. Profile fields
// that are not modeled explicitly are kept in Extra and written back
// unchanged on serialization.
type Partner struct {
	PartnerID     string
	Name          string
	Location      string
	ChannelID     string
	ChannelName   string
	SlackChannels *ChannelBundle
	Extra         map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var (
	// ErrPartnerNotFound is returned by stores when no record exists for a partner ID
	ErrPartnerNotFound = goerr.New("partner not found")
	// ErrInvalidPartner is returned for a partner record that cannot be persisted
	ErrInvalidPartner = goerr.New("invalid partner")
)

// Validate checks the fields required for persistence
func (p *Partner) Validate() error {
	if p.PartnerID == "" {
		return goerr.Wrap(ErrInvalidPartner, "partner ID is required")
	}
	return nil
}

// HasSlackChannels reports whether channel provisioning already ran for the
// partner and its result was stored on the record
func (p *Partner) HasSlackChannels() bool {
	return !p.SlackChannels.IsZero()
}

// Clone returns a copy that shares no mutable state with p
func (p *Partner) Clone() *Partner {
	if p == nil {
		return nil
	}
	cloned := *p
	if p.SlackChannels != nil {
		bundle := *p.SlackChannels
		cloned.SlackChannels = &bundle
	}
	if p.Extra != nil {
		cloned.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			cloned.Extra[k] = v
		}
	}
	return &cloned
}

const (
	partnerKeyID          = "partnerId"
	partnerKeyRemoteID    = "id"
	partnerKeyName        = "name"
	partnerKeyLocation    = "location"
	partnerKeyChannelID   = "channel_id"
	partnerKeyChannelName = "channel_name"
	partnerKeySlack       = "slackChannels"
	partnerKeyCreatedAt   = "createdAt"
	partnerKeyUpdatedAt   = "updatedAt"
)

var partnerKnownKeys = map[string]struct{}{
	partnerKeyID:          {},
	partnerKeyName:        {},
	partnerKeyLocation:    {},
	partnerKeyChannelID:   {},
	partnerKeyChannelName: {},
	partnerKeySlack:       {},
	partnerKeyCreatedAt:   {},
	partnerKeyUpdatedAt:   {},
}

// MarshalJSON writes the modeled fields on top of the passthrough fields
func (p Partner) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+len(partnerKnownKeys))
	for k, v := range p.Extra {
		out[k] = v
	}

	out[partnerKeyID] = p.PartnerID
	out[partnerKeyName] = p.Name
	out[partnerKeyChannelID] = p.ChannelID
	out[partnerKeyChannelName] = p.ChannelName
	if p.Location != "" {
		out[partnerKeyLocation] = p.Location
	}
	if p.SlackChannels != nil {
		out[partnerKeySlack] = p.SlackChannels
	}
	if !p.CreatedAt.IsZero() {
		out[partnerKeyCreatedAt] = p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		out[partnerKeyUpdatedAt] = p.UpdatedAt
	}

	return json.Marshal(out)
}

// UnmarshalJSON reads the modeled fields and keeps everything else in Extra.
// The identifier is read from "partnerId", falling back to "id" which is what
// the remote profile API uses.
func (p *Partner) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return goerr.Wrap(err, "failed to decode partner")
	}

	var decoded Partner
	str := func(key string, dst *string) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return goerr.Wrap(err, "invalid partner field", goerr.V("field", key))
		}
		return nil
	}

	for key, dst := range map[string]*string{
		partnerKeyID:          &decoded.PartnerID,
		partnerKeyName:        &decoded.Name,
		partnerKeyLocation:    &decoded.Location,
		partnerKeyChannelID:   &decoded.ChannelID,
		partnerKeyChannelName: &decoded.ChannelName,
	} {
		if err := str(key, dst); err != nil {
			return err
		}
	}

	if decoded.PartnerID == "" {
		if v, ok := raw[partnerKeyRemoteID]; ok {
			var id any
			if err := json.Unmarshal(v, &id); err == nil {
				switch x := id.(type) {
				case string:
					decoded.PartnerID = x
				case float64:
					decoded.PartnerID = string(v)
				}
			}
		}
	}

	if v, ok := raw[partnerKeySlack]; ok && string(v) != "null" {
		var bundle ChannelBundle
		if err := json.Unmarshal(v, &bundle); err != nil {
			return goerr.Wrap(err, "invalid partner field", goerr.V("field", partnerKeySlack))
		}
		decoded.SlackChannels = &bundle
	}

	for key, dst := range map[string]*time.Time{
		partnerKeyCreatedAt: &decoded.CreatedAt,
		partnerKeyUpdatedAt: &decoded.UpdatedAt,
	} {
		if v, ok := raw[key]; ok && string(v) != "null" {
			if err := json.Unmarshal(v, dst); err != nil {
				return goerr.Wrap(err, "invalid partner field", goerr.V("field", key))
			}
		}
	}

	for key, v := range raw {
		if _, known := partnerKnownKeys[key]; known {
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return goerr.Wrap(err, "invalid partner field", goerr.V("field", key))
		}
		if decoded.Extra == nil {
			decoded.Extra = make(map[string]any)
		}
		decoded.Extra[key] = value
	}

	*p = decoded
	return nil
}
