package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

func TestPartnerJSONPassthrough(t *testing.T) {
	raw := `{"id":"p-1","name":"Acme","location":"Lagos","channel_id":"","channel_name":"","industry":"fintech","size":42}`

	var p model.Partner
	gt.NoError(t, json.Unmarshal([]byte(raw), &p)).Required()
	gt.Value(t, p.PartnerID).Equal("p-1")
	gt.Value(t, p.Name).Equal("Acme")
	gt.Value(t, p.Location).Equal("Lagos")
	gt.Value(t, p.Extra["industry"]).Equal(any("fintech"))
	gt.Value(t, p.Extra["size"]).Equal(any(float64(42)))
	gt.B(t, p.HasSlackChannels()).False()

	data, err := json.Marshal(p)
	gt.NoError(t, err).Required()

	var out map[string]any
	gt.NoError(t, json.Unmarshal(data, &out)).Required()
	gt.Value(t, out["partnerId"]).Equal(any("p-1"))
	gt.Value(t, out["industry"]).Equal(any("fintech"))
	gt.Map(t, out).HasKey("channel_id")
}

func TestPartnerJSONPrefersPartnerID(t *testing.T) {
	var p model.Partner
	gt.NoError(t, json.Unmarshal([]byte(`{"partnerId":"stored","id":"remote"}`), &p)).Required()
	gt.Value(t, p.PartnerID).Equal("stored")
	// "id" is not a modeled key once partnerId is present, so it is kept
	gt.Value(t, p.Extra["id"]).Equal(any("remote"))
}

func TestPartnerJSONSlackChannels(t *testing.T) {
	src := model.Partner{
		PartnerID: "p-1",
		SlackChannels: &model.ChannelBundle{
			General:  model.ChannelDescriptor{ChannelID: "C1", ChannelName: "p-acme", ChannelProvision: types.ChannelProvisionCreate},
			Internal: model.ChannelDescriptor{ChannelID: "C2", ChannelName: "p-acme-int", ChannelProvision: types.ChannelProvisionRetrieve},
		},
	}
	data, err := json.Marshal(src)
	gt.NoError(t, err).Required()

	var got model.Partner
	gt.NoError(t, json.Unmarshal(data, &got)).Required()
	gt.B(t, got.HasSlackChannels()).True()
	gt.Value(t, got.SlackChannels.General.ChannelID).Equal("C1")
	gt.Value(t, got.SlackChannels.Internal.ChannelProvision).Equal(types.ChannelProvisionRetrieve)
}

func TestPartnerJSONInvalid(t *testing.T) {
	var p model.Partner
	gt.Error(t, json.Unmarshal([]byte(`{"partnerId":12}`), &p))
	gt.Error(t, json.Unmarshal([]byte(`[]`), &p))
}

func TestPartnerValidate(t *testing.T) {
	gt.Error(t, (&model.Partner{}).Validate()).Is(model.ErrInvalidPartner)
	gt.NoError(t, (&model.Partner{PartnerID: "p"}).Validate())
}

func TestPartnerClone(t *testing.T) {
	src := &model.Partner{
		PartnerID:     "p-1",
		SlackChannels: &model.ChannelBundle{General: model.ChannelDescriptor{ChannelID: "C1"}},
		Extra:         map[string]any{"k": "v"},
	}
	cloned := src.Clone()
	cloned.SlackChannels.General.ChannelID = "changed"
	cloned.Extra["k"] = "changed"

	gt.Value(t, src.SlackChannels.General.ChannelID).Equal("C1")
	gt.Value(t, src.Extra["k"]).Equal(any("v"))
}

func TestNewChannelBundle(t *testing.T) {
	partner := &model.Partner{PartnerID: "p-1", ChannelID: "LEGACY", ChannelName: "legacy-int"}

	t.Run("internal channel provisioned", func(t *testing.T) {
		bundle := model.NewChannelBundle(
			&model.ProvisionedChannel{ChannelID: "G", ChannelName: "p-acme", Type: types.ChannelProvisionCreate},
			&model.ProvisionedChannel{ChannelID: "I", ChannelName: "p-acme-int", Type: types.ChannelProvisionCreate},
			partner,
		)
		gt.Value(t, bundle.General.ChannelID).Equal("G")
		gt.Value(t, bundle.General.ChannelProvision).Equal(types.ChannelProvisionCreate)
		gt.Value(t, bundle.Internal.ChannelID).Equal("I")
		gt.Value(t, bundle.Internal.ChannelProvision).Equal(types.ChannelProvisionCreate)
	})

	t.Run("internal falls back to legacy fields", func(t *testing.T) {
		bundle := model.NewChannelBundle(
			&model.ProvisionedChannel{ChannelID: "G", ChannelName: "p-acme", Type: types.ChannelProvisionRetrieve},
			nil,
			partner,
		)
		gt.Value(t, bundle.Internal.ChannelID).Equal("LEGACY")
		gt.Value(t, bundle.Internal.ChannelName).Equal("legacy-int")
		gt.Value(t, bundle.Internal.ChannelProvision).Equal(types.ChannelProvisionRetrieve)
	})

	t.Run("nil general yields empty slot", func(t *testing.T) {
		bundle := model.NewChannelBundle(nil, &model.ProvisionedChannel{}, &model.Partner{})
		gt.Value(t, bundle.General).Equal(model.ChannelDescriptor{})
		gt.Value(t, bundle.Internal.ChannelProvision).Equal(types.ChannelProvisionRetrieve)
	})
}
