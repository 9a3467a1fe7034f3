package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "calendar date", input: "2024-01-31", valid: true},
		{name: "rfc3339", input: "2024-01-31T10:00:00Z", valid: true},
		{name: "rfc3339 with fraction", input: "2024-01-31T10:00:00.123+09:00", valid: true},
		{name: "slash separated", input: "2024/01/31", valid: false},
		{name: "free text", input: "yesterday", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.ParseDate(tt.input)
			if tt.valid {
				gt.NoError(t, err)
			} else {
				gt.Error(t, err).Is(model.ErrInvalidDateFormat)
			}
		})
	}
}

func TestNewDateRange(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	r, err := model.NewDateRange("", "", now)
	gt.NoError(t, err).Required()
	gt.B(t, r.From.IsZero()).True()
	gt.Value(t, r.To).Equal(now)

	r, err = model.NewDateRange("2024-01-01", "2024-01-15", now)
	gt.NoError(t, err).Required()
	gt.Value(t, r.From).Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	gt.Value(t, r.To).Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	_, err = model.NewDateRange("2024-01-01", "not-a-date", now)
	gt.Error(t, err).Is(model.ErrInvalidDateFormat)
	gt.String(t, model.ErrInvalidDateFormat.Error()).Equal("Invalid date format provided please provide date in iso 8601 string")
}

func TestNewPagination(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		meta := model.NewPagination(model.NewPage(10, 2), 35)
		gt.Value(t, meta.NumberOfPages).Equal(4)
		gt.Value(t, *meta.NextPage).Equal(3)
		gt.Value(t, *meta.PrevPage).Equal(1)
		gt.Value(t, meta.DataCount).Equal(35)
	})

	t.Run("first and last page", func(t *testing.T) {
		meta := model.NewPagination(model.NewPage(0, 0), 5)
		gt.Value(t, meta.CurrentPage).Equal(1)
		gt.Value(t, meta.NumberOfPages).Equal(1)
		gt.Value(t, meta.NextPage).Nil()
		gt.Value(t, meta.PrevPage).Nil()
	})

	t.Run("empty", func(t *testing.T) {
		meta := model.NewPagination(model.NewPage(10, 1), 0)
		gt.Value(t, meta.NumberOfPages).Equal(0)
		gt.Value(t, meta.NextPage).Nil()
	})

	gt.Value(t, model.NewPage(10, 3).Offset()).Equal(20)
}
