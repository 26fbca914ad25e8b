package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloatUnmarshal(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		want  float64
	}{
		{`12.5`, true, 12.5},
		{`"44879000.123"`, true, 44879000.123},
		{`" 7 "`, true, 7},
		{`null`, false, 0},
		{`""`, false, 0},
		{`"n/a"`, false, 0},
		{`true`, false, 0},
	}
	for _, tc := range cases {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), tc.in)
		assert.Equal(t, tc.valid, f.Valid, tc.in)
		if tc.valid {
			assert.InDelta(t, tc.want, f.Value, 1e-9, tc.in)
			require.NotNil(t, f.Ptr())
		} else {
			assert.Nil(t, f.Ptr(), tc.in)
			assert.Nil(t, f.Int64Ptr(), tc.in)
		}
	}
}

func TestFlexFloatMissingField(t *testing.T) {
	var r DiameterRange
	require.NoError(t, json.Unmarshal([]byte(`{"estimated_diameter_max": "0.3"}`), &r))
	assert.False(t, r.EstimatedDiameterMin.Valid)
	assert.InDelta(t, 0.3, r.EstimatedDiameterMax.Value, 1e-9)
}

func TestNaturalIDFallback(t *testing.T) {
	o := NeoObject{NeoReferenceID: "123"}
	assert.Equal(t, "123", o.NaturalID())
	o.ID = "456"
	assert.Equal(t, "456", o.NaturalID())
}

func TestSortedDates(t *testing.T) {
	f := &NeoFeed{NearEarthObjects: map[string][]NeoObject{
		"2024-01-03": nil, "2024-01-01": nil, "2024-01-02": nil,
	}}
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, f.SortedDates())

	var nilFeed *NeoFeed
	assert.Empty(t, nilFeed.SortedDates())
}

func TestParseFormatDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", FormatDate(d.AddDate(0, 0, 1)))

	_, err = ParseDate("2024/02/29")
	assert.Error(t, err)
}
