package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "1234.50", FormatAmount(123450))
	assert.Equal(t, "-10.00", FormatAmount(-1000))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "100", want: 10000},
		{in: "100.5", want: 10050},
		{in: "0.01", want: 1},
		{in: "1234.50", want: 123450},
		{in: "1.005", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "99.99", "c": null}`), &v))

	a, err := v.A.Minor()
	require.NoError(t, err)
	assert.Equal(t, int64(1250), a)

	b, err := v.B.Minor()
	require.NoError(t, err)
	assert.Equal(t, int64(9999), b)

	_, err = v.C.Minor()
	assert.Error(t, err)
}

func TestAmount_RejectsObjects(t *testing.T) {
	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &a))
}
