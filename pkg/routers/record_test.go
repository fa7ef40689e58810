package routers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
)

func TestNewNormalizes(t *testing.T) {
	rec := New("  10.0.0.1 ", " admin", "s3cret  ")
	assert.Equal(t, Record{Address: "10.0.0.1", Username: "admin", Password: "s3cret"}, rec)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"address only", Record{Address: "10.0.0.1"}, false},
		{"full", Record{Address: "r1.lab", Username: "u", Password: "p"}, false},
		{"empty address", Record{Username: "u"}, true},
		{"blank address", Record{Address: "   "}, true},
		{"newline in password", Record{Address: "10.0.0.1", Password: "a\nb"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateReportsFirstBadField(t *testing.T) {
	rec := Record{Address: "10.0.0.1", Username: "a\nb", Password: "c\rd"}

	// Repeat to catch any dependence on iteration order.
	for i := 0; i < 50; i++ {
		var ve *errors.ValidationError
		require.ErrorAs(t, rec.Validate(), &ve)
		require.Equal(t, "username", ve.Field)
	}
}

func TestMaskedAndString(t *testing.T) {
	rec := Record{Address: "10.0.0.1", Username: "admin", Password: "s3cret"}

	masked := rec.Masked()
	assert.Equal(t, constants.MaskedSecret, masked.Password)
	assert.Equal(t, "s3cret", rec.Password)
	assert.Empty(t, Record{Address: "x"}.Masked().Password)

	assert.Equal(t, "10.0.0.1", rec.String())
	assert.NotContains(t, rec.String(), "s3cret")
	assert.Equal(t, []string{"10.0.0.1", "admin", "s3cret"}, rec.Fields())
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord("10.0.0.1,admin,pa,ss")
	require.NoError(t, err)
	assert.Equal(t, Record{Address: "10.0.0.1", Username: "admin", Password: "pa,ss"}, rec)

	rec, err = ParseRecord(" 10.0.0.2 ")
	require.NoError(t, err)
	assert.Equal(t, Record{Address: "10.0.0.2"}, rec)

	_, err = ParseRecord(",admin,pw")
	assert.True(t, errors.IsValidationError(err))
}

func TestSetAndNormalize(t *testing.T) {
	records := []Record{{Address: "a"}, {Address: "b"}}
	s := NewSet(records)
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, []string{"a", "b"}, Addresses(records))

	out, err := Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = Normalize([]Record{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out, err = Normalize([]Record{{Address: " c ", Username: " u "}})
	require.NoError(t, err)
	assert.Equal(t, []Record{{Address: "c", Username: "u"}}, out)

	_, err = Normalize([]Record{{Address: "ok"}, {Address: ""}})
	assert.Error(t, err)
}
