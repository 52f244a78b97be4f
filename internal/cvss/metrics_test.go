package cvss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseScore(t *testing.T) {
	tests := []struct {
		name    string
		vector  string
		want    float64
		wantErr require.ErrorAssertionFunc
	}{
		{
			name:   "valid CVSS 2.0",
			vector: "AV:N/AC:L/Au:N/C:P/I:P/A:P",
			want:   7.5,
		},
		{
			name:   "valid CVSS 3.0",
			vector: "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
			want:   9.8,
		},
		{
			name:   "valid CVSS 3.1 with surrounding whitespace",
			vector: "  CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H ",
			want:   9.8,
		},
		{
			name:   "valid CVSS 4.0",
			vector: "CVSS:4.0/AV:N/AC:H/AT:P/PR:L/UI:N/VC:N/VI:H/VA:L/SC:L/SI:H/SA:L/MAC:L/MAT:P/MPR:N/S:N/R:A/RE:L/U:Clear",
			want:   9.1,
		},
		{
			name:    "invalid CVSS 2.0",
			vector:  "AV:N/AC:INVALID",
			wantErr: require.Error,
		},
		{
			name:    "invalid CVSS 3.1",
			vector:  "CVSS:3.1/AV:INVALID",
			wantErr: require.Error,
		},
		{
			name:    "empty vector",
			vector:  "",
			wantErr: require.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}
			got, err := BaseScore(tt.vector)
			tt.wantErr(t, err)
			if err != nil {
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 4.1, roundScore(4.02))
	assert.Equal(t, 4.0, roundScore(4.00))
	assert.Equal(t, 9.8, roundScore(9.75))
}
