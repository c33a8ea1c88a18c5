package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraft(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{name: "plain body", body: "hello", want: "hello"},
		{name: "surrounding whitespace trimmed", body: "  hi there \n", want: "hi there"},
		{name: "empty body rejected", body: "", wantErr: ErrEmptyBody},
		{name: "whitespace-only body rejected", body: "  \t\n ", wantErr: ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDraft(1, 2, tt.body)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), d.SenderID)
			assert.Equal(t, int64(2), d.RecipientID)
			assert.Equal(t, tt.want, d.Body)
		})
	}
}
