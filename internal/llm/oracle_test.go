package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfrestrepo/ramatrack/internal/models"
)

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    models.Urgency
		wantErr bool
	}{
		{"spanish high", "ALTA", models.UrgencyHigh, false},
		{"spanish medium", "MEDIA", models.UrgencyMedium, false},
		{"spanish low", "BAJA", models.UrgencyLow, false},
		{"english high", "HIGH", models.UrgencyHigh, false},
		{"english medium", "medium", models.UrgencyMedium, false},
		{"english low", "Low", models.UrgencyLow, false},
		{"lowercase", "alta", models.UrgencyHigh, false},
		{"surrounding whitespace", "  BAJA  \n", models.UrgencyLow, false},
		{"trailing period", "ALTA.", models.UrgencyHigh, false},
		{"trailing prose", "MEDIA, porque la actuación es de trámite", models.UrgencyMedium, false},
		{"markdown emphasis", "**ALTA**", models.UrgencyHigh, false},
		{"empty", "", "", true},
		{"out of range", "URGENTE", "", true},
		{"unrelated prose", "no puedo clasificar esto", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUrgency(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisabledOracleReportsUnavailable(t *testing.T) {
	var o Oracle = Disabled{}

	_, err := o.Summarize(context.Background(), "texto")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = o.ClassifyUrgency(context.Background(), "Auto", "texto")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUrgencyValid(t *testing.T) {
	assert.True(t, models.UrgencyHigh.Valid())
	assert.True(t, models.UrgencyMedium.Valid())
	assert.True(t, models.UrgencyLow.Valid())
	assert.False(t, models.Urgency("URGENT").Valid())
	assert.False(t, models.Urgency("").Valid())
}
