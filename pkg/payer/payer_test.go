package payer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldShowState(t *testing.T) {
	tests := []struct {
		payer string
		want  bool
	}{
		{payer: "Anthem BCBS of CA", want: true},
		{payer: "Aetna", want: false},
		{payer: "BLUE CROSS", want: true},
		{payer: "anthem", want: true},
		{payer: "Highmark bcbs", want: true},
		{payer: "", want: false},
		{payer: "Cigna", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.payer, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldShowState(tt.payer))
		})
	}
}

func TestUsesStateQuery(t *testing.T) {
	assert.False(t, UsesStateQuery("BCBS", ""))
	assert.True(t, UsesStateQuery("", "Texas"))
	assert.True(t, UsesStateQuery("Blue Cross", "Texas"))
	assert.True(t, UsesStateQuery("bcbs", "TX"))
	assert.False(t, UsesStateQuery("Anthem", "Texas"))
	assert.False(t, UsesStateQuery("Aetna", "Texas"))
}

func TestStatePatterns(t *testing.T) {
	assert.Equal(t, []string{"%Texas%", "%OF Texas%"}, StatePatterns("Texas"))
}
