package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		input string
		want  rules.Cost
	}{
		{"3 PA", rules.Cost{Amount: 3, Kind: rules.KindPA}},
		{"1PM", rules.Cost{Amount: 1, Kind: rules.KindPM}},
		{"0 PA", rules.Cost{Amount: 0, Kind: rules.KindPA}},
		{"1 PW", rules.Cost{Amount: 1, Kind: rules.KindPW}},
		{"  6 PA  ", rules.Cost{Amount: 6, Kind: rules.KindPA}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := rules.ParseCost(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCost_Invalid(t *testing.T) {
	inputs := []string{"", "PA", "3 XP", "-1 PA", "3.5 PA", "three PA"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := rules.ParseCost(input)
			assert.Error(t, err)
		})
	}
}

func TestCost_Formats(t *testing.T) {
	c := rules.Cost{Amount: 3, Kind: rules.KindPA}
	assert.Equal(t, "3 PA", c.String())
	assert.Equal(t, "3PA", c.Token())
	assert.False(t, c.IsZero())
	assert.True(t, rules.Cost{}.IsZero())
}
