package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"production", Production},
		{"staging", Staging},
		{"testing", Testing},
		{"development", Development},
		{"", Development},
		{"prod", Development},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseEnvironment(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == Production, got.IsProduction())
		})
	}
}
