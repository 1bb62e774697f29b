package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Sony A7 IV", "sony-a7-iv"},
		{"  Canon EOS R5  ", "canon-eos-r5"},
		{"Fujifilm X-T5 (Silver)", "fujifilm-x-t5-silver"},
		{"DJI Mini 4 Pro!!", "dji-mini-4-pro"},
		{"Leica Q3 — 60MP", "leica-q3-60mp"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), tt.name)
	}
}

func TestProductBeforeSave(t *testing.T) {
	p := &Product{Name: "Nikon Z8", Slug: "stale"}
	assert.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, "nikon-z8", p.Slug)
}
