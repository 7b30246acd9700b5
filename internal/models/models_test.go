package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFavoriteTarget_Valid(t *testing.T) {
	tests := []struct {
		name   string
		target FavoriteTarget
		want   bool
	}{
		{"model only", FavoriteTarget{ModelID: "m-1"}, true},
		{"article only", FavoriteTarget{ArticleID: "a-1"}, true},
		{"both", FavoriteTarget{ModelID: "m-1", ArticleID: "a-1"}, false},
		{"neither", FavoriteTarget{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.Valid())
		})
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile("demo@company.com")
	assert.Equal(t, "demo@company.com", p.Email)
	assert.Equal(t, DefaultCompanyIndustry, p.CompanyIndustry)
	assert.Equal(t, DefaultCompanyScale, p.CompanyScale)
}
