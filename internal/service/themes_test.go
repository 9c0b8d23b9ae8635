package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfwise/shelfwise/internal/models"
)

func TestThematicLabel(t *testing.T) {
	tests := []struct {
		name   string
		genres []*string
		want   string
	}{
		{
			name:   "exact match",
			genres: []*string{strPtr("science fiction")},
			want:   "Sci-Fi",
		},
		{
			name:   "exact match is case insensitive",
			genres: []*string{strPtr("Mystery and Detective Stories")},
			want:   "Mystery",
		},
		{
			name:   "substring containment",
			genres: []*string{strPtr("juvenile fiction / dystopian")},
			want:   "Young Adult",
		},
		{
			name:   "first matching genre wins",
			genres: []*string{nil, strPtr(""), strPtr("horror"), strPtr("romance")},
			want:   "Horror",
		},
		{
			name:   "unknown genre is title-cased",
			genres: []*string{strPtr("underwater basket weaving")},
			want:   "Underwater Basket Weaving",
		},
		{
			name:   "no usable genres",
			genres: []*string{nil, strPtr("   ")},
			want:   GenericThemeLabel,
		},
		{
			name:   "empty input",
			genres: nil,
			want:   GenericThemeLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThematicLabel(tt.genres))
		})
	}
}

func TestGenerateReason_thematic(t *testing.T) {
	cluster := models.Cluster{
		Anchor: models.Anchor{Title: "Gone Girl"},
		Theme:  "Mystery",
	}

	assert.Equal(t, `Mystery — inspired by "Gone Girl"`, GenerateReason(cluster))
}

func TestGenerateReason_genericThemeFallsBackToAnchorTitle(t *testing.T) {
	cluster := models.Cluster{
		Anchor: models.Anchor{Title: "The Goldfinch"},
		Theme:  GenericThemeLabel,
	}

	assert.Equal(t, `Because you liked "The Goldfinch"`, GenerateReason(cluster))
}

func TestTitleCase_splitsOnSlashes(t *testing.T) {
	assert.Equal(t, "Fiction Thrillers Legal", titleCase("FICTION / Thrillers / legal"))
}
