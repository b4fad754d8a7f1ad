package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meeplemedia/creatordex/internal/dataset"
	"github.com/meeplemedia/creatordex/internal/model"
)

func TestSubscriberCell(t *testing.T) {
	row := model.Row{model.KeyChannelName: "Dice Tower"}
	subs := model.Subscribers{
		"dice tower": {Count: model.Int64(313000)},
		"hidden one": {},
	}

	assert.Equal(t, "313000", subscriberCell(row, subs))
	assert.Equal(t, "-", subscriberCell(model.Row{model.KeyChannelName: "Unknown"}, subs))

	hidden := model.Row{model.KeyChannelName: "Hidden One"}
	assert.Equal(t, "hidden", subscriberCell(hidden, subs))
}

func TestFacetsForIgnoresDroppedRows(t *testing.T) {
	rows := []model.Row{
		{model.KeyChannelName: "Chan", model.KeyPlatforms: "YouTube", model.KeyCountry: "USA"},
		// Duplicate of the first row; its platform and country must not
		// surface as options.
		{model.KeyChannelName: "  chan ", model.KeyPlatforms: "Twitch", model.KeyCountry: "USA"},
		// No channel name: dropped entirely.
		{model.KeyPlatforms: "Blog", model.KeyCountry: "France"},
	}

	got := facetsFor(rows)
	assert.Equal(t, []string{"YouTube"}, got.Platforms)
	assert.Equal(t, []string{"United States"}, got.Countries)

	// Deriving from an already-deduplicated set changes nothing.
	assert.Equal(t, got, facetsFor(dataset.Dedupe(rows)))
}

func TestNoIdentifier(t *testing.T) {
	withLink := model.Row{
		model.KeyChannelName: "Dice Tower",
		model.KeyLink:        "https://www.youtube.com/channel/UCuMKPcqZVfmbn9Ze8nvQq1Q",
	}
	assert.False(t, noIdentifier(withLink))

	withHandleName := model.Row{model.KeyChannelName: "@dicetower"}
	assert.False(t, noIdentifier(withHandleName))

	bare := model.Row{model.KeyChannelName: "Dice Tower", model.KeyLink: "https://dicetower.example"}
	assert.True(t, noIdentifier(bare))
}
