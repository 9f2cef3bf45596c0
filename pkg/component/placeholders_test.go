package component_test

import (
	"testing"

	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexPlaceholders(t *testing.T) {
	doc := dom.New()
	root, err := dom.ParseComponent(`
		<div>
			<header><div jmb-placeholder="/page/title"></div></header>
			<main jmb-name="/page/view">
				<div jmb-name="/page/view/detail">nested</div>
			</main>
			<template jmb-placeholder-permanent="/page/toast"></template>
			<div jmb-name="/page">self again</div>
		</div>`, "/page", false)
	require.NoError(t, err)

	placeholders, permanent := component.IndexPlaceholders(doc, root, "/page")

	assert.Len(t, placeholders, 2)
	assert.Contains(t, placeholders, "/page/title")
	assert.Contains(t, placeholders, "/page/view")
	assert.NotContains(t, placeholders, "/page/view/detail", "grandchildren belong to their own parent")

	require.Contains(t, permanent, "/page/toast")
	tag := doc.Lookup(permanent["/page/toast"]).Data
	assert.Equal(t, "template", tag)

	view := doc.Lookup(placeholders["/page/view"])
	assert.Equal(t, "main", view.Data)
}
