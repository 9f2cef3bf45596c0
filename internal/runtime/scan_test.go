package runtime_test

import (
	"testing"

	"github.com/Jembe/jembe-sub000/internal/runtime"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	doc, err := dom.ParseString(`<html jmb-name="/page" jmb-data='{"state":{"tab":"all"},"url":"/","changesUrl":true}'><body>` +
		`<div jmb-name="/page/list" jmb-data='{"state":{"page":2},"actions":["next"]}'></div>` +
		`<div jmb-ignore><div jmb-name="/page/widget"></div></div>` +
		`<div jmb-name="/page/list"></div>` +
		`</body></html>`)
	require.NoError(t, err)

	reg, err := runtime.Scan(doc, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/page", "/page/list"}, reg.Names())

	page := reg["/page"]
	assert.True(t, page.IsRoot)
	assert.True(t, page.OnDocument)
	assert.False(t, page.Mounted)
	assert.Equal(t, "all", page.State["tab"])
	assert.True(t, page.ChangesURL)

	list := reg["/page/list"]
	assert.Equal(t, float64(2), list.State["page"])
	assert.True(t, list.HasAction("next"))
	assert.False(t, dom.HasAttr(list.Element(), dom.AttrData))
}

func TestScan_BadData(t *testing.T) {
	doc, err := dom.ParseString(`<html jmb-name="/page" jmb-data="{oops"><body></body></html>`)
	require.NoError(t, err)

	_, err = runtime.Scan(doc, nil, nil)
	assert.ErrorContains(t, err, "/page")
}
