package dom_test

import (
	"testing"

	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Handles(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p id="a">x</p></body></html>`)
	require.NoError(t, err)

	el := doc.Element()
	require.NotNil(t, el)
	assert.Equal(t, "html", el.Data)

	id := doc.Handle(el)
	assert.NotEqual(t, dom.NoID, id)
	assert.Equal(t, id, doc.Handle(el), "handle must be stable")
	assert.Same(t, el, doc.Lookup(id))

	doc.Release(id)
	assert.Nil(t, doc.Lookup(id))
	assert.NotEqual(t, id, doc.Handle(el), "released handles are not reused")
}

func TestDocument_Prune(t *testing.T) {
	doc := dom.New()
	attached := doc.Handle(doc.Element())
	detached := doc.Handle(dom.NewElement("div"))

	assert.Equal(t, 1, doc.Prune())
	assert.NotNil(t, doc.Lookup(attached))
	assert.Nil(t, doc.Lookup(detached))
}

func TestDocument_SetElement(t *testing.T) {
	doc := dom.New()
	el, err := dom.ParseComponent(`<html><body>new</body></html>`, "/page", true)
	require.NoError(t, err)

	doc.SetElement(el)
	assert.Same(t, el, doc.Element())
	assert.True(t, doc.Contains(el))
	assert.Contains(t, doc.String(), "new")
	assert.Contains(t, doc.String(), `jmb-name="/page"`)
}
