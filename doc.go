/*
Package jembe keeps a document's element tree in sync with a hierarchy of
server-rendered components.

Each component is identified by a hierarchical execName ("/page", "/page/list",
"/page/list/item") and owns one subtree of the document. The producer re-renders
only what changed; the client grafts the new markup into the document and leaves
untouched subtrees alone, so their element identity, bindings and timers survive.
Outgoing state changes are batched into a single request.

# Markup contract

  - jmb-name="execName" marks the root element of a component.
  - jmb-data='{"state":...,"url":...,"changesUrl":...,"actions":[...]}' seeds a
    component found on the initial document.
  - jmb-placeholder="execName" reserves the slot of a child component.
  - jmb-placeholder-permanent="execName" is a stable anchor; a child appearing
    later is inserted right after it.
  - jmb-ignore marks an element the diff never enters.

# Usage

	client := jembe.New(
		jembe.WithTransport(httpadapter.NewTransport(baseURL)),
		jembe.WithHistory(memory.NewHistoryStore(), "session-1"),
	)
	if err := client.Load(ctx, initialHTML); err != nil {
		log.Fatal(err)
	}

	client.Init("/page/list", map[string]any{"filter.status": "open"}, true)
	client.Call("/page/list", "refresh", nil, nil)
	if _, err := client.Flush(ctx); err != nil {
		log.Printf("flush: %v", err)
	}

A failed request is reported through LifecycleHooks and never retried.
Responses are applied in the order they arrive.
*/
package jembe
