package jembe_test

import (
	"context"
	"fmt"
	"log"

	"github.com/Jembe/jembe-sub000"
	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/registry"
)

// ExampleClient_Flush loads a page, queues a call and merges the producer's answer.
func ExampleClient_Flush() {
	producer := transportFunc(func(ctx context.Context, req *domain.Request) ([]byte, error) {
		return []byte(`[{"execName": "/page/list", "state": {"page": 2}, "dom": "<div><ul><li>two</li></ul></div>"}]`), nil
	})
	c := jembe.New(jembe.WithTransport(producer))
	defer c.Close()

	ctx := context.Background()
	err := c.Load(ctx, `<html jmb-name="/page"><body>`+
		`<div jmb-name="/page/list" jmb-data='{"state":{"page":1},"actions":["next"]}'><ul></ul></div>`+
		`</body></html>`)
	if err != nil {
		log.Fatal(err)
	}

	c.Call("/page/list", "next", nil, nil)
	report, err := c.Flush(ctx)
	if err != nil {
		log.Fatal(err)
	}

	for _, name := range report.Order {
		fmt.Println(name, report.Outcomes[name])
	}
	fmt.Println("page =", c.Registry()["/page/list"].State["page"])
	// Output:
	// /page current
	// /page/list rendered
	// page = 2
}

// ExampleWithBinder attaches a directive layer to every "list" component.
func ExampleWithBinder() {
	binders := registry.NewRegistry()
	binders.Register("list", component.BinderFunc(func(c *component.Component) (component.Binding, error) {
		fmt.Println("bind", c.ExecName)
		return component.ReleaseFunc(func() { fmt.Println("release", c.ExecName) }), nil
	}))

	c := jembe.New(jembe.WithBinder(binders))
	err := c.Load(context.Background(), `<html jmb-name="/page"><body>`+
		`<div jmb-name="/page/list"></div>`+
		`</body></html>`)
	if err != nil {
		log.Fatal(err)
	}
	c.Close()
	// Output:
	// bind /page/list
	// release /page/list
}
