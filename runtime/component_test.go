package runtime

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestRenderInitScript(t *testing.T) {
	c := &Component{
		Name:        "CommentsBox",
		Props:       map[string]any{"page": 1},
		ContainerID: "react1",
		serializer:  JSONSerializer{},
	}
	got, err := c.RenderInitScript()
	if err != nil {
		t.Fatal(err)
	}
	want := `ReactDOM.hydrate(React.createElement(CommentsBox, {"page":1}), document.getElementById("react1"))`
	if got != want {
		t.Fatalf("fragment:\ngot  %s\nwant %s", got, want)
	}

	// Deterministic across calls.
	again, err := c.RenderInitScript()
	if err != nil || again != got {
		t.Fatalf("non-deterministic fragment: %q, %v", again, err)
	}
}

func TestRenderInitScriptNamespacedName(t *testing.T) {
	c := &Component{
		Name:        "Components.CommentsBox",
		Props:       nil,
		ContainerID: "main",
		serializer:  JSONSerializer{},
	}
	got, err := c.RenderInitScript()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "React.createElement(Components.CommentsBox, null)") {
		t.Fatalf("fragment: %s", got)
	}
}

func TestRenderInitScriptSerializerFailure(t *testing.T) {
	boom := stderrors.New("cycle detected")
	c := &Component{
		Name:        "App",
		Props:       struct{}{},
		ContainerID: "react1",
		serializer:  failingSerializer{err: boom},
	}
	_, err := c.RenderInitScript()
	if err != boom {
		t.Fatalf("serializer error not propagated unchanged: %v", err)
	}
}

func TestInitScriptSerializerFailureSurfaces(t *testing.T) {
	env, _ := newTestEnv(t, Config{
		ReuseEngines: true,
		Serializer:   failingSerializer{err: stderrors.New("cycle detected")},
	})
	if _, err := env.CreateComponent("App", struct{}{}, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := env.InitScript(); err == nil || err.Error() != "cycle detected" {
		t.Fatalf("init script error = %v, want raw serializer error", err)
	}
}
