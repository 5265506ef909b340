package runtime

import (
	"fmt"

	reactruntime "github.com/wippyai/react-runtime"
)

// Component is one registered mount point: a component name, its
// properties payload, and the container element the client-side bootstrap
// attaches to. Entries live exactly as long as their environment and are
// never removed individually.
type Component struct {
	// Name identifies the client-side component to mount, e.g.
	// "CommentsBox" or "Components.CommentsBox".
	Name string

	// Props is the opaque properties payload, serialized by the
	// environment's configured serializer.
	Props any

	// ContainerID locates the mount element client-side.
	ContainerID string

	serializer reactruntime.Serializer
}

// RenderInitScript produces the fragment that mounts this component
// client-side. Deterministic for identical (name, props, container)
// input. Serialization failures propagate unchanged from the serializer.
func (c *Component) RenderInitScript() (string, error) {
	props, err := c.serializer.Serialize(c.Props)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ReactDOM.hydrate(React.createElement(%s, %s), document.getElementById(%q))",
		c.Name, props, c.ContainerID), nil
}
