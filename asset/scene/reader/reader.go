package reader

import (
	"fmt"
	"strings"

	"github.com/microsoft/morphcharts-sub000/asset"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
)

// A world together with the camera it should be viewed from.
type Scene struct {
	World  *scene.World
	Camera *scene.Camera
}

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*Scene, error)
}

// Read a scene. The name of a built-in demo scene may be used in place
// of a filename.
func ReadScene(filename string) (*Scene, error) {
	if sc, ok := Demo(filename); ok {
		return sc, nil
	}

	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(strings.ToLower(filename), ".json") {
		reader = newJsonSceneReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format or unknown demo scene %q; demo scenes: %s", filename, strings.Join(DemoNames(), ", "))
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
