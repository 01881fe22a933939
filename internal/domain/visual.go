package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownVisualType = errors.New("unknown visual type")

type VisualType struct {
	Value string
	Label string
	Icon  string
}

var visualTypes = []VisualType{
	{Value: "diagram", Label: "Educational Diagram", Icon: "📊"},
	{Value: "flowchart", Label: "Process Flowchart", Icon: "🔄"},
	{Value: "infographic", Label: "Infographic", Icon: "📈"},
	{Value: "illustration", Label: "Concept Illustration", Icon: "🎨"},
	{Value: "map", Label: "Mind Map", Icon: "🗺️"},
	{Value: "timeline", Label: "Timeline", Icon: "⏰"},
}

func VisualTypes() []VisualType {
	out := make([]VisualType, len(visualTypes))
	copy(out, visualTypes)
	return out
}

func LookupVisualType(value string) (VisualType, error) {
	for _, v := range visualTypes {
		if v.Value == value {
			return v, nil
		}
	}
	return VisualType{}, fmt.Errorf("%w: %q", ErrUnknownVisualType, value)
}

// VisualAid is a generated image prompt plus the URL of the rendered image.
type VisualAid struct {
	Topic       string
	Type        VisualType
	ImagePrompt string
	ImageURL    string
}
