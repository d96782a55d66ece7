package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/observability"
	"github.com/matzehuels/swimlane/pkg/render/bpmn"
	"github.com/matzehuels/swimlane/pkg/render/dot"
)

// Render produces the requested formats from a positioned graph.
func Render(ctx context.Context, g *graph.Graph, formats []string, detailed bool) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	artifacts, err := render(ctx, g, formats, detailed)
	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	return artifacts, err
}

func render(ctx context.Context, g *graph.Graph, formats []string, detailed bool) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	var dotSrc string
	for _, format := range formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = graph.Marshal(g, graph.FormatJSON)
		case FormatYAML:
			data, err = graph.Marshal(g, graph.FormatYAML)
		case FormatBPMN:
			data, err = bpmn.Marshal(g)
		case FormatDOT, FormatSVG:
			if dotSrc == "" {
				dotSrc = dot.ToDOT(g, dot.Options{Detailed: detailed})
			}
			if format == FormatDOT {
				data = []byte(dotSrc)
			} else {
				data, err = dot.RenderSVG(ctx, dotSrc)
			}
		default:
			return nil, ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
