package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"time"

	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/observability"
)

// Load reads a graph document from path. The codec follows the extension.
func Load(ctx context.Context, path string) (*graph.Graph, error) {
	if err := errors.ValidateGraphFile(path); err != nil {
		return nil, err
	}
	f, err := graph.FormatFromPath(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", path)
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, err
	}
	defer file.Close()
	return Decode(ctx, file, f, path)
}

// Decode reads a graph document from r. Source names the input in hooks
// and errors.
func Decode(ctx context.Context, r io.Reader, f graph.Format, source string) (*graph.Graph, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	g, err := graph.Read(r, f)
	if err != nil {
		err = classify(err, source)
		hooks.OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnLoadComplete(ctx, source, g.NodeCount(), time.Since(start), nil)
	return g, nil
}

func classify(err error, source string) error {
	switch {
	case errors.Is(err, errors.ErrCodeInvalidInput):
		return err
	case isGraphError(err, graph.ErrDuplicateNodeID):
		return errors.Wrap(errors.ErrCodeDuplicateNode, err, "%s", source)
	case isGraphError(err, graph.ErrUnknownSourceNode, graph.ErrUnknownTargetNode, graph.ErrInvalidEdgeEndpoint):
		return errors.Wrap(errors.ErrCodeMissingNode, err, "%s", source)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", source)
}

func isGraphError(err error, targets ...error) bool {
	for _, t := range targets {
		if stderrors.Is(err, t) {
			return true
		}
	}
	return false
}
