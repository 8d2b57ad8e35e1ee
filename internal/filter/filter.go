package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/photomosaic-mcp/internal/mosaic"
)

// Kind names a filter variant.
type Kind string

const (
	KindGrayscale      Kind = "grayscale"
	KindWeightedGray   Kind = "weighted_gray"
	KindMica           Kind = "mica"
	KindBlur           Kind = "blur"
	KindSharpen        Kind = "sharpen"
	KindEmboss         Kind = "emboss"
	KindFindEdges      Kind = "find_edges"
	KindMin            Kind = "min"
	KindMax            Kind = "max"
	KindCustomDiagonal Kind = "custom_diagonal"
	KindResize         Kind = "resize"
	KindMosaic         Kind = "mosaic"
)

// Filter is an image transformation.
//
// The set of variants is closed: only types in this package implement it.
type Filter interface {
	// Kind returns the variant name.
	Kind() Kind

	// Apply transforms img and returns a new image. img is never modified.
	// Parameters are validated first; invalid parameters yield
	// *mosaic.ValidationError.
	Apply(ctx context.Context, img image.Image) (image.Image, error)

	validate() error
}

// decoders builds a variant with its defaults filled in. The JSON params
// are unmarshalled over the returned value.
var decoders = map[Kind]func() Filter{
	KindGrayscale:      func() Filter { return &Grayscale{} },
	KindWeightedGray:   func() Filter { return &WeightedGray{} },
	KindMica:           func() Filter { return &Mica{Mask: "#ffffff"} },
	KindBlur:           func() Filter { return &Blur{Radius: 1} },
	KindSharpen:        func() Filter { return &Sharpen{} },
	KindEmboss:         func() Filter { return &Emboss{} },
	KindFindEdges:      func() Filter { return &FindEdges{Radius: 1} },
	KindMin:            func() Filter { return &Min{Radius: 1} },
	KindMax:            func() Filter { return &Max{Radius: 1} },
	KindCustomDiagonal: func() Filter { return &CustomDiagonal{Intensity: 1} },
	KindResize:         func() Filter { return &Resize{PercentX: 100, PercentY: 100} },
	KindMosaic:         func() Filter { return &Mosaic{BlockWidth: 16, BlockHeight: 16, UpscaleFactor: 1} },
}

// Kinds returns every filter kind, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(decoders))
	for k := range decoders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	engine *mosaic.Engine
}

// WithEngine supplies the engine used by mosaic filters.
func WithEngine(e *mosaic.Engine) DecodeOption {
	return func(c *decodeConfig) {
		c.engine = e
	}
}

// Decode builds the filter named kind from its JSON parameters.
//
// Parameters:
//   - kind: One of Kinds().
//   - params: A JSON object with the variant's parameters. Empty or null
//     selects the defaults.
//   - opts: WithEngine is required for the mosaic kind.
//
// Returns an error for an unknown kind, malformed params, or parameters
// that fail validation.
func Decode(kind string, params json.RawMessage, opts ...DecodeOption) (Filter, error) {
	newFilter, ok := decoders[Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown filter: %s", kind)
	}
	cfg := &decodeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	f := newFilter()
	if len(params) > 0 && string(params) != "null" {
		if err := json.Unmarshal(params, f); err != nil {
			return nil, fmt.Errorf("invalid %s parameters: %w", kind, err)
		}
	}
	if m, ok := f.(*Mosaic); ok {
		if cfg.engine == nil {
			return nil, fmt.Errorf("%s filter requires a mosaic engine", kind)
		}
		m.Engine = cfg.engine
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// positive reports a non-positive integer parameter.
func positive(field string, v int) error {
	if v <= 0 {
		return &mosaic.ValidationError{Field: field, Value: v}
	}
	return nil
}

// begin runs the checks every Apply starts with.
func begin(ctx context.Context, f Filter, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return &mosaic.ValidationError{Field: "image", Reason: "image has no pixels"}
	}
	if err := f.validate(); err != nil {
		return err
	}
	return ctx.Err()
}
