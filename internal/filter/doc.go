// Package filter implements the image filters offered next to mosaic
// composition.
//
// Every filter is a value implementing Filter. Variants are built directly
// or decoded from a kind name and JSON parameters, as the MCP server does:
//
//	f, err := filter.Decode("blur", json.RawMessage(`{"radius":3}`))
//	if err != nil {
//	    return err
//	}
//	out, err := f.Apply(ctx, img)
//
// Pixel work is delegated to bild (convolutions, morphology, channel
// mapping) and disintegration/imaging (grayscale and resampling). The
// mosaic variant runs a composition on a mosaic.Engine.
package filter
