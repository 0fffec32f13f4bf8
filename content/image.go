package content

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/tiff"

	"github.com/corvuspdf/engine/filters"
	"github.com/corvuspdf/engine/object"
)

// ImageXObject is a decoded raster image ready to be embedded as a PDF
// Image XObject stream (spec.md §4.5 "Authoring"), grounded on
// contentstream/images.go's ParseImage but adapted to this engine's
// object.Stream/StreamSource types instead of the teacher's
// model.XObjectImage.
type ImageXObject struct {
	Width, Height    int
	BitsPerComponent int
	ColorSpace       object.Name
	// Filter is the PDF filter name the encoded Data is already stored
	// under ("DCTDecode" for JPEG passthrough, "FlateDecode" otherwise).
	Filter object.Name
	Data   []byte
}

// DecodeImage imports a JPEG, PNG, GIF, or TIFF image by its MIME type
// (spec.md §4.5 domain stack: "image XObject authoring wires
// golang.org/x/image/tiff for TIFF dimension/pixel decoding, since the
// standard library's image package has no TIFF decoder").
func DecodeImage(r io.Reader, mimeType string) (*ImageXObject, error) {
	switch mimeType {
	case "image/jpeg":
		return decodeJPEG(r)
	case "image/png":
		img, err := png.Decode(r)
		if err != nil {
			return nil, err
		}
		return encodeRaster(img)
	case "image/gif":
		img, err := gif.Decode(r)
		if err != nil {
			return nil, err
		}
		return encodeRaster(img)
	case "image/tiff":
		img, err := tiff.Decode(r)
		if err != nil {
			return nil, err
		}
		return encodeRaster(img)
	default:
		return nil, fmt.Errorf("content: unsupported image MIME type %q", mimeType)
	}
}

// decodeJPEG stores JPEG data as-is under /DCTDecode (PDF's native JPEG
// passthrough, PDF 1.7 §7.4.8), avoiding a decode/re-encode round trip.
func decodeJPEG(r io.Reader) (*ImageXObject, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out := &ImageXObject{Width: cfg.Width, Height: cfg.Height, BitsPerComponent: 8, Filter: "DCTDecode", Data: data}
	switch cfg.ColorModel {
	case color.GrayModel:
		out.ColorSpace = "DeviceGray"
	case color.YCbCrModel:
		out.ColorSpace = "DeviceRGB"
	case color.CMYKModel:
		out.ColorSpace = "DeviceCMYK"
	default:
		return nil, fmt.Errorf("content: unsupported JPEG color model %v", cfg.ColorModel)
	}
	return out, nil
}

// encodeRaster flattens a decoded image.Image to 8-bit RGB samples and
// Flate-encodes them (spec.md's authoring path keeps raster images
// simple: no indexed/palette XObjects, no alpha/SMask).
func encodeRaster(img image.Image) (*ImageXObject, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	raw := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			raw = append(raw, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	encoded, err := filters.Encode("FlateDecode", raw, nil)
	if err != nil {
		return nil, err
	}
	return &ImageXObject{
		Width: w, Height: h, BitsPerComponent: 8, ColorSpace: "DeviceRGB",
		Filter: "FlateDecode", Data: encoded,
	}, nil
}

// Stream builds the PDF stream object for this image, suitable for
// writing as an indirect object and referencing from a page's
// /Resources /XObject dictionary.
func (img *ImageXObject) Stream() object.Stream {
	dict := object.NewDictionary()
	dict.Set("Type", object.Name("XObject"))
	dict.Set("Subtype", object.Name("Image"))
	dict.Set("Width", object.Integer(img.Width))
	dict.Set("Height", object.Integer(img.Height))
	dict.Set("BitsPerComponent", object.Integer(img.BitsPerComponent))
	dict.Set("ColorSpace", img.ColorSpace)
	dict.Set("Filter", img.Filter)
	dict.Set("Length", object.Integer(len(img.Data)))
	return object.Stream{Dict: dict, Source: object.StreamSource{Kind: object.SourceMemory, Bytes: img.Data}}
}

// PlacementMatrix returns the cm operands to paint this image at the
// given width/height in user-space units, scaling the unit square the
// Do operator paints an image XObject into (PDF 1.7 §8.9.5.2).
func PlacementMatrix(width, height float64) Matrix {
	return Matrix{A: width, D: height}
}
