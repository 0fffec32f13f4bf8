package filters

import "fmt"

// ImageInfo carries the image metadata a DCTDecode (or raw, predictor-free)
// stream exposes to document.ParsedPage without a full JPEG decode (spec.md
// §4.3 "DCTDecode").
type ImageInfo struct {
	Width      int
	Height     int
	Components int
	ColorSpace string
}

// sofMarkers are the JPEG Start-Of-Frame markers; any of them carries the
// frame header (width/height/components) we need. 0xC4/0xC8/0xCC are not
// SOF markers and must be skipped like any other marker segment.
var sofMarkers = map[byte]bool{
	0xC0: true, 0xC1: true, 0xC2: true, 0xC3: true,
	0xC5: true, 0xC6: true, 0xC7: true,
	0xC9: true, 0xCA: true, 0xCB: true,
	0xCD: true, 0xCE: true, 0xCF: true,
}

// DCTImageInfo scans a JPEG byte stream's marker segments for the SOF frame
// header and reports its dimensions, without decompressing any image data.
func DCTImageInfo(data []byte) (ImageInfo, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return ImageInfo{}, InvalidFilterDataError{Filter: DCT, Reason: "missing SOI marker"}
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xD8 || marker == 0xD9 || (marker >= 0xD0 && marker <= 0xD7) {
			i += 2
			continue
		}
		if i+4 > len(data) {
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if sofMarkers[marker] {
			if i+10 > len(data) {
				return ImageInfo{}, InvalidFilterDataError{Filter: DCT, Reason: "truncated SOF segment"}
			}
			h := int(data[i+5])<<8 | int(data[i+6])
			w := int(data[i+7])<<8 | int(data[i+8])
			comps := int(data[i+9])
			info := ImageInfo{Width: w, Height: h, Components: comps}
			switch comps {
			case 1:
				info.ColorSpace = "DeviceGray"
			case 3:
				info.ColorSpace = "DeviceRGB"
			case 4:
				info.ColorSpace = "DeviceCMYK"
			default:
				info.ColorSpace = fmt.Sprintf("Unknown(%d components)", comps)
			}
			return info, nil
		}
		if marker == 0x01 || segLen < 2 {
			i += 2
			continue
		}
		i += 2 + segLen
	}
	return ImageInfo{}, InvalidFilterDataError{Filter: DCT, Reason: "no SOF marker found"}
}
