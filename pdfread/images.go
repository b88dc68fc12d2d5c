package pdfread

import (
	"bytes"
	"compress/zlib"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/pdfmill/pdfmill/model"
)

// maxImageScan bounds how much of a file the raster scan will read.
const maxImageScan = 256 << 20

var (
	streamStart = []byte("stream")
	streamEnd   = []byte("endstream")
	dictOpen    = []byte("<<")

	numAttrRe = regexp.MustCompile(`/(Width|Height|BitsPerComponent)\s+(\d+)`)
	filterRe  = regexp.MustCompile(`/Filter\s*(?:\[\s*)?/(\w+)`)
	colorRe   = regexp.MustCompile(`/ColorSpace\s*/(\w+)`)
	subtypeRe = regexp.MustCompile(`/Subtype\s*/Image\b`)
)

// imageStream is one image XObject located by the raw scan.
type imageStream struct {
	width  int
	height int
	bits   int
	filter string
	color  string
	data   []byte
}

// scanImages locates image XObject streams in the raw file and converts
// them to page rasters. Rasters are associated with pages positionally:
// scanned documents carry one full-page image per page in page order.
// When the image count does not line up with the page count no
// association is made, which only disables the raster-dependent paths.
func scanImages(path string, pageCount int) []*model.Raster {
	rasters := make([]*model.Raster, pageCount)
	data, err := readCapped(path)
	if err != nil {
		return rasters
	}

	streams := findImageStreams(data)
	if len(streams) != pageCount {
		// Fewer images than pages, or extra decorative images mixed in
		// with scans: positional association would be a guess.
		return rasters
	}

	for i, s := range streams {
		rasters[i] = decodeStream(s)
	}
	return rasters
}

func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageScan))
}

// findImageStreams walks stream markers and keeps those whose dictionary
// declares /Subtype /Image.
func findImageStreams(data []byte) []imageStream {
	var streams []imageStream
	offset := 0
	for {
		rel := bytes.Index(data[offset:], streamStart)
		if rel < 0 {
			break
		}
		pos := offset + rel
		offset = pos + len(streamStart)

		dict := dictBefore(data, pos)
		if dict == nil || !subtypeRe.Match(dict) {
			continue
		}

		body := streamBody(data, pos)
		if body == nil {
			continue
		}

		s := imageStream{data: body, bits: 8}
		for _, m := range numAttrRe.FindAllSubmatch(dict, -1) {
			n, _ := strconv.Atoi(string(m[2]))
			switch string(m[1]) {
			case "Width":
				s.width = n
			case "Height":
				s.height = n
			case "BitsPerComponent":
				s.bits = n
			}
		}
		if m := filterRe.FindSubmatch(dict); m != nil {
			s.filter = string(m[1])
		}
		if m := colorRe.FindSubmatch(dict); m != nil {
			s.color = string(m[1])
		}
		if s.width > 0 && s.height > 0 {
			streams = append(streams, s)
		}
	}
	return streams
}

// dictBefore returns the dictionary immediately preceding a stream
// keyword, or nil if none is found nearby.
func dictBefore(data []byte, streamPos int) []byte {
	windowStart := streamPos - 2048
	if windowStart < 0 {
		windowStart = 0
	}
	window := data[windowStart:streamPos]
	start := bytes.LastIndex(window, dictOpen)
	if start < 0 {
		return nil
	}
	return window[start:]
}

// streamBody extracts the bytes between the stream keyword and the
// matching endstream.
func streamBody(data []byte, streamPos int) []byte {
	body := data[streamPos+len(streamStart):]
	// Skip the EOL after the stream keyword.
	if len(body) > 0 && body[0] == '\r' {
		body = body[1:]
	}
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}
	end := bytes.Index(body, streamEnd)
	if end < 0 {
		return nil
	}
	body = body[:end]
	// Trim the EOL before endstream.
	body = bytes.TrimRight(body, "\r\n")
	return body
}

// decodeStream converts an image stream into an encoded raster. JPEG
// streams pass through untouched; flate-compressed gray/RGB bitmaps are
// inflated and re-encoded as PNG. Unsupported encodings yield nil.
func decodeStream(s imageStream) *model.Raster {
	switch s.filter {
	case "DCTDecode":
		return &model.Raster{
			Data:   s.data,
			Format: model.RasterJPEG,
			Width:  s.width,
			Height: s.height,
		}
	case "FlateDecode":
		return inflateBitmap(s)
	default:
		return nil
	}
}

func inflateBitmap(s imageStream) *model.Raster {
	if s.bits != 8 {
		return nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(s.data))
	if err != nil {
		return nil
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil
	}

	var img image.Image
	switch s.color {
	case "DeviceGray":
		if len(raw) < s.width*s.height {
			return nil
		}
		gray := image.NewGray(image.Rect(0, 0, s.width, s.height))
		copy(gray.Pix, raw[:s.width*s.height])
		img = gray
	case "DeviceRGB":
		if len(raw) < s.width*s.height*3 {
			return nil
		}
		rgba := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		for i := 0; i < s.width*s.height; i++ {
			rgba.SetRGBA(i%s.width, i/s.width, color.RGBA{
				R: raw[i*3],
				G: raw[i*3+1],
				B: raw[i*3+2],
				A: 255,
			})
		}
		img = rgba
	default:
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return &model.Raster{
		Data:   buf.Bytes(),
		Format: model.RasterPNG,
		Width:  s.width,
		Height: s.height,
	}
}
