package ai

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

const defaultImageMIME = "image/jpeg"

// Image is a decoded upload ready to send to a provider
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI encodes the image back into a data: URI
func (i Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// DecodeDataURI accepts "data:<mime>;base64,<payload>" or a bare base64 payload.
// Bare payloads are assumed to be JPEG.
func DecodeDataURI(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, ErrMissingImage
	}

	mime := defaultImageMIME
	payload := s
	if strings.HasPrefix(s, "data:") {
		comma := strings.Index(s, ",")
		if comma < 0 {
			return Image{}, fmt.Errorf("malformed data URI")
		}
		header := s[len("data:"):comma]
		payload = s[comma+1:]
		if semi := strings.Index(header, ";"); semi >= 0 {
			header = header[:semi]
		}
		if header != "" {
			mime = header
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Image{}, fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	if len(data) == 0 {
		return Image{}, ErrMissingImage
	}

	return Image{Data: data, MIMEType: mime}, nil
}

// Downscale shrinks the image so its long edge is at most maxEdge pixels and
// re-encodes it as JPEG. Images that are small enough, or that imaging cannot
// decode, are returned unchanged.
func Downscale(img Image, maxEdge int) Image {
	if maxEdge <= 0 {
		return img
	}

	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return img
	}

	b := src.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return img
	}

	dst := imaging.Fit(src, maxEdge, maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return img
	}

	return Image{Data: buf.Bytes(), MIMEType: defaultImageMIME}
}
