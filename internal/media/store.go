// Package media integrates the external object store that hosts
// profile pictures and post images. Uploads accept either a base64
// data URL (as sent by the web client) or an already-hosted http(s)
// URL, which passes through untouched.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

type Store interface {
	Upload(ctx context.Context, data string) (string, error)
	Delete(ctx context.Context, url string) error
}

var extByMime = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func decodeDataURL(data string) (payload []byte, contentType, ext string, err error) {
	rest, ok := strings.CutPrefix(data, "data:")
	if !ok {
		return nil, "", "", fmt.Errorf("not a data url")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", "", fmt.Errorf("unsupported data url encoding")
	}
	contentType = strings.TrimSuffix(meta, ";base64")

	payload, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", "", fmt.Errorf("decode data url: %w", err)
	}

	ext, ok = extByMime[contentType]
	if !ok {
		ext = ".bin"
	}
	return payload, contentType, ext, nil
}
