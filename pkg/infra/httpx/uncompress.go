package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
)

var ErrDecodedBodyTooLarge = errors.New("decoded body exceeds limit")

// DecodeChain decodes a response body according to its Content-Encoding header.
// Chained encodings ("gzip, br") are undone right to left. A positive limit caps
// the decoded size so a small compressed payload cannot expand without bound.
func DecodeChain(resp *fasthttp.Response, body []byte, limit int) ([]byte, bool, error) {
	return DecodeBody(string(resp.Header.Peek(fasthttp.HeaderContentEncoding)), body, limit)
}

func DecodeBody(contentEncoding string, body []byte, limit int) ([]byte, bool, error) {
	if contentEncoding == "" {
		return body, false, nil
	}
	encodings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(encodings) - 1; i >= 0; i-- {
		var (
			reader io.Reader
			closer func() error
		)
		switch enc := strings.TrimSpace(strings.ToLower(encodings[i])); enc {
		case "br":
			reader = brotli.NewReader(bytes.NewReader(body))
		case "gzip":
			gr, err := gzip.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, false, err
			}
			reader, closer = gr, gr.Close
		case "zstd":
			dec, err := zstd.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, false, err
			}
			reader = dec
			closer = func() error {
				dec.Close()
				return nil
			}
		case "deflate":
			// zlib-wrapped per RFC first, raw DEFLATE as fallback
			if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
				reader, closer = zr, zr.Close
			} else {
				fr := flate.NewReader(bytes.NewReader(body))
				reader, closer = fr, fr.Close
			}
		case "compress", "identity", "":
			continue
		default:
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", enc)
		}

		out, err := readLimited(reader, limit)
		if closer != nil {
			if cerr := closer(); cerr != nil && err == nil {
				err = cerr
			}
		}
		if err != nil {
			return nil, false, err
		}
		body = out
		changed = true
	}
	return body, changed, nil
}

func readLimited(r io.Reader, limit int) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		return nil, ErrDecodedBodyTooLarge
	}
	return out, nil
}
