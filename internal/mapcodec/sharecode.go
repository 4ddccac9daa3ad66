package mapcodec

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/towerfield/internal/telemetry"
	"github.com/samdwyer/towerfield/internal/world"
)

// ShareCodePrefix marks a compressed map string.
const ShareCodePrefix = "tf1:"

// Stateless encoder and decoder; EncodeAll/DecodeAll are safe for concurrent use.
var (
	zenc = mustNewEncoder()
	zdec = mustNewDecoder()
)

// mustNewEncoder builds the share code compressor, panicking on error.
// The options are constant, so a failure here is a build problem.
func mustNewEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
	}
	return enc
}

// mustNewDecoder builds the share code decompressor, panicking on error.
func mustNewDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
	}
	return dec
}

// EncodeShareCode returns a compact, copy-paste friendly form of the map string:
// the JSON is zstd compressed and base64url encoded behind ShareCodePrefix.
func EncodeShareCode(g *world.Grid) (string, error) {
	data, err := marshal(g)
	if err != nil {
		return "", err
	}
	return ShareCodePrefix + base64.RawURLEncoding.EncodeToString(zenc.EncodeAll(data, nil)), nil
}

// DecodeShareCode reverses EncodeShareCode.
func DecodeShareCode(code string) (*world.Grid, error) {
	payload, ok := strings.CutPrefix(strings.TrimSpace(code), ShareCodePrefix)
	if !ok {
		return nil, malformed("share code must start with %q", ShareCodePrefix)
	}
	compressed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, malformed("share code: %v", err)
	}
	data, err := zdec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, malformed("share code: %v", err)
	}
	return unmarshal(data)
}

// Parse decodes either a plain map string or a share code.
func Parse(s string) (*world.Grid, error) {
	if strings.HasPrefix(strings.TrimSpace(s), ShareCodePrefix) {
		return DecodeShareCode(s)
	}
	return Decode(s)
}

// Import loads s into g. On success g is fully replaced by the decoded level.
// On failure the input is discarded and g is reset to an empty grid of its current
// size; the decode error is returned so the caller can report it.
func Import(ctx context.Context, g *world.Grid, s string) error {
	_, span := telemetry.Tracer("mapcodec").Start(ctx, "mapcodec.import")
	defer span.End()

	decoded, err := Parse(s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		// Reset cannot fail on an existing grid's own dimensions
		_ = g.Reset(g.Cols(), g.Rows())
		return err
	}

	g.ReplaceWith(decoded)
	span.SetAttributes(
		attribute.Int("grid.cols", g.Cols()),
		attribute.Int("grid.rows", g.Rows()),
		attribute.Int("grid.spawnpoints", len(g.Spawnpoints())),
	)
	return nil
}
