package player

import (
	"errors"
	"io"

	"github.com/grafov/m3u8"
)

var errEmptyPlaylist = errors.New("empty playlist")

// decodePlaylist parses an HLS playlist of either type. Parsing is lenient
// so that unknown tags from the backend do not fail playback.
func decodePlaylist(r io.Reader) (m3u8.Playlist, m3u8.ListType, error) {
	pl, typ, err := m3u8.DecodeFrom(r, false)
	if err != nil {
		return nil, 0, err
	}
	if pl == nil {
		return nil, 0, errEmptyPlaylist
	}
	return pl, typ, nil
}

// masterVariants lists the playable variants of a master playlist in
// declaration order. I-frame only variants are skipped.
func masterVariants(p *m3u8.MasterPlaylist) []Variant {
	out := make([]Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v == nil || v.Iframe || v.URI == "" {
			continue
		}
		out = append(out, Variant{
			URI:        v.URI,
			Bandwidth:  v.Bandwidth,
			Resolution: v.Resolution,
			Codecs:     v.Codecs,
		})
	}
	return out
}

// mediaManifest summarizes a media playlist. A playlist without
// #EXT-X-ENDLIST is reported as live. src becomes the single variant; callers
// that parsed a master playlist overwrite Variants.
func mediaManifest(src string, p *m3u8.MediaPlaylist) *Manifest {
	m := &Manifest{
		Variants:       []Variant{{URI: src}},
		TargetDuration: p.TargetDuration,
		Live:           !p.Closed,
	}
	for _, seg := range p.Segments {
		// Segments is a ring buffer; unused slots are nil.
		if seg == nil {
			continue
		}
		m.SegmentCount++
		m.Duration += seg.Duration
	}
	return m
}
