package hls

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Manifest is the subset of an HLS playlist the engine needs to validate a stream
type Manifest struct {
	// Master is set when the playlist lists variant streams
	Master   bool
	Variants []string
	Segments int
}

var (
	errNotPlaylist = errors.New("missing #EXTM3U header")
	errEmpty       = errors.New("playlist has no variants or segments")
)

// ParseManifest validates body as an HLS playlist and collects its variant and segment URIs
func ParseManifest(body []byte) (*Manifest, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	m := &Manifest{}
	header := false
	pendingVariant := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !header {
			if line != "#EXTM3U" {
				return nil, errNotPlaylist
			}
			header = true
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF"):
			pendingVariant = true
		case strings.HasPrefix(line, "#"):
			// other tags and comments
		case pendingVariant:
			m.Variants = append(m.Variants, line)
			pendingVariant = false
		default:
			m.Segments++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}
	if !header {
		return nil, errNotPlaylist
	}

	m.Master = len(m.Variants) > 0
	if !m.Master && m.Segments == 0 {
		return nil, errEmpty
	}
	return m, nil
}

// ResolveVariant resolves a playlist URI against the URL the manifest was loaded from
func ResolveVariant(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid manifest URL: %w", err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid variant URI: %w", err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
