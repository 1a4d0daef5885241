package types

import (
	"encoding/json"
	"strings"
)

// RemotePath is a location in the remote tree. Segments are never empty,
// so the joined form never contains "//".
type RemotePath struct {
	absolute bool
	segments []string
}

func ParseRemotePath(s string) RemotePath {
	s = strings.TrimSpace(s)
	return RemotePath{
		absolute: strings.HasPrefix(s, "/"),
		segments: splitSegments(s),
	}
}

func splitSegments(s string) []string {
	parts := strings.Split(s, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

func (p RemotePath) Join(name string) RemotePath {
	child := splitSegments(name)
	segments := make([]string, 0, len(p.segments)+len(child))
	segments = append(segments, p.segments...)
	segments = append(segments, child...)
	return RemotePath{
		absolute: p.absolute,
		segments: segments,
	}
}

func (p RemotePath) Parent() RemotePath {
	if len(p.segments) == 0 {
		return p
	}
	segments := make([]string, len(p.segments)-1)
	copy(segments, p.segments)
	return RemotePath{
		absolute: p.absolute,
		segments: segments,
	}
}

func (p RemotePath) Base() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

func (p RemotePath) Depth() int {
	return len(p.segments)
}

func (p RemotePath) IsAbs() bool {
	return p.absolute
}

func (p RemotePath) String() string {
	joined := strings.Join(p.segments, "/")
	if p.absolute {
		return "/" + joined
	}
	return joined
}

func (p RemotePath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *RemotePath) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}
	*p = ParseRemotePath(s)
	return nil
}
