// Package mediafmt selects the best-supported encoded variant for a media
// slot. Candidates are held in preference order: the hardware-efficient HEVC
// variant first, VP9/WebM next, and the universally decodable AVC variant as
// the fallback.
package mediafmt

import (
	"errors"

	"herovid/internal/platform"
	"herovid/internal/slot"
)

// ErrNoSupportedFormat is returned when no candidate passes the host's
// codec-support predicate. The original layout silently built a URL with an
// undefined suffix in this case; failing explicitly is the deliberate
// replacement for that behavior.
var ErrNoSupportedFormat = errors.New("no supported media format")

// Candidate pairs a MIME type (with codec parameter) with the file suffix the
// transcode pipeline writes for that encoding.
type Candidate struct {
	MIME   string
	Suffix string
}

// Artifact suffixes shared between URL construction here and the transcode
// pipeline that writes the files.
const (
	SuffixHEVC = "_h265.mp4"
	SuffixVP9  = ".webm"
	SuffixAVC  = "_h264.mp4"

	// PosterSuffix is appended to a base identifier to form its poster URL.
	PosterSuffix = "-poster.webp"
)

// The full candidate list, in preference order.
var allCandidates = []Candidate{
	{MIME: `video/mp4; codecs="hvc1"`, Suffix: SuffixHEVC},
	{MIME: `video/webm; codecs="vp9"`, Suffix: SuffixVP9},
	{MIME: `video/mp4; codecs="avc1.42E01E"`, Suffix: SuffixAVC},
}

// SupportFunc reports whether the host can play the given MIME type. It wraps
// the media element's canPlayType-style predicate at the document boundary.
type SupportFunc func(mime string) bool

// Candidates returns the candidate list for the detected platform. Safari on
// macOS drops the VP9/WebM entry entirely. The returned slice is freshly
// allocated; callers may not see it change after construction.
func Candidates(plat platform.Info) []Candidate {
	out := make([]Candidate, 0, len(allCandidates))
	for _, c := range allCandidates {
		if plat.SafariOnMac && c.Suffix == ".webm" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Selector resolves slots to concrete media and poster URLs. It is pure aside
// from the platform flag captured once at construction.
type Selector struct {
	root       string
	breakpoint int
	candidates []Candidate
}

// NewSelector builds a selector for the given content root, mobile breakpoint
// and one-time platform detection result.
func NewSelector(contentRoot string, mobileBreakpoint int, plat platform.Info) *Selector {
	return &Selector{
		root:       contentRoot,
		breakpoint: mobileBreakpoint,
		candidates: Candidates(plat),
	}
}

// Candidates returns the selector's pruned candidate list in preference order.
func (s *Selector) Candidates() []Candidate {
	return s.candidates
}

// baseIdentifier picks the mobile identifier on narrow viewports when the
// slot carries one, otherwise the desktop identifier.
func (s *Selector) baseIdentifier(sl *slot.Slot, viewportWidth int) string {
	if viewportWidth <= s.breakpoint && sl.Mobile() != "" {
		return sl.Mobile()
	}
	return sl.Source()
}

// Select returns the absolute URL of the first candidate variant the supports
// predicate accepts, or ErrNoSupportedFormat if none passes.
func (s *Selector) Select(sl *slot.Slot, viewportWidth int, supports SupportFunc) (string, error) {
	base := s.baseIdentifier(sl, viewportWidth)
	for _, c := range s.candidates {
		if supports(c.MIME) {
			return s.root + base + c.Suffix, nil
		}
	}
	return "", ErrNoSupportedFormat
}

// PosterURL returns the poster URL for the slot at the given viewport width.
// It is derived once at slot registration and never again on resize.
func (s *Selector) PosterURL(sl *slot.Slot, viewportWidth int) string {
	return s.root + s.baseIdentifier(sl, viewportWidth) + PosterSuffix
}
