package slack

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/partnerflow/partnerflow/pkg/domain/types"
)

const (
	// DefaultChannelPrefix is prepended to every partner channel name
	DefaultChannelPrefix = "p"
	// DefaultInternalSuffix is appended to the name of internal channels
	DefaultInternalSuffix = "int"

	maxChannelNameBytes = 80
)

// NormalizeChannelName normalizes a string to be a valid Slack channel name
// Slack allows: lowercase letters, numbers, hyphens, underscores, and Unicode characters
// Slack prohibits: uppercase (Latin), spaces, slashes, periods, commas, and special symbols
// Maximum length: 80 characters
func NormalizeChannelName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "-")

	var result strings.Builder
	result.Grow(len(name))

	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		} else if r >= 'A' && r <= 'Z' {
			result.WriteRune(unicode.ToLower(r))
		} else if r > 127 && !isProhibitedSymbol(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// isProhibitedSymbol checks if a Unicode character is prohibited in Slack channel names
func isProhibitedSymbol(r rune) bool {
	prohibitedRunes := []rune{
		'。', '、', '!', '?', '/', '\\', '.', ',', '!', '?',
		'@', '#', '$', '%', '^', '&', '*', '(', ')', '[', ']',
		'{', '}', '<', '>', '|', '~', '`', '\'', '"', ';', ':',
		'+', '=', '’', '‘', '“', '”',
	}

	for _, prohibited := range prohibitedRunes {
		if r == prohibited {
			return true
		}
	}
	return false
}

// truncateToMaxBytes cuts s to at most n bytes without splitting a rune
func truncateToMaxBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// ChannelNaming builds partner channel names
type ChannelNaming struct {
	Prefix         string
	InternalSuffix string
}

// DefaultChannelNaming yields p-<partner> and p-<partner>-int
func DefaultChannelNaming() ChannelNaming {
	return ChannelNaming{
		Prefix:         DefaultChannelPrefix,
		InternalSuffix: DefaultInternalSuffix,
	}
}

// PartnerChannelName generates the channel name of a partner for a kind.
// Format: {prefix}-{normalized-name}[-{id}][-{internal suffix}]
//
// A name without any usable character is replaced by the partner ID. When
// normalization dropped characters of the name, a short partner ID is appended
// so that names such as "A.B.C" and "ABC" do not share a channel. The ID and
// the internal suffix are kept even when the name has to be truncated.
func (n ChannelNaming) PartnerChannelName(partnerName, partnerID string, kind types.ChannelKind) string {
	base := NormalizeChannelName(partnerName)
	var tail string
	switch {
	case !hasNameRunes(base):
		base = NormalizeChannelName(partnerID)
	case dropsRunes(partnerName):
		if id := shortPartnerID(partnerID); id != "" {
			tail = "-" + id
		}
	}
	if prefix := NormalizeChannelName(n.Prefix); prefix != "" {
		base = prefix + "-" + base
	}

	if kind == types.ChannelKindInternal {
		if s := NormalizeChannelName(n.InternalSuffix); hasNameRunes(s) {
			tail += "-" + s
		}
	}

	base = truncateToMaxBytes(base, maxChannelNameBytes-len(tail))
	base = strings.TrimRight(base, "-")

	return base + tail
}

const shortPartnerIDBytes = 8

func hasNameRunes(s string) bool {
	return strings.Trim(s, "-_") != ""
}

// dropsRunes reports whether normalization removed characters from name
func dropsRunes(name string) bool {
	trimmed := strings.TrimSpace(name)
	return utf8.RuneCountInString(NormalizeChannelName(trimmed)) != utf8.RuneCountInString(trimmed)
}

func shortPartnerID(partnerID string) string {
	id := truncateToMaxBytes(NormalizeChannelName(partnerID), shortPartnerIDBytes)
	return strings.Trim(id, "-_")
}
