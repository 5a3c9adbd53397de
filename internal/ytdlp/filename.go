package ytdlp

import (
	"regexp"
	"strings"
)

// maxFilenameLength caps cleaned names so they stay within filesystem limits
const maxFilenameLength = 200

// decorativePatterns matches the promotional suffixes video platforms append
// to track titles. They carry no information about the track itself.
var decorativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[Official\s*(Music\s*)?Video\]`),
	regexp.MustCompile(`(?i)\(Official\s*(Music\s*)?Video\)`),
	regexp.MustCompile(`(?i)\[Official\s*Audio\]`),
	regexp.MustCompile(`(?i)\(Official\s*Audio\)`),
	regexp.MustCompile(`(?i)\[Lyrics?\]`),
	regexp.MustCompile(`(?i)\(Lyrics?\)`),
	regexp.MustCompile(`(?i)\[HD\]`),
	regexp.MustCompile(`(?i)\(HD\)`),
	regexp.MustCompile(`(?i)\[4K\]`),
	regexp.MustCompile(`(?i)\(4K\)`),
	regexp.MustCompile(`(?i)\[Music\s*Video\]`),
	regexp.MustCompile(`(?i)\(Music\s*Video\)`),
	regexp.MustCompile(`(?i)\[Visualizer\]`),
	regexp.MustCompile(`(?i)\(Visualizer\)`),
	regexp.MustCompile(`(?i)\[Lyric\s*Video\]`),
	regexp.MustCompile(`(?i)\(Lyric\s*Video\)`),
}

// invalidChars are characters that are unsafe in filenames across filesystems
const invalidChars = `<>:"/\|?*`

// CleanFilename turns a raw track title into a filesystem-safe filename
// without extension. Invalid characters and decorative platform suffixes are
// removed, whitespace is collapsed, and the result is length capped.
func CleanFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidChars, r) {
			return -1
		}
		return r
	}, title)

	for _, pattern := range decorativePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if runes := []rune(cleaned); len(runes) > maxFilenameLength {
		cleaned = strings.TrimSpace(string(runes[:maxFilenameLength]))
	}

	return cleaned
}
