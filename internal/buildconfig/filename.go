package buildconfig

import "strings"

// Placeholders recognised in a FilenameTemplate.
const (
	PlaceholderName = "[name]"
	PlaceholderHash = "[hash]"
)

// FilenameTemplate is an output file name pattern such as "[name].[hash].js".
type FilenameTemplate string

// Filename returns a stable template in development and a content hashed one
// in production. It is total for any extension token.
func Filename(mode Mode, ext string) FilenameTemplate {
	ext = strings.TrimPrefix(ext, ".")
	if mode.IsDev() {
		return FilenameTemplate(PlaceholderName + "." + ext)
	}
	return FilenameTemplate(PlaceholderName + "." + PlaceholderHash + "." + ext)
}

func (t FilenameTemplate) String() string {
	return string(t)
}

func (t FilenameTemplate) HasHash() bool {
	return strings.Contains(string(t), PlaceholderHash)
}

// Ext returns the extension token, without the leading dot.
func (t FilenameTemplate) Ext() string {
	i := strings.LastIndex(string(t), ".")
	if i < 0 || strings.HasSuffix(string(t), "]") {
		return ""
	}
	return string(t)[i+1:]
}

// Stem is the template without its extension; esbuild appends extensions itself.
func (t FilenameTemplate) Stem() string {
	ext := t.Ext()
	if ext == "" {
		return string(t)
	}
	return strings.TrimSuffix(string(t), "."+ext)
}

// Expand substitutes the placeholders.
func (t FilenameTemplate) Expand(name, hash string) string {
	return strings.NewReplacer(PlaceholderName, name, PlaceholderHash, hash).Replace(string(t))
}
