package buildconfig

// PluginKind identifies a post-processing action.
type PluginKind string

const (
	PluginClean      PluginKind = "clean"
	PluginHTML       PluginKind = "html"
	PluginCopy       PluginKind = "copy"
	PluginExtractCSS PluginKind = "extract-css"
	PluginCompress   PluginKind = "compress"
)

type HTMLOptions struct {
	// Template is an absolute path to the page template.
	Template           string `yaml:"template"`
	Filename           string `yaml:"filename"`
	Title              string `yaml:"title,omitempty"`
	Inject             bool   `yaml:"inject"`
	CollapseWhitespace bool   `yaml:"collapseWhitespace"`
	LiveReload         bool   `yaml:"liveReload"`
}

// CopyPattern copies From (a file or directory) into the directory To.
type CopyPattern struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type ExtractCSSOptions struct {
	Filename FilenameTemplate `yaml:"filename"`
}

type CompressOptions struct {
	Extensions []string `yaml:"extensions"`
	Level      int      `yaml:"level"`
}

// Plugin is one entry of the ordered plugin list. Only the options field that
// matches Kind is set.
type Plugin struct {
	Kind       PluginKind         `yaml:"kind"`
	HTML       *HTMLOptions       `yaml:"html,omitempty"`
	Copy       []CopyPattern      `yaml:"copy,omitempty"`
	ExtractCSS *ExtractCSSOptions `yaml:"extractCss,omitempty"`
	Compress   *CompressOptions   `yaml:"compress,omitempty"`
}

// PluginsFor builds the ordered plugin list for mode and project.
func PluginsFor(mode Mode, p Project) []Plugin {
	plugins := []Plugin{
		{Kind: PluginClean},
		{
			Kind: PluginHTML,
			HTML: &HTMLOptions{
				Template:           p.SourcePath(p.Template),
				Filename:           "index.html",
				Title:              p.Title,
				Inject:             true,
				CollapseWhitespace: mode.IsProd(),
				LiveReload:         mode.IsDev(),
			},
		},
		{Kind: PluginCopy, Copy: p.CopyPatterns()},
		{Kind: PluginExtractCSS, ExtractCSS: &ExtractCSSOptions{Filename: Filename(mode, "css")}},
	}

	if p.Compress && mode.IsProd() {
		plugins = append(plugins, Plugin{
			Kind: PluginCompress,
			Compress: &CompressOptions{
				Extensions: []string{".js", ".css", ".html", ".svg"},
				Level:      9,
			},
		})
	}

	return plugins
}
