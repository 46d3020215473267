package styles

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// themeMu protects the registry and the current theme.
var themeMu sync.RWMutex

// ColorPalette holds the colors a theme defines.
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`

	Success string `json:"success"`
	Warning string `json:"warning"`
	Error   string `json:"error"`
	Info    string `json:"info"`

	TextPrimary   string `json:"textPrimary"`
	TextMuted     string `json:"textMuted"`
	TextSubtle    string `json:"textSubtle"`
	TextInverse   string `json:"textInverse"`
	BgSecondary   string `json:"bgSecondary"`
	BgTertiary    string `json:"bgTertiary"`
	BorderNormal  string `json:"borderNormal"`
	BorderActive  string `json:"borderActive"`
	SyntaxTheme   string `json:"syntaxTheme"`   // Chroma theme name
	MarkdownTheme string `json:"markdownTheme"` // Glamour style name
}

// Theme is a named palette.
type Theme struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Colors      ColorPalette `json:"colors"`
}

var (
	DefaultTheme = Theme{
		Name:        "default",
		DisplayName: "Default Dark",
		Colors: ColorPalette{
			Primary:       "#7C3AED",
			Secondary:     "#3B82F6",
			Accent:        "#F59E0B",
			Success:       "#10B981",
			Warning:       "#F59E0B",
			Error:         "#EF4444",
			Info:          "#3B82F6",
			TextPrimary:   "#F9FAFB",
			TextMuted:     "#6B7280",
			TextSubtle:    "#4B5563",
			TextInverse:   "#111827",
			BgSecondary:   "#1F2937",
			BgTertiary:    "#374151",
			BorderNormal:  "#374151",
			BorderActive:  "#7C3AED",
			SyntaxTheme:   "monokai",
			MarkdownTheme: "dark",
		},
	}

	LightTheme = Theme{
		Name:        "light",
		DisplayName: "Light",
		Colors: ColorPalette{
			Primary:       "#6D28D9",
			Secondary:     "#2563EB",
			Accent:        "#D97706",
			Success:       "#059669",
			Warning:       "#D97706",
			Error:         "#DC2626",
			Info:          "#2563EB",
			TextPrimary:   "#111827",
			TextMuted:     "#6B7280",
			TextSubtle:    "#9CA3AF",
			TextInverse:   "#F9FAFB",
			BgSecondary:   "#F3F4F6",
			BgTertiary:    "#E5E7EB",
			BorderNormal:  "#D1D5DB",
			BorderActive:  "#6D28D9",
			SyntaxTheme:   "github",
			MarkdownTheme: "light",
		},
	}
)

var themeRegistry = map[string]Theme{
	DefaultTheme.Name: DefaultTheme,
	LightTheme.Name:   LightTheme,
}

var currentTheme = DefaultTheme

// Styles rebuilt whenever the theme changes.
var (
	Title         lipgloss.Style
	Muted         lipgloss.Style
	Subtle        lipgloss.Style
	Body          lipgloss.Style
	Selected      lipgloss.Style
	Checked       lipgloss.Style
	KeyHint       lipgloss.Style
	PanelActive   lipgloss.Style
	PanelInactive lipgloss.Style
	ModalBox      lipgloss.Style
	ModalTitle    lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	UserLabel     lipgloss.Style
	AssistantLbl  lipgloss.Style
	ToastSuccess  lipgloss.Style
	ToastWarning  lipgloss.Style
	ToastError    lipgloss.Style
	ToastInfo     lipgloss.Style
	StatusError   lipgloss.Style
	StatusOK      lipgloss.Style
	StatusBar     lipgloss.Style
	Accent        lipgloss.Style
)

func init() {
	rebuildStyles()
}

// IsValidTheme reports whether name is registered.
func IsValidTheme(name string) bool {
	themeMu.RLock()
	defer themeMu.RUnlock()
	_, ok := themeRegistry[name]
	return ok
}

// ListThemes returns registered theme names, sorted.
func ListThemes() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyTheme switches to the named theme; unknown names fall back to default.
func ApplyTheme(name string) {
	themeMu.Lock()
	theme, ok := themeRegistry[name]
	if !ok {
		theme = DefaultTheme
	}
	currentTheme = theme
	themeMu.Unlock()
	rebuildStyles()
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// GetSyntaxTheme returns the chroma style name of the active theme.
func GetSyntaxTheme() string {
	return CurrentTheme().Colors.SyntaxTheme
}

// GetMarkdownTheme returns the glamour style name of the active theme.
func GetMarkdownTheme() string {
	return CurrentTheme().Colors.MarkdownTheme
}

func rebuildStyles() {
	c := CurrentTheme().Colors
	color := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }

	Title = lipgloss.NewStyle().Bold(true).Foreground(color(c.TextPrimary))
	Muted = lipgloss.NewStyle().Foreground(color(c.TextMuted))
	Subtle = lipgloss.NewStyle().Foreground(color(c.TextSubtle))
	Body = lipgloss.NewStyle().Foreground(color(c.TextPrimary))
	Selected = lipgloss.NewStyle().Foreground(color(c.TextPrimary)).Background(color(c.BgTertiary))
	Checked = lipgloss.NewStyle().Foreground(color(c.Success)).Bold(true)
	KeyHint = lipgloss.NewStyle().Foreground(color(c.TextMuted)).Background(color(c.BgTertiary)).Padding(0, 1)

	PanelActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color(c.BorderActive)).
		Padding(0, 1)
	PanelInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color(c.BorderNormal)).
		Padding(0, 1)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color(c.BorderActive)).
		Background(color(c.BgSecondary)).
		Padding(1, 2)
	ModalTitle = lipgloss.NewStyle().Bold(true).Foreground(color(c.Primary)).MarginBottom(1)

	TabActive = lipgloss.NewStyle().Bold(true).Foreground(color(c.TextInverse)).Background(color(c.Primary)).Padding(0, 1)
	TabInactive = lipgloss.NewStyle().Foreground(color(c.TextMuted)).Padding(0, 1)

	UserLabel = lipgloss.NewStyle().Bold(true).Foreground(color(c.Secondary))
	AssistantLbl = lipgloss.NewStyle().Bold(true).Foreground(color(c.Primary))

	toast := func(bg string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(color(c.TextInverse)).Background(color(bg)).Padding(0, 2)
	}
	ToastSuccess = toast(c.Success)
	ToastWarning = toast(c.Warning)
	ToastError = toast(c.Error)
	ToastInfo = toast(c.Info)

	StatusError = lipgloss.NewStyle().Foreground(color(c.Error))
	StatusOK = lipgloss.NewStyle().Foreground(color(c.Success))
	StatusBar = lipgloss.NewStyle().Background(color(c.BgSecondary)).Foreground(color(c.TextMuted))
	Accent = lipgloss.NewStyle().Foreground(color(c.Accent))
}
