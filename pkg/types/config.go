// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LayoutConfig holds the thresholds of the region-detection pipeline. All
// distances are in PDF points.
type LayoutConfig struct {
	// ShortLineHeight and ShortLineWidth drop decorative drawings whose height
	// is below ShortLineHeight and width below ShortLineWidth (default 1, 30).
	ShortLineHeight float64 `json:"short_line_height" yaml:"short_line_height" mapstructure:"short_line_height"`
	ShortLineWidth  float64 `json:"short_line_width" yaml:"short_line_width" mapstructure:"short_line_width"`

	// MergeDistance is the first merge threshold for drawings and images (default 10).
	MergeDistance float64 `json:"merge_distance" yaml:"merge_distance" mapstructure:"merge_distance"`

	// HorizontalDistance attaches rule lines to the box they underline (default 100).
	HorizontalDistance float64 `json:"horizontal_distance" yaml:"horizontal_distance" mapstructure:"horizontal_distance"`

	// LargeTextMinAvgChars separates prose blocks from labels by average
	// characters per line (default 5).
	LargeTextMinAvgChars float64 `json:"large_text_min_avg_chars" yaml:"large_text_min_avg_chars" mapstructure:"large_text_min_avg_chars"`

	// LargeTextDistance is the adsorption threshold for prose blocks (default 0.1).
	LargeTextDistance float64 `json:"large_text_distance" yaml:"large_text_distance" mapstructure:"large_text_distance"`

	// SmallTextDistance is the adsorption threshold for labels (default 5).
	SmallTextDistance float64 `json:"small_text_distance" yaml:"small_text_distance" mapstructure:"small_text_distance"`

	// RemergeDistance is the final merge threshold (default 10).
	RemergeDistance float64 `json:"remerge_distance" yaml:"remerge_distance" mapstructure:"remerge_distance"`

	// MinRegionSize drops regions whose width or height is not above it (default 20).
	MinRegionSize float64 `json:"min_region_size" yaml:"min_region_size" mapstructure:"min_region_size"`
}

// DefaultLayoutConfig returns the thresholds the detector was tuned with.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		ShortLineHeight:      1,
		ShortLineWidth:       30,
		MergeDistance:        10,
		HorizontalDistance:   100,
		LargeTextMinAvgChars: 5,
		LargeTextDistance:    0.1,
		SmallTextDistance:    5,
		RemergeDistance:      10,
		MinRegionSize:        20,
	}
}

// RenderBackend identifies the rasterization tool.
type RenderBackend string

const (
	RenderPdftoppm  RenderBackend = "pdftoppm"
	RenderContainer RenderBackend = "container"
)

// RenderConfig holds rasterization settings.
type RenderConfig struct {
	// Backend selects pdftoppm on PATH or pdftoppm inside a container image.
	Backend RenderBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// ContainerImage is the poppler image used by the container backend.
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`

	// CropScale is the zoom factor for region crops (default 4, i.e. 288 dpi).
	CropScale float64 `json:"crop_scale" yaml:"crop_scale" mapstructure:"crop_scale"`

	// PageScale is the zoom factor for the annotated page image (default 3).
	PageScale float64 `json:"page_scale" yaml:"page_scale" mapstructure:"page_scale"`
}

// DefaultRenderConfig returns the rasterization defaults.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Backend:        RenderPdftoppm,
		ContainerImage: "minidocks/poppler:latest",
		CropScale:      4,
		PageScale:      3,
	}
}

// VisionProvider identifies the vision model API.
type VisionProvider string

const (
	ProviderOpenAI VisionProvider = "openai"
	ProviderGemini VisionProvider = "gemini"
)

// VisionConfig holds settings for the vision-model transcription stage.
// Empty prompt fields fall back to the built-in defaults.
type VisionConfig struct {
	Provider VisionProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (default "gpt-4o").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Workers bounds concurrent page transcriptions (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	RolePrompt   string `json:"role_prompt,omitempty" yaml:"role_prompt,omitempty" mapstructure:"role_prompt"`
	Prompt       string `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
	RegionPrompt string `json:"region_prompt,omitempty" yaml:"region_prompt,omitempty" mapstructure:"region_prompt"`
}

// DefaultVisionConfig returns the transcription defaults.
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o",
		Workers:  1,
	}
}

// ConversionConfig groups everything one conversion run needs.
type ConversionConfig struct {
	Layout LayoutConfig `json:"layout" yaml:"layout" mapstructure:"layout"`
	Render RenderConfig `json:"render" yaml:"render" mapstructure:"render"`
	Vision VisionConfig `json:"vision" yaml:"vision" mapstructure:"vision"`

	// OutputDir receives output.md, crops and page images.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// KeepPages retains the annotated page images after transcription.
	KeepPages bool `json:"keep_pages" yaml:"keep_pages" mapstructure:"keep_pages"`

	// Frontmatter prepends YAML frontmatter to output.md.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter" mapstructure:"frontmatter"`

	// Ledger is the SQLite path for the run ledger; empty disables it.
	Ledger string `json:"ledger,omitempty" yaml:"ledger,omitempty" mapstructure:"ledger"`
}

// DefaultConversionConfig returns a configuration with every default applied.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		Layout:    DefaultLayoutConfig(),
		Render:    DefaultRenderConfig(),
		Vision:    DefaultVisionConfig(),
		OutputDir: "./out",
	}
}
