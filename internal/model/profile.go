package model

import (
	"errors"
	"fmt"

	"github.com/aliskhannn/image-compressor/internal/format"
)

// Profile is a named bundle of compression options applied to a batch of files.
// The pipeline only reads it.
type Profile struct {
	Name string `mapstructure:"name" json:"name"`

	JPEGQuality int  `mapstructure:"jpeg_quality" json:"jpeg_quality"` // 0-100
	PNGQuality  int  `mapstructure:"png_quality" json:"png_quality"`   // 0-100
	WebPQuality int  `mapstructure:"webp_quality" json:"webp_quality"` // 0-100
	GIFQuality  int  `mapstructure:"gif_quality" json:"gif_quality"`   // 0-100
	AVIFQuality int  `mapstructure:"avif_quality" json:"avif_quality"` // 0-100
	Lossy       bool `mapstructure:"enable_lossy" json:"enable_lossy"` // false = lossless optimization only

	ResizeEnabled bool `mapstructure:"should_resize" json:"should_resize"`
	MaxWidth      int  `mapstructure:"resize_width" json:"resize_width"`
	MaxHeight     int  `mapstructure:"resize_height" json:"resize_height"`

	BackgroundFillEnabled bool   `mapstructure:"should_background_fill" json:"should_background_fill"`
	BackgroundFill        string `mapstructure:"background_fill" json:"background_fill"` // #rgb or #rrggbb

	ConvertEnabled bool          `mapstructure:"should_convert" json:"should_convert"`
	ConvertFormat  format.Format `mapstructure:"convert_extension" json:"convert_extension"`

	PostfixEnabled bool   `mapstructure:"add_postfix" json:"add_postfix"`
	Postfix        string `mapstructure:"postfix" json:"postfix"`

	Overwrite      bool `mapstructure:"should_overwrite" json:"should_overwrite"`
	KeepMetadata   bool `mapstructure:"keep_metadata" json:"keep_metadata"`
	KeepTimestamps bool `mapstructure:"keep_timestamps" json:"keep_timestamps"`
}

// DefaultProfile returns the profile a fresh installation starts with.
func DefaultProfile() Profile {
	return Profile{
		Name:           "default",
		JPEGQuality:    80,
		PNGQuality:     80,
		WebPQuality:    80,
		GIFQuality:     80,
		AVIFQuality:    80,
		Lossy:          true,
		MaxWidth:       1000,
		MaxHeight:      1000,
		BackgroundFill: "#000",
		ConvertFormat:  format.WEBP,
		PostfixEnabled: true,
		Postfix:        ".min",
		KeepMetadata:   true,
	}
}

// Validate checks value ranges. It does not parse the background colour;
// that is reported as InvalidHexColor when the fill is actually applied.
func (p Profile) Validate() error {
	var errs []error

	qualities := map[string]int{
		"jpeg_quality": p.JPEGQuality,
		"png_quality":  p.PNGQuality,
		"webp_quality": p.WebPQuality,
		"gif_quality":  p.GIFQuality,
		"avif_quality": p.AVIFQuality,
	}
	for name, q := range qualities {
		if q < 0 || q > 100 {
			errs = append(errs, fmt.Errorf("%s must be within 0..100, got %d", name, q))
		}
	}

	if p.ResizeEnabled && (p.MaxWidth <= 0 || p.MaxHeight <= 0) {
		errs = append(errs, fmt.Errorf("resize bounds must be positive, got %dx%d", p.MaxWidth, p.MaxHeight))
	}

	if p.ConvertEnabled && !p.ConvertFormat.Valid() {
		errs = append(errs, errors.New("convert_extension must name a supported format"))
	}

	return errors.Join(errs...)
}
