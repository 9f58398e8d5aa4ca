package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"

	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/httputil"
)

// FlagBaseURL serves 320px-wide country flags by ISO code.
const FlagBaseURL = "https://flagcdn.com/w320"

// countryISO maps country names to ISO 3166-1 alpha-2 codes for flag
// lookups. Countries absent here render as placeholders.
var countryISO = map[string]string{
	"United States":        "us",
	"China":                "cn",
	"Japan":                "jp",
	"India":                "in",
	"United Kingdom":       "gb",
	"Canada":               "ca",
	"France":               "fr",
	"Taiwan":               "tw",
	"Germany":              "de",
	"Switzerland":          "ch",
	"Saudi Arabia":         "sa",
	"South Korea":          "kr",
	"Australia":            "au",
	"Netherlands":          "nl",
	"Sweden":               "se",
	"Spain":                "es",
	"Italy":                "it",
	"United Arab Emirates": "ae",
	"Ireland":              "ie",
	"Hong Kong":            "hk",
	"Brazil":               "br",
	"Indonesia":            "id",
	"Singapore":            "sg",
	"Denmark":              "dk",
}

// CountryISO returns the ISO code for a country, or "" if unmapped.
func CountryISO(country string) string {
	return countryISO[country]
}

// ImageFetcher downloads overlay images with on-disk caching.
type ImageFetcher struct {
	http  *resty.Client
	cache *httputil.Cache
}

// NewImageFetcher creates an ImageFetcher. An empty cacheDir selects the
// default cache directory.
func NewImageFetcher(cacheDir string) (*ImageFetcher, error) {
	cache, err := httputil.NewCache(cacheDir, 7*24*time.Hour)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create image cache")
	}
	return &ImageFetcher{
		http:  resty.New().SetTimeout(15 * time.Second),
		cache: cache.Namespace("img:"),
	}, nil
}

// Flag fetches a country's flag. Unmapped countries and fetch failures
// return a placeholder instead of an error.
func (f *ImageFetcher) Flag(ctx context.Context, country string) image.Image {
	iso := CountryISO(country)
	if iso == "" {
		return Placeholder()
	}
	img, err := f.Fetch(ctx, FlagBaseURL+"/"+iso+".png")
	if err != nil {
		return Placeholder()
	}
	return img
}

// Fetch downloads and decodes an image, reusing the cache when fresh.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}

	var data []byte
	if ok, _ := f.cache.Get(url, &data); !ok {
		resp, err := f.http.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch image %s", url)
		}
		if resp.StatusCode() != 200 {
			return nil, errors.New(errors.ErrCodeNetwork, "status %d fetching image %s", resp.StatusCode(), url)
		}
		data = resp.Body()
		_ = f.cache.Set(url, data)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image %s", url)
	}
	return img, nil
}

// Placeholder returns the solid gray square used when no image is available.
func Placeholder() image.Image {
	return imaging.New(100, 100, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
}
